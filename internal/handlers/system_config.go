package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/services"
	"github.com/shiporsink/change/pkg/response"
	"gorm.io/gorm"
)

type SystemConfigHandler struct {
	configService *services.SystemConfigService
}

func NewSystemConfigHandler(db *gorm.DB) *SystemConfigHandler {
	return &SystemConfigHandler{
		configService: services.NewSystemConfigService(db),
	}
}

// List returns every runtime setting, or one group with ?group=
// GET /api/admin/system-config
func (h *SystemConfigHandler) List(c *gin.Context) {
	var (
		configs interface{}
		err     error
	)
	if group := c.Query("group"); group != "" {
		configs, err = h.configService.GetByGroup(group)
	} else {
		configs, err = h.configService.List()
	}
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, configs)
}

// Update sets several known keys at once. Unknown keys reject the batch.
// PUT /api/admin/system-config
func (h *SystemConfigHandler) Update(c *gin.Context) {
	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		response.BindError(c, err)
		return
	}
	if len(values) == 0 {
		response.BadRequest(c, "no settings given")
		return
	}

	if err := h.configService.UpdateBatch(values); err != nil {
		handleError(c, err)
		return
	}

	configs, err := h.configService.List()
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, configs)
}
