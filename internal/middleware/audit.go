package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/services"
)

const maxAuditBody = 2000

var sensitiveKeys = map[string]bool{
	"api_key":      true,
	"token":        true,
	"access_token": true,
	"secret":       true,
	"password":     true,
}

// privateModules hold free text about people; only the body size is audited.
var privateModules = map[string]bool{
	"chat":         true,
	"stakeholders": true,
	"scripts":      true,
}

// AuditLog records write operations (POST/PUT/PATCH/DELETE) to system_logs.
func AuditLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != "POST" && method != "PUT" && method != "PATCH" && method != "DELETE" {
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		c.Next()

		module, action := parseRouteInfo(c.FullPath(), method)
		status := c.Writer.Status()

		extra := map[string]interface{}{
			"method": method,
			"path":   c.Request.URL.Path,
			"status": status,
			"audit":  true,
		}
		if privateModules[strings.ToLower(module)] || strings.Contains(c.FullPath(), "/stakeholders") {
			extra["body_bytes"] = len(body)
		} else {
			extra["body"] = auditBody(body)
		}

		message := formatAuditMessage(GetEmail(c), method, c.Request.URL.Path, status)
		services.AuditEvent{
			Module:    module,
			Action:    action,
			Message:   message,
			UserID:    GetUserID(c),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Extra:     extra,
		}.Info()
	}
}

// parseRouteInfo extracts module and action from a Gin route pattern.
// e.g. "/api/projects/:id" + "PUT" → module="Projects", action="Update"
func parseRouteInfo(fullPath, method string) (module, action string) {
	path := strings.TrimPrefix(fullPath, "/api/")

	parts := strings.SplitN(path, "/", 2)
	module = parts[0]
	if module == "" {
		module = "unknown"
	}
	module = titleCase(strings.ReplaceAll(module, "-", " "))

	switch method {
	case "POST":
		action = "Create"
	case "PUT", "PATCH":
		action = "Update"
	case "DELETE":
		action = "Delete"
	default:
		action = method
	}

	return module, action
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func formatAuditMessage(email, method, path string, status int) string {
	if email == "" {
		email = "anonymous"
	}
	outcome := "Failed"
	if status >= 200 && status < 300 {
		outcome = "OK"
	}
	return "[Audit] " + email + " " + method + " " + path + " → " + outcome
}

// auditBody masks sensitive JSON fields and truncates the result.
func auditBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err == nil {
		maskSensitive(payload)
		if masked, err := json.Marshal(payload); err == nil {
			body = masked
		}
	}

	s := string(body)
	if len(s) > maxAuditBody {
		s = s[:maxAuditBody] + "...[truncated]"
	}
	return s
}

func maskSensitive(m map[string]interface{}) {
	for k, v := range m {
		if sensitiveKeys[strings.ToLower(k)] {
			m[k] = "***"
			continue
		}
		if nested, ok := v.(map[string]interface{}); ok {
			maskSensitive(nested)
		}
	}
}
