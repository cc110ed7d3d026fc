package main

import (
	"github.com/gin-gonic/gin"
	"github.com/shiporsink/change/internal/handlers"
	"github.com/shiporsink/change/internal/middleware"
	"github.com/shiporsink/change/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(svc.cfg.Server.AllowOrigins))

	// Health check and metrics
	healthHandler := handlers.NewHealthHandler(svc.db, svc.taskQueue, svc.hub)
	r.GET("/health", healthHandler.CheckHealth)
	r.GET("/metrics", healthHandler.Metrics)

	api := r.Group("/api")
	api.Use(middleware.AuthRequired(), middleware.AuditLog())
	{
		// Projects
		projectHandler := handlers.NewProjectHandler(svc.db)
		api.GET("/projects", projectHandler.List)
		api.POST("/projects", projectHandler.Create)
		api.GET("/projects/:id", projectHandler.GetByID)
		api.PUT("/projects/:id", projectHandler.Update)
		api.DELETE("/projects/:id", projectHandler.Delete)

		// Invitations and members
		memberHandler := handlers.NewProjectMemberHandler(svc.db)
		api.POST("/projects/:id/invites", memberHandler.Invite)
		api.POST("/invites/accept", memberHandler.Accept)
		api.GET("/projects/:id/members", memberHandler.List)
		api.DELETE("/projects/:id/members/:memberId", memberHandler.Remove)

		// Stakeholder directory
		stakeholderHandler := handlers.NewStakeholderHandler(svc.db)
		api.GET("/stakeholders", stakeholderHandler.List)
		api.POST("/stakeholders", stakeholderHandler.Create)
		api.GET("/stakeholders/:id", stakeholderHandler.GetByID)
		api.PUT("/stakeholders/:id", stakeholderHandler.Update)
		api.DELETE("/stakeholders/:id", stakeholderHandler.Delete)

		// Project stakeholders
		api.GET("/projects/:id/stakeholders", stakeholderHandler.ListForProject)
		api.POST("/projects/:id/stakeholders", stakeholderHandler.AddToProject)
		api.PUT("/projects/:id/stakeholders/:psid", stakeholderHandler.UpdateLink)
		api.DELETE("/projects/:id/stakeholders/:psid", stakeholderHandler.RemoveLink)
		api.GET("/projects/:id/stakeholders/:psid/history", stakeholderHandler.History)

		// Groups
		groupHandler := handlers.NewGroupHandler(svc.db)
		api.GET("/groups", groupHandler.List)
		api.POST("/groups", groupHandler.Create)
		api.PUT("/groups/:id", groupHandler.Update)
		api.DELETE("/groups/:id", groupHandler.Delete)
		api.GET("/projects/:id/groups", groupHandler.ListForProject)
		api.POST("/projects/:id/groups", groupHandler.AddToProject)
		api.PUT("/projects/:id/groups/:pgid", groupHandler.UpdateProjectGroup)
		api.DELETE("/projects/:id/groups/:pgid", groupHandler.RemoveFromProject)

		// Milestones
		milestoneHandler := handlers.NewMilestoneHandler(svc.db, svc.holidays)
		api.GET("/projects/:id/milestones", milestoneHandler.List)
		api.POST("/projects/:id/milestones", milestoneHandler.Create)
		api.PUT("/projects/:id/milestones/:mid", milestoneHandler.Update)
		api.DELETE("/projects/:id/milestones/:mid", milestoneHandler.Delete)
		api.GET("/holidays/countries", milestoneHandler.Countries)

		// Dashboard and report
		dashboardHandler := handlers.NewDashboardHandler(svc.db, svc.holidays)
		api.GET("/dashboard", dashboardHandler.Overview)
		api.GET("/projects/:id/dashboard", dashboardHandler.Project)
		reportHandler := handlers.NewReportHandler(svc.db)
		api.GET("/projects/:id/report", reportHandler.Project)

		// Cross-project context
		contextHandler := handlers.NewContextHandler(svc.db)
		api.GET("/context", contextHandler.Get)
		api.GET("/context/prompt", contextHandler.Prompt)

		// Chat (LLM calls are rate limited)
		chatHandler := handlers.NewChatHandler(svc.chat, svc.insights)
		api.POST("/chat", svc.aiLimiter.Middleware(), chatHandler.Send)
		api.GET("/chat", chatHandler.History)
		api.DELETE("/chat", chatHandler.Clear)
		api.GET("/chat/insights", chatHandler.Insights)
		api.DELETE("/chat/insights/:id", chatHandler.DeleteInsight)

		sseHandler := handlers.NewSSEHandler(svc.hub)
		api.GET("/events/insights", sseHandler.StreamInsightEvents)

		// Conversation starters and scripts
		starterHandler := handlers.NewStarterHandler(svc.starters)
		api.POST("/projects/:id/stakeholders/:psid/starters", svc.aiLimiter.Middleware(), starterHandler.Generate)
		api.POST("/projects/:id/stakeholders/:psid/starters/save", starterHandler.Save)

		scriptHandler := handlers.NewScriptHandler(svc.db)
		api.GET("/scripts", scriptHandler.List)
		api.POST("/scripts", scriptHandler.Create)
		api.PUT("/scripts/:id", scriptHandler.Update)
		api.DELETE("/scripts/:id", scriptHandler.Delete)
		api.POST("/scripts/:id/use", scriptHandler.Use)

		// Admin only routes
		admin := api.Group("/admin", middleware.AdminRequired(svc.cfg.IsAdmin))
		{
			llmConfigHandler := handlers.NewLLMConfigHandler(svc.db)
			admin.GET("/llm-configs", llmConfigHandler.List)
			admin.GET("/llm-configs/active", llmConfigHandler.GetActive)
			admin.GET("/llm-configs/:id", llmConfigHandler.GetByID)
			admin.POST("/llm-configs", llmConfigHandler.Create)
			admin.PUT("/llm-configs/:id", llmConfigHandler.Update)
			admin.DELETE("/llm-configs/:id", llmConfigHandler.Delete)

			promptHandler := handlers.NewPromptHandler(svc.db)
			admin.GET("/prompts", promptHandler.List)
			admin.GET("/prompts/:id", promptHandler.GetByID)
			admin.POST("/prompts", promptHandler.Create)
			admin.PUT("/prompts/:id", promptHandler.Update)
			admin.POST("/prompts/:id/reset", promptHandler.Reset)
			admin.DELETE("/prompts/:id", promptHandler.Delete)

			systemLogHandler := handlers.NewSystemLogHandler(svc.db)
			admin.GET("/system-logs", systemLogHandler.List)
			admin.GET("/system-logs/modules", systemLogHandler.GetModules)

			systemConfigHandler := handlers.NewSystemConfigHandler(svc.db)
			admin.GET("/system-config", systemConfigHandler.List)
			admin.PUT("/system-config", systemConfigHandler.Update)

			usageHandler := handlers.NewAIUsageHandler(svc.db)
			admin.GET("/ai-usage/stats", usageHandler.GetStats)
			admin.GET("/ai-usage/trend", usageHandler.GetDailyTrend)
			admin.GET("/ai-usage/providers", usageHandler.GetProviderBreakdown)
			admin.GET("/ai-usage/features", usageHandler.GetFeatureBreakdown)
		}
	}
}
