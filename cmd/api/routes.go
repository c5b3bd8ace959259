package main

import (
	"github.com/gin-gonic/gin"

	"github.com/Suhailakram0318/AI-call/internal/auth"
	"github.com/Suhailakram0318/AI-call/internal/httpapi"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authManager *auth.Manager) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	if authManager != nil {
		v1.Use(auth.RequireToken(authManager))
	}
	{
		calls := v1.Group("/calls")
		{
			calls.POST("", h.StartCall)
			calls.GET("/:call_id", h.GetCall)
			calls.GET("/:call_id/status", h.CallStatus)
		}

		v1.POST("/contacts/upload", h.UploadContacts)
		v1.GET("/reports/calls", h.CallsReport)
	}
}
