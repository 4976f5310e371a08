package main

import (
	"vidstream-platform/internal/httpapi"
	"vidstream-platform/internal/signaling"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, ws *signaling.Handler, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", h.Healthz)

	// Token issuance.
	// NOTE: Login is a placeholder credential flow; identity is claim-based.
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
	}

	// Signaling websocket. The middleware accepts the token from the
	// Authorization header or a ?token= query param for browser clients.
	r.GET("/ws", authMW, ws.Serve)

	// Call gateway.
	call := r.Group("/call")
	call.Use(authMW)
	{
		call.POST("/initiate", h.InitiateCall)
		call.PUT("/:callId/status", h.UpdateCallStatus)
		call.PUT("/:callId/progress", h.ReportCallProgress)
		call.GET("/history", h.CallHistory)
		call.GET("/stats", h.CallStats)
		call.GET("/reports/summary", h.CallsReport)
		call.GET("/details/:roomId", h.CallDetails)
		call.POST("/upload-recording", h.UploadRecording)
		call.GET("/download-recording/:filename", h.DownloadRecording)
	}
}
