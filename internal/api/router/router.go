package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopfloor/cnc-capture/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "cnc-capture-api",
		})
	})

	scanHandler := handler.NewScanHandler(deps)
	jobCardHandler := handler.NewJobCardHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// POST /api/v1/scan - start/stop toggle for a job-card token
		v1.POST("/scan", scanHandler.Scan)

		// Provisioning
		v1.POST("/jobs", jobCardHandler.CreateJob)
		v1.POST("/drawings", jobCardHandler.CreateDrawing)
		v1.POST("/jobcards", jobCardHandler.CreateJobCard)
		v1.GET("/jobcards/:id", jobCardHandler.GetJobCard)

		// Admin listings
		v1.GET("/jobs/list", jobCardHandler.ListJobs)
		v1.GET("/machines/list", jobCardHandler.ListMachines)
	}

	return r
}
