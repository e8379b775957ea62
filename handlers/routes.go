package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the health check and the /api routes
func RegisterRoutes(r *gin.Engine, contracts *ContractHandler, analyses *AnalysisHandler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")
	{
		// Contract endpoints
		api.POST("/analyze", contracts.Analyze)
		api.POST("/compare", contracts.Compare)
		api.POST("/generate-clause", contracts.GenerateClause)

		// History endpoints
		api.GET("/analyses", analyses.ListAnalyses)
		api.GET("/analyses/:id", analyses.GetAnalysis)
		api.GET("/analyses/:id/export", analyses.ExportAnalysis)
		api.GET("/analyses/:id/document", analyses.DownloadDocument)
	}
}
