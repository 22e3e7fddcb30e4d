package routes

import (
	"pitchhub/controllers"
	"pitchhub/websocket"

	"github.com/gin-gonic/gin"
)

// SetupSimulationRoutes sets up the roleplay simulation routes
func SetupSimulationRoutes(router *gin.RouterGroup) {
	simulation := router.Group("/simulation")
	{
		simulation.POST("/start", controllers.StartSimulation)
		simulation.POST("/:id/message", controllers.SendSimulationMessage)
		simulation.POST("/:id/end", controllers.EndSimulation)
		simulation.POST("/:id/analyze", controllers.AnalyzeSimulation)
		simulation.GET("/:id", controllers.GetSimulation)
		simulation.GET("/:id/live", websocket.LiveSimulationHandler)
	}
}
