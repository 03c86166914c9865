package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const ApiVersion = "v1"

const subscribePath = "subscribe"

// Controller is the action surface the router binds; it exists so router
// tests can drive a recording stub.
type Controller interface {
	SetCellAction(c *gin.Context)
	EditCellAction(c *gin.Context)
	GetCellAction(c *gin.Context)
	DeleteCellAction(c *gin.Context)
	GetSheetAction(c *gin.Context)
	ResizeSheetAction(c *gin.Context)
	SubscribeAction(c *gin.Context)
}

func SetupRouter(controller Controller) *gin.Engine {
	router := gin.New()

	apiRouterGroup := router.Group("/api/" + ApiVersion)
	apiRouterGroup.POST("/:sheet_id/:cell_id/"+subscribePath, controller.SubscribeAction)

	apiRouterGroup.POST("/:sheet_id/:cell_id", controller.SetCellAction)
	apiRouterGroup.PUT("/:sheet_id/:cell_id", controller.EditCellAction)
	apiRouterGroup.GET("/:sheet_id/:cell_id", controller.GetCellAction)
	apiRouterGroup.DELETE("/:sheet_id/:cell_id", controller.DeleteCellAction)
	apiRouterGroup.GET("/:sheet_id", controller.GetSheetAction)
	apiRouterGroup.PUT("/:sheet_id", controller.ResizeSheetAction)

	router.GET("/healthcheck", func(c *gin.Context) {
		c.String(http.StatusOK, "health")
	})

	return router
}
