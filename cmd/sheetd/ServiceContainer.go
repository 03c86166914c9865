package main

import (
	"github.com/gin-gonic/gin"
)

type ServiceContainer struct {
	SheetRepository  *SheetRepository
	ApiController    *ApiController
	ChangeDispatcher *ChangeDispatcher
	Router           *gin.Engine
}

func BuildServiceContainer(defaultRows, defaultCols int) *ServiceContainer {
	container := &ServiceContainer{}

	container.ChangeDispatcher = NewChangeDispatcher()
	container.SheetRepository = NewSheetRepository(defaultRows, defaultCols)
	container.ApiController = NewApiController(container.SheetRepository, container.ChangeDispatcher)
	container.Router = SetupRouter(container.ApiController)

	return container
}
