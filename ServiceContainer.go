package main

import (
	"github.com/gin-gonic/gin"

	"gridsheet/contracts"
)

type ServiceContainer struct {
	PositionCodec     *PositionCodec
	WebhookDispatcher contracts.WebhookDispatcher
	SheetRepository   contracts.SheetRepository
	ApiController     contracts.ApiController
	Router            *gin.Engine
}

func BuildServiceContainer() ServiceContainer {
	container := ServiceContainer{}

	container.PositionCodec = NewPositionCodec()
	container.WebhookDispatcher = NewWebhookDispatcher()
	container.SheetRepository = NewSheetRepository(container.PositionCodec, container.WebhookDispatcher)
	container.ApiController = NewApiController(container.SheetRepository, container.WebhookDispatcher, container.PositionCodec)

	container.Router = SetupRouter(container.ApiController)

	return container
}
