package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gridsheet/contracts"
)

type ApiController struct {
	SheetRepository   contracts.SheetRepository
	WebhookDispatcher contracts.WebhookDispatcher
	PositionCodec     *PositionCodec
}

type CellEndpointParams struct {
	SheetId string `uri:"sheet_id" binding:"required"`
	CellId  string `uri:"cell_id" binding:"required"`
}

type SheetEndpointParams struct {
	SheetId string `uri:"sheet_id" binding:"required"`
}

type SetCellRequest struct {
	Value string `json:"value" binding:"required"`
}

type SubscribeRequest struct {
	WebhookUrl string `json:"webhook_url" binding:"required"`
}

func NewApiController(
	sheetRepository contracts.SheetRepository,
	webhookDispatcher contracts.WebhookDispatcher,
	positionCodec *PositionCodec,
) *ApiController {
	return &ApiController{
		SheetRepository:   sheetRepository,
		WebhookDispatcher: webhookDispatcher,
		PositionCodec:     positionCodec,
	}
}

func (api *ApiController) GetCellAction(c *gin.Context) {
	params := CellEndpointParams{}
	var response *contracts.Cell

	err := c.ShouldBindUri(&params)

	if err == nil {
		response, err = api.SheetRepository.GetCell(params.SheetId, params.CellId)
	}

	if errors.Is(err, contracts.CellNotFoundError) || errors.Is(err, contracts.SheetNotFoundError) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, contracts.InvalidPositionError) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	} else {
		c.JSON(http.StatusOK, response)
	}
}

func (api *ApiController) SetCellAction(c *gin.Context) {
	params := CellEndpointParams{}
	request := SetCellRequest{}
	var response *contracts.Cell

	err := c.ShouldBindUri(&params)
	if err == nil {
		err = c.ShouldBindJSON(&request)
	}

	if err == nil {
		response, err = api.SheetRepository.SetCell(params.SheetId, params.CellId, request.Value)
	}

	if err != nil {
		if response == nil {
			response = &contracts.Cell{}
		}
		response.Value = request.Value
		response.Result = err.Error()
		c.JSON(http.StatusUnprocessableEntity, response)
	} else {
		c.JSON(http.StatusCreated, response)
	}
}

func (api *ApiController) ClearCellAction(c *gin.Context) {
	params := CellEndpointParams{}

	err := c.ShouldBindUri(&params)
	if err == nil {
		err = api.SheetRepository.ClearCell(params.SheetId, params.CellId)
	}

	if errors.Is(err, contracts.SheetNotFoundError) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else {
		c.JSON(http.StatusOK, gin.H{})
	}
}

// GetSheetAction returns the sheet as JSON; with ?format=values or
// ?format=texts it returns the tabular text rendering instead.
func (api *ApiController) GetSheetAction(c *gin.Context) {
	params := SheetEndpointParams{}

	err := c.ShouldBindUri(&params)

	if err == nil {
		switch c.Query("format") {
		case "values":
			api.renderSheet(c, params.SheetId, api.SheetRepository.RenderValues)
			return
		case "texts":
			api.renderSheet(c, params.SheetId, api.SheetRepository.RenderTexts)
			return
		}
	}

	var response *contracts.CellList
	var size contracts.Size
	if err == nil {
		response, err = api.SheetRepository.GetCellList(params.SheetId)
	}
	if err == nil {
		size, err = api.SheetRepository.GetSize(params.SheetId)
	}

	if errors.Is(err, contracts.SheetNotFoundError) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	} else {
		c.JSON(http.StatusOK, gin.H{
			"rows":  size.Rows,
			"cols":  size.Cols,
			"cells": response,
		})
	}
}

func (api *ApiController) renderSheet(c *gin.Context, sheetId string, render func(string, io.Writer) error) {
	buffer := &bytes.Buffer{}
	err := render(sheetId, buffer)

	if errors.Is(err, contracts.SheetNotFoundError) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	} else {
		c.String(http.StatusOK, buffer.String())
	}
}

func (api *ApiController) PreviewCellAction(c *gin.Context) {
	params := CellEndpointParams{}
	request := SetCellRequest{}
	var response *contracts.Cell

	err := c.ShouldBindUri(&params)
	if err == nil {
		err = c.ShouldBindJSON(&request)
	}

	if err == nil {
		response, err = api.SheetRepository.PreviewCell(params.SheetId, params.CellId, request.Value)
	}

	if errors.Is(err, contracts.SheetNotFoundError) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if err != nil {
		response = &contracts.Cell{Value: request.Value, Result: err.Error()}
		c.JSON(http.StatusUnprocessableEntity, response)
	} else {
		c.JSON(http.StatusOK, response)
	}
}

func (api *ApiController) SubscribeAction(c *gin.Context) {
	params := CellEndpointParams{}
	request := SubscribeRequest{}

	err := c.ShouldBindUri(&params)
	if err == nil {
		err = c.ShouldBindJSON(&request)
	}

	var canonicalCellId string
	if err == nil {
		pos, wellFormed := api.PositionCodec.Parse(params.CellId)
		if !wellFormed || !pos.IsValid() {
			err = contracts.InvalidPositionError
		} else {
			canonicalCellId = api.PositionCodec.Format(pos)
		}
	}

	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	api.WebhookDispatcher.SetWebhookUrl(strings.ToLower(params.SheetId), canonicalCellId, request.WebhookUrl)
	c.JSON(http.StatusCreated, gin.H{"webhook_url": request.WebhookUrl})
}
