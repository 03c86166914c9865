package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"formulaSheet/contracts"
)

type ApiController struct {
	SheetRepository  *SheetRepository
	ChangeDispatcher *ChangeDispatcher
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

type ResizeRequest struct {
	Rows *int `json:"rows" binding:"required"`
	Cols *int `json:"cols" binding:"required"`
}

type SubscribeRequest struct {
	WebhookUrl string `json:"webhook_url" binding:"required"`
}

// CellResponse is the rendered dual-field contract: the raw content plus the
// result formatted as a number, or as `ERROR: ...` when the cell computed an
// error.
type CellResponse struct {
	Value  string `json:"value"`
	Result string `json:"result"`
}

func renderCell(cell *contracts.Cell) CellResponse {
	if cell.Err != nil {
		return CellResponse{Value: cell.Value, Result: "ERROR: " + cell.Err.Error()}
	}
	return CellResponse{Value: cell.Value, Result: strconv.FormatFloat(cell.Result, 'f', -1, 64)}
}

func NewApiController(sheetRepository *SheetRepository, changeDispatcher *ChangeDispatcher) *ApiController {
	return &ApiController{SheetRepository: sheetRepository, ChangeDispatcher: changeDispatcher}
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
		c.JSON(http.StatusUnprocessableEntity, CellResponse{Value: request.Value, Result: "ERROR: " + err.Error()})
		return
	}

	api.notifySubscribers(params.SheetId)
	c.JSON(http.StatusCreated, renderCell(response))
}

func (api *ApiController) EditCellAction(c *gin.Context) {
	params := CellEndpointParams{}
	request := SetCellRequest{}
	var response *contracts.Cell

	err := c.ShouldBindUri(&params)
	if err == nil {
		err = c.ShouldBindJSON(&request)
	}

	if err == nil {
		response, err = api.SheetRepository.EditCell(params.SheetId, params.CellId, request.Value)
	}

	if errors.Is(err, contracts.CellNotFoundError) || errors.Is(err, SheetNotFoundError) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, CellResponse{Value: request.Value, Result: "ERROR: " + err.Error()})
		return
	}

	api.notifySubscribers(params.SheetId)
	c.JSON(http.StatusOK, renderCell(response))
}

func (api *ApiController) GetCellAction(c *gin.Context) {
	params := CellEndpointParams{}
	var response *contracts.Cell

	err := c.ShouldBindUri(&params)

	if err == nil {
		response, err = api.SheetRepository.GetCell(params.SheetId, params.CellId)
	}

	if errors.Is(err, contracts.CellNotFoundError) || errors.Is(err, SheetNotFoundError) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, contracts.InvalidAddressError) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	} else {
		c.JSON(http.StatusOK, renderCell(response))
	}
}

func (api *ApiController) DeleteCellAction(c *gin.Context) {
	params := CellEndpointParams{}

	err := c.ShouldBindUri(&params)
	if err == nil {
		err = api.SheetRepository.DeleteCell(params.SheetId, params.CellId)
	}

	if errors.Is(err, contracts.CellNotFoundError) || errors.Is(err, SheetNotFoundError) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	api.notifySubscribers(params.SheetId)
	c.Status(http.StatusNoContent)
}

func (api *ApiController) GetSheetAction(c *gin.Context) {
	params := SheetEndpointParams{}
	var cells map[string]*contracts.Cell

	err := c.ShouldBindUri(&params)

	if err == nil {
		cells, err = api.SheetRepository.GetCellList(params.SheetId)
	}

	if errors.Is(err, SheetNotFoundError) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := make(map[string]CellResponse, len(cells))
	for label, cell := range cells {
		response[label] = renderCell(cell)
	}
	c.JSON(http.StatusOK, response)
}

func (api *ApiController) ResizeSheetAction(c *gin.Context) {
	params := SheetEndpointParams{}
	request := ResizeRequest{}

	err := c.ShouldBindUri(&params)
	if err == nil {
		err = c.ShouldBindJSON(&request)
	}

	if err == nil {
		err = api.SheetRepository.ResizeSheet(params.SheetId, *request.Rows, *request.Cols)
	}

	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	api.notifySubscribers(params.SheetId)
	c.Status(http.StatusNoContent)
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
		var addr contracts.Address
		addr, err = contracts.ParseAddress(params.CellId)
		canonicalCellId = addr.Label()
	}

	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	api.ChangeDispatcher.Subscribe(canonicalSheetId(params.SheetId), canonicalCellId, request.WebhookUrl)
	c.JSON(http.StatusCreated, gin.H{"webhook_url": request.WebhookUrl})
}

// notifySubscribers pushes the sheet's current cell views to the dispatcher.
// The snapshot is only taken when somebody listens.
func (api *ApiController) notifySubscribers(sheetId string) {
	sheetId = canonicalSheetId(sheetId)
	if !api.ChangeDispatcher.HasSubscriptions(sheetId) {
		return
	}

	cells, err := api.SheetRepository.GetCellList(sheetId)
	if err != nil {
		return
	}

	rendered := make(map[string]CellResponse, len(cells))
	for label, cell := range cells {
		rendered[label] = renderCell(cell)
	}
	api.ChangeDispatcher.Notify(sheetId, rendered)
}
