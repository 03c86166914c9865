package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func _parseJsonBody(w *httptest.ResponseRecorder) (map[string]interface{}, error) {
	response := map[string]interface{}{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	return response, err
}

func _request(router *gin.Engine, method string, path string, body interface{}) *httptest.ResponseRecorder {
	var bodyReader *bytes.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonBody)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, "/api/"+ApiVersion+path, bodyReader)
	router.ServeHTTP(w, req)
	return w
}

func TestApiController_SetCellAction(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success write", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		w := _request(container.Router, http.MethodPost, "/sheet1/A1", map[string]string{"value": "5"})
		response, err := _parseJsonBody(w)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "5", response["value"])
		assert.Equal(t, "5", response["result"])
	})

	t.Run("formula over existing cells", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		_request(container.Router, http.MethodPost, "/sheet1/A1", map[string]string{"value": "1"})
		_request(container.Router, http.MethodPost, "/sheet1/B1", map[string]string{"value": "2"})
		w := _request(container.Router, http.MethodPost, "/sheet1/C1", map[string]string{"value": "=A1+B1"})
		response, err := _parseJsonBody(w)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "=A1+B1", response["value"])
		assert.Equal(t, "3", response["result"])
	})

	t.Run("malformed formula is stored and rendered as error", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		w := _request(container.Router, http.MethodPost, "/sheet1/A1", map[string]string{"value": "=1+"})
		response, err := _parseJsonBody(w)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "=1+", response["value"])
		assert.Contains(t, response["result"], "ERROR: ")
	})

	t.Run("invalid cell id", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		w := _request(container.Router, http.MethodPost, "/sheet1/1A", map[string]string{"value": "5"})
		response, err := _parseJsonBody(w)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, response["result"], "ERROR: ")
	})

	t.Run("missing value", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		w := _request(container.Router, http.MethodPost, "/sheet1/A1", map[string]string{})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestApiController_EditCellAction(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success edit", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		_request(container.Router, http.MethodPost, "/sheet1/A1", map[string]string{"value": "1"})
		w := _request(container.Router, http.MethodPut, "/sheet1/A1", map[string]string{"value": "2"})
		response, err := _parseJsonBody(w)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", response["result"])
	})

	t.Run("sheet not found", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		w := _request(container.Router, http.MethodPut, "/sheet1/A1", map[string]string{"value": "2"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("cell not initialized", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		_request(container.Router, http.MethodPost, "/sheet1/A1", map[string]string{"value": "1"})
		w := _request(container.Router, http.MethodPut, "/sheet1/B1", map[string]string{"value": "2"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestApiController_GetCellAction(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("should return cell value", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		_request(container.Router, http.MethodPost, "/sheet1/A1", map[string]string{"value": "=2*3"})
		w := _request(container.Router, http.MethodGet, "/sheet1/A1", nil)
		response, err := _parseJsonBody(w)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "=2*3", response["value"])
		assert.Equal(t, "6", response["result"])
	})

	t.Run("sheet id is case insensitive", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		_request(container.Router, http.MethodPost, "/Sheet1/A1", map[string]string{"value": "5"})
		w := _request(container.Router, http.MethodGet, "/SHEET1/A1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("sheet not found", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		w := _request(container.Router, http.MethodGet, "/sheet1/A1", nil)
		response, err := _parseJsonBody(w)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, response, "error")
	})

	t.Run("cell not found", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		_request(container.Router, http.MethodPost, "/sheet1/A1", map[string]string{"value": "1"})
		w := _request(container.Router, http.MethodGet, "/sheet1/B1", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid cell id", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		_request(container.Router, http.MethodPost, "/sheet1/A1", map[string]string{"value": "1"})
		w := _request(container.Router, http.MethodGet, "/sheet1/bad!id", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestApiController_DeleteCellAction(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success delete", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		_request(container.Router, http.MethodPost, "/sheet1/A1", map[string]string{"value": "1"})
		w := _request(container.Router, http.MethodDelete, "/sheet1/A1", nil)

		assert.Equal(t, http.StatusNoContent, w.Code)

		w = _request(container.Router, http.MethodGet, "/sheet1/A1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("sheet not found", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		w := _request(container.Router, http.MethodDelete, "/sheet1/A1", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestApiController_GetSheetAction(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("should return all cells", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		_request(container.Router, http.MethodPost, "/sheet1/A1", map[string]string{"value": "1"})
		_request(container.Router, http.MethodPost, "/sheet1/B1", map[string]string{"value": "=A1+1"})
		w := _request(container.Router, http.MethodGet, "/sheet1", nil)
		response, err := _parseJsonBody(w)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, response, 2)
		assert.Equal(t, map[string]interface{}{"value": "=A1+1", "result": "2"}, response["B1"])
	})

	t.Run("sheet not found", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		w := _request(container.Router, http.MethodGet, "/sheet1", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestApiController_ResizeSheetAction(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("shrink invalidates dropped references", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		_request(container.Router, http.MethodPost, "/sheet1/A1", map[string]string{"value": "=D5"})
		w := _request(container.Router, http.MethodPut, "/sheet1", map[string]int{"rows": 2, "cols": 2})
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = _request(container.Router, http.MethodGet, "/sheet1/A1", nil)
		response, err := _parseJsonBody(w)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, response["result"], "ERROR: bad reference")
	})

	t.Run("creates the sheet when missing", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		w := _request(container.Router, http.MethodPut, "/sheet1", map[string]int{"rows": 20, "cols": 20})

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("invalid extent", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		w := _request(container.Router, http.MethodPut, "/sheet1", map[string]int{"rows": -1, "cols": 2})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("missing dimensions", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		w := _request(container.Router, http.MethodPut, "/sheet1", map[string]int{"rows": 2})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestApiController_SubscribeAction(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success subscribe", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		w := _request(container.Router, http.MethodPost, "/sheet1/a1/"+subscribePath,
			map[string]string{"webhook_url": "http://localhost/hook"})
		response, err := _parseJsonBody(w)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "http://localhost/hook", response["webhook_url"])

		// the lowercase cell id was canonicalized on the way in
		assert.Equal(t, "http://localhost/hook", container.ChangeDispatcher.WebhookUrl("sheet1", "A1"))
	})

	t.Run("invalid cell id", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		w := _request(container.Router, http.MethodPost, "/sheet1/0A/"+subscribePath,
			map[string]string{"webhook_url": "http://localhost/hook"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("missing webhook url", func(t *testing.T) {
		container := BuildServiceContainer(10, 10)

		w := _request(container.Router, http.MethodPost, "/sheet1/A1/"+subscribePath, map[string]string{})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
