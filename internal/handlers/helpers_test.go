package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newJSONContext builds a context for a JSON request. A nil body sends none.
func newJSONContext(e *echo.Echo, method, target string, body interface{}) (echo.Context, *httptest.ResponseRecorder) {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		payload, _ = json.Marshal(b)
	}

	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(TraceIDContextKey, "test-trace-id")
	return c, rec
}

func withUser(c echo.Context, userID uuid.UUID) echo.Context {
	c.Set("user_id", userID)
	return c
}

func decodeErrorBody(rec *httptest.ResponseRecorder) (ErrorResponse, error) {
	var body ErrorResponse
	err := json.Unmarshal(rec.Body.Bytes(), &body)
	return body, err
}

// successBody decodes a SuccessResponse whose Data is unmarshalled into data.
func successBody(rec *httptest.ResponseRecorder, data interface{}) (SuccessResponse, error) {
	var raw struct {
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
		Meta    json.RawMessage `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		return SuccessResponse{}, err
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			return SuccessResponse{}, err
		}
	}
	var meta map[string]interface{}
	if len(raw.Meta) > 0 {
		_ = json.Unmarshal(raw.Meta, &meta)
	}
	return SuccessResponse{Data: data, Message: raw.Message, Meta: meta}, nil
}

func jsonUnmarshal(rec *httptest.ResponseRecorder, v interface{}) error {
	return json.Unmarshal(rec.Body.Bytes(), v)
}
