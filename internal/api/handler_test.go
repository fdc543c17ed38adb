package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/mkravets/team-dashboard/internal/service"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestTransportError(t *testing.T) {
	tests := []struct {
		name           string
		code           service.ErrorCode
		expectedStatus int
	}{
		{name: "not found", code: service.ErrorCodeNotFound, expectedStatus: http.StatusNotFound},
		{name: "conflict", code: service.ErrorCodeConflict, expectedStatus: http.StatusBadRequest},
		{name: "forbidden", code: service.ErrorCodeForbidden, expectedStatus: http.StatusForbidden},
		{name: "validation", code: service.ErrorCodeValidation, expectedStatus: http.StatusUnprocessableEntity},
		{name: "unspecified", code: service.ErrorCodeUnspecified, expectedStatus: http.StatusInternalServerError},
	}

	h := &Handler{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, rec := newTestContext(t)

			err := h.transportError(ctx, service.NewError(tt.code, "boom"))

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), string(tt.code))
		})
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		name          string
		value         string
		expectedID    int64
		expectedError bool
	}{
		{name: "valid", value: "42", expectedID: 42},
		{name: "zero", value: "0", expectedError: true},
		{name: "negative", value: "-1", expectedError: true},
		{name: "not a number", value: "abc", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := newTestContext(t)
			ctx.SetParamNames("id")
			ctx.SetParamValues(tt.value)

			id, err := pathID(ctx, "id")

			if tt.expectedError {
				assert.Error(t, err)
				assert.Equal(t, service.ErrorCodeValidation, err.Code)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, tt.expectedID, id)
			}
		})
	}
}

func TestActingUser(t *testing.T) {
	tests := []struct {
		name          string
		header        string
		expectedID    int64
		expectedError bool
	}{
		{name: "valid", header: "7", expectedID: 7},
		{name: "missing", header: "", expectedError: true},
		{name: "garbage", header: "seven", expectedError: true},
		{name: "non-positive", header: "0", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPut, "/", nil)
			if tt.header != "" {
				req.Header.Set(HeaderActingUser, tt.header)
			}
			ctx := e.NewContext(req, httptest.NewRecorder())

			id, err := actingUser(ctx)

			if tt.expectedError {
				assert.Error(t, err)
				assert.Equal(t, service.ErrorCodeValidation, err.Code)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, tt.expectedID, id)
			}
		})
	}
}
