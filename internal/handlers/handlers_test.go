package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/valeriaulyamaeva/budget-ledger/internal/config"
	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/budget-ledger/internal/logging"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ledger.NotFound("account", uuid.New()), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", ledger.NotFound("category", uuid.New())), http.StatusNotFound},
		{"inactive", &ledger.ReferenceError{Entity: "account", Name: "Old", Inactive: true}, http.StatusBadRequest},
		{"validation", &ledger.ValidationError{Field: "amount", Msg: "must be positive"}, http.StatusBadRequest},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable},
		{"other", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}

func TestQuery_Parsing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?tags=a,b&tags=c&limit=5&min_amount=1.50&type=INCOME&start_date=2024-01-31", nil)

	q := &query{c: c}
	assert.Equal(t, []string{"a", "b", "c"}, q.list("tags"))
	assert.Equal(t, 5, q.number("limit", 100))
	assert.Equal(t, 0, q.number("offset", 0))
	assert.Equal(t, "1.5", q.amount("min_amount").String())
	assert.Equal(t, models.Income, *q.macroType("type"))
	assert.Equal(t, "2024-01-31", q.day("start_date").String())
	assert.Nil(t, q.id("account_id"))
	assert.NoError(t, q.err)

	bad, _ := gin.CreateTestContext(httptest.NewRecorder())
	bad.Request = httptest.NewRequest(http.MethodGet, "/?account_id=zzz&limit=x", nil)
	q = &query{c: bad}
	q.id("account_id")
	q.number("limit", 1)
	assert.ErrorContains(t, q.err, "account_id")
}

func TestInternalErrorsHideDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h := &Handler{log: logging.Discard()}
	h.fail(c, errors.New("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}

type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset by peer") }

func TestWriteJSON_LogsFailures(t *testing.T) {
	var logs bytes.Buffer
	log := logging.NewWithOutput(config.Log{Level: "info", Format: "json"}, &logs)

	writeJSON(brokenWriter{httptest.NewRecorder()}, log, http.StatusOK, map[string]string{"status": "ok"})
	assert.Contains(t, logs.String(), "Failed to write response")
	assert.Contains(t, logs.String(), "connection reset by peer")

	logs.Reset()
	w := httptest.NewRecorder()
	writeJSON(w, log, http.StatusOK, map[string]any{"bad": make(chan int)})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
	assert.Contains(t, logs.String(), "Failed to encode response")
}
