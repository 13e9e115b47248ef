// Package handlers exposes the ledger over HTTP: gin handlers for the owner
// API under /api/v1 and plain net/http handlers for the operator router.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/valeriaulyamaeva/budget-ledger/internal/ledger"
	"github.com/valeriaulyamaeva/budget-ledger/internal/logging"
	"github.com/valeriaulyamaeva/budget-ledger/internal/reports"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

// Handler serves the owner API. The owner always comes from the bearer token.
type Handler struct {
	svc     *ledger.Service
	rec     *ledger.Reconciler
	reports *reports.Reader
	log     logrus.FieldLogger
	now     func() time.Time
}

type Option func(*Handler)

// WithClock sets the clock that decides "today" for default report periods.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func New(svc *ledger.Service, rec *ledger.Reconciler, rd *reports.Reader, log logrus.FieldLogger, opts ...Option) *Handler {
	h := &Handler{svc: svc, rec: rec, reports: rd, log: log, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) today() models.Date {
	return models.DateOf(h.now().UTC())
}

// statusOf maps ledger errors to HTTP statuses: a missing reference is 404,
// an inactive one or rejected input is 400, anything else 500.
func statusOf(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInactive), errors.Is(err, ledger.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).WithFields(logrus.Fields{
			logging.FieldMethod: c.Request.Method,
			logging.FieldPath:   c.FullPath(),
		}).Error("Request failed")
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// bind decodes the JSON body into dst and answers 400 when it cannot.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, fmt.Sprintf("invalid id %q", c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}

// query reads optional query parameters and remembers the first parse error.
type query struct {
	c   *gin.Context
	err error
}

func (q *query) fail(key string, err error) {
	if q.err == nil {
		q.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}

func (q *query) id(key string) *uuid.UUID {
	s := q.c.Query(key)
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		q.fail(key, err)
		return nil
	}
	return &id
}

func (q *query) day(key string) *models.Date {
	s := q.c.Query(key)
	if s == "" {
		return nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		q.fail(key, err)
		return nil
	}
	return &d
}

func (q *query) amount(key string) *decimal.Decimal {
	s := q.c.Query(key)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		q.fail(key, err)
		return nil
	}
	return &d
}

func (q *query) number(key string, def int) int {
	s := q.c.Query(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		q.fail(key, err)
		return def
	}
	return n
}

func (q *query) flag(key string) bool {
	s := q.c.Query(key)
	if s == "" {
		return false
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		q.fail(key, err)
	}
	return b
}

func (q *query) list(key string) []string {
	var out []string
	for _, v := range q.c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (q *query) macroType(key string) *models.MacroType {
	s := q.c.Query(key)
	if s == "" {
		return nil
	}
	t, err := models.ParseMacroType(s)
	if err != nil {
		q.fail(key, err)
		return nil
	}
	return &t
}

// period reads start_date and end_date over the given default.
func (q *query) period(def reports.Period) reports.Period {
	from, to := def.From, def.To
	if d := q.day("start_date"); d != nil {
		from = *d
	}
	if d := q.day("end_date"); d != nil {
		to = *d
	}
	p, err := reports.NewPeriod(from, to)
	if err != nil {
		q.fail("period", err)
		return def
	}
	return p
}

// ok answers 400 when any parameter failed to parse.
func (q *query) ok() bool {
	if q.err != nil {
		badRequest(q.c, q.err.Error())
		return false
	}
	return true
}
