package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valeriaulyamaeva/budget-ledger/internal/reports"
)

// Summary defaults to the current month so far.
func (h *Handler) Summary(c *gin.Context) {
	q := &query{c: c}
	p := q.period(reports.MonthToDate(h.today()))
	accountID := q.id("account_id")
	if !q.ok() {
		return
	}
	s, err := h.reports.Summary(c.Request.Context(), ownerOf(c), p, accountID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) MonthlyTrend(c *gin.Context) {
	q := &query{c: c}
	months := q.number("months", 12)
	accountID := q.id("account_id")
	if !q.ok() {
		return
	}
	if months < 1 || months > 60 {
		badRequest(c, "months must be between 1 and 60")
		return
	}
	t, err := h.reports.MonthlyTrend(c.Request.Context(), ownerOf(c), months, h.today(), accountID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) ByCategory(c *gin.Context) {
	q := &query{c: c}
	p := q.period(reports.MonthToDate(h.today()))
	typ := q.macroType("type")
	if !q.ok() {
		return
	}
	r, err := h.reports.ByCategory(c.Request.Context(), ownerOf(c), p, typ)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) ByAccount(c *gin.Context) {
	q := &query{c: c}
	p := q.period(reports.MonthToDate(h.today()))
	if !q.ok() {
		return
	}
	r, err := h.reports.ByAccount(c.Request.Context(), ownerOf(c), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// Daily defaults to the last 30 days.
func (h *Handler) Daily(c *gin.Context) {
	q := &query{c: c}
	p := q.period(reports.LastDays(h.today(), 30))
	accountID := q.id("account_id")
	if !q.ok() {
		return
	}
	if p.Days() > 366 {
		badRequest(c, "period must not exceed 366 days")
		return
	}
	r, err := h.reports.Daily(c.Request.Context(), ownerOf(c), p, accountID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// YearComparison defaults to last year against this year.
func (h *Handler) YearComparison(c *gin.Context) {
	q := &query{c: c}
	this := h.today().Year()
	year1 := q.number("year1", this-1)
	year2 := q.number("year2", this)
	if !q.ok() {
		return
	}
	if year1 < 1900 || year2 < 1900 || year1 > 2100 || year2 > 2100 {
		badRequest(c, "years must be between 1900 and 2100")
		return
	}
	r, err := h.reports.YearComparison(c.Request.Context(), ownerOf(c), year1, year2)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
