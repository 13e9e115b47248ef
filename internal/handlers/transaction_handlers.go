package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valeriaulyamaeva/budget-ledger/models"
)

func (h *Handler) ListTransactions(c *gin.Context) {
	q := &query{c: c}
	filter := models.TransactionFilter{
		AccountID:  q.id("account_id"),
		CategoryID: q.id("category_id"),
		Type:       q.macroType("type"),
		From:       q.day("start_date"),
		To:         q.day("end_date"),
		MinAmount:  q.amount("min_amount"),
		MaxAmount:  q.amount("max_amount"),
		Tags:       q.list("tags"),
		Search:     c.Query("search"),
		Limit:      q.number("limit", models.DefaultPageSize),
		Offset:     q.number("offset", 0),
	}
	if !q.ok() {
		return
	}
	if filter.Limit < 1 || filter.Limit > 1000 || filter.Offset < 0 {
		badRequest(c, "limit must be between 1 and 1000 and offset must not be negative")
		return
	}
	transactions, err := h.svc.ListTransactions(c.Request.Context(), ownerOf(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

func (h *Handler) CreateTransaction(c *gin.Context) {
	var in models.TransactionCreate
	if !bind(c, &in) {
		return
	}
	t, err := h.svc.CreateTransaction(c.Request.Context(), ownerOf(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) GetTransaction(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	t, err := h.svc.GetTransaction(c.Request.Context(), ownerOf(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) UpdateTransaction(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in models.TransactionUpdate
	if !bind(c, &in) {
		return
	}
	t, err := h.svc.UpdateTransaction(c.Request.Context(), ownerOf(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTransaction(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteTransaction(c.Request.Context(), ownerOf(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
