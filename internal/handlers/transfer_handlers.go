package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valeriaulyamaeva/budget-ledger/internal/balance"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

func (h *Handler) ListTransfers(c *gin.Context) {
	q := &query{c: c}
	filter := models.TransferFilter{
		AccountID:     q.id("account_id"),
		FromAccountID: q.id("from_account_id"),
		ToAccountID:   q.id("to_account_id"),
		From:          q.day("start_date"),
		To:            q.day("end_date"),
		Limit:         q.number("limit", models.DefaultPageSize),
		Offset:        q.number("offset", 0),
	}
	if s := c.Query("transfer_type"); s != "" {
		t, err := models.ParseTransferType(s)
		if err != nil {
			q.fail("transfer_type", err)
		}
		filter.Type = &t
	}
	if !q.ok() {
		return
	}
	if filter.Limit < 1 || filter.Limit > 1000 || filter.Offset < 0 {
		badRequest(c, "limit must be between 1 and 1000 and offset must not be negative")
		return
	}
	transfers, err := h.svc.ListTransfers(c.Request.Context(), ownerOf(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, transfers)
}

func (h *Handler) CreateTransfer(c *gin.Context) {
	var in models.TransferCreate
	if !bind(c, &in) {
		return
	}
	t, err := h.svc.CreateTransfer(c.Request.Context(), ownerOf(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) GetTransfer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	t, err := h.svc.GetTransfer(c.Request.Context(), ownerOf(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) UpdateTransfer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in models.TransferUpdate
	if !bind(c, &in) {
		return
	}
	t, err := h.svc.UpdateTransfer(c.Request.Context(), ownerOf(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTransfer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteTransfer(c.Request.Context(), ownerOf(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type transferTypeInfo struct {
	Type  models.TransferType `json:"value"`
	Label string              `json:"label"`
	Usage string              `json:"usage"`
}

func TransferTypes(c *gin.Context) {
	rules := balance.Rules()
	types := make([]transferTypeInfo, len(rules))
	for i, r := range rules {
		types[i] = transferTypeInfo{Type: r.Type, Label: r.Label, Usage: r.Usage}
	}
	c.JSON(http.StatusOK, types)
}

func TransferRules(c *gin.Context) {
	c.JSON(http.StatusOK, balance.Rules())
}

func (h *Handler) TransferStatistics(c *gin.Context) {
	q := &query{c: c}
	from, to := q.day("start_date"), q.day("end_date")
	if !q.ok() {
		return
	}
	stats, err := h.reports.TransferStatistics(c.Request.Context(), ownerOf(c), from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) Loans(c *gin.Context) {
	loans, err := h.reports.Loans(c.Request.Context(), ownerOf(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, loans)
}
