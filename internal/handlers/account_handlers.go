package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valeriaulyamaeva/budget-ledger/models"
)

func (h *Handler) ListAccounts(c *gin.Context) {
	q := &query{c: c}
	filter := models.AccountFilter{ActiveOnly: q.flag("active_only")}
	if s := c.Query("type"); s != "" {
		t, err := models.ParseAccountType(s)
		if err != nil {
			q.fail("type", err)
		}
		filter.Type = &t
	}
	if !q.ok() {
		return
	}
	accounts, err := h.svc.ListAccounts(c.Request.Context(), ownerOf(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func (h *Handler) CreateAccount(c *gin.Context) {
	var in models.AccountCreate
	if !bind(c, &in) {
		return
	}
	account, err := h.svc.CreateAccount(c.Request.Context(), ownerOf(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (h *Handler) GetAccount(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	account, err := h.svc.GetAccount(c.Request.Context(), ownerOf(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// UpdateAccount never changes balances; initial_balance and current_balance
// in the body are ignored.
func (h *Handler) UpdateAccount(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in models.AccountUpdate
	if !bind(c, &in) {
		return
	}
	account, err := h.svc.UpdateAccount(c.Request.Context(), ownerOf(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *Handler) DeactivateAccount(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	account, err := h.svc.DeactivateAccount(c.Request.Context(), ownerOf(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *Handler) DeleteAccount(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteAccount(c.Request.Context(), ownerOf(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AccountsSummary is the net worth breakdown of the active accounts.
func (h *Handler) AccountsSummary(c *gin.Context) {
	summary, err := h.reports.NetWorth(c.Request.Context(), ownerOf(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Integrity compares every stored balance with a replay of its history.
func (h *Handler) Integrity(c *gin.Context) {
	report, err := h.rec.VerifyAll(c.Request.Context(), ownerOf(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"consistent": len(report) == 0, "discrepancies": report})
}

// FixAccount rewrites one account's stored balance from its history.
func (h *Handler) FixAccount(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	account, err := h.rec.Fix(c.Request.Context(), ownerOf(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}
