package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valeriaulyamaeva/budget-ledger/models"
)

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Request.Context(), ownerOf(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var in models.CategoryCreate
	if !bind(c, &in) {
		return
	}
	category, err := h.svc.CreateCategory(c.Request.Context(), ownerOf(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}
