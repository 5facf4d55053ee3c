package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/family-chores-api/internal/dto"
	apierrors "github.com/yukikurage/family-chores-api/internal/errors"
	"github.com/yukikurage/family-chores-api/internal/models"
	"github.com/yukikurage/family-chores-api/internal/services"
)

// CatalogHandler serves the task and gift catalogs
type CatalogHandler[T any, P models.Cataloged[T]] struct {
	service *services.CatalogService[T, P]
	label   string
}

// NewTaskHandler creates the handler for /api/tasks
func NewTaskHandler(service *services.TaskService) *CatalogHandler[models.Task, *models.Task] {
	return &CatalogHandler[models.Task, *models.Task]{service: service, label: "task"}
}

// NewGiftHandler creates the handler for /api/gifts
func NewGiftHandler(service *services.GiftService) *CatalogHandler[models.Gift, *models.Gift] {
	return &CatalogHandler[models.Gift, *models.Gift]{service: service, label: "gift"}
}

// List returns the active items visible to the caller in display order
func (h *CatalogHandler[T, P]) List(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	items, err := h.service.List(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCatalogItemDTOs[T, P](items))
}

// Get returns one item
func (h *CatalogHandler[T, P]) Get(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", h.label)
	if !ok {
		return
	}

	item, err := h.service.Get(c.Request.Context(), identity, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCatalogItemDTO[T, P](item))
}

// Create adds an item to the caller's family
func (h *CatalogHandler[T, P]) Create(c *gin.Context) {
	type CreateRequest struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		Points      int    `json:"points"`
		Emoji       string `json:"emoji"`
	}

	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.service.Create(c.Request.Context(), identity, services.CreateCatalogItemInput{
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
		Emoji:       req.Emoji,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCatalogItemDTO[T, P](item))
}

// Update applies a partial update
func (h *CatalogHandler[T, P]) Update(c *gin.Context) {
	type UpdateRequest struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Points      *int    `json:"points"`
		Emoji       *string `json:"emoji"`
		IsActive    *bool   `json:"is_active"`
	}

	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", h.label)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.service.Update(c.Request.Context(), identity, id, services.UpdateCatalogItemInput{
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
		Emoji:       req.Emoji,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCatalogItemDTO[T, P](item))
}

// Delete removes an item
func (h *CatalogHandler[T, P]) Delete(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", h.label)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), identity, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Reorder sets the display order from a list of IDs
func (h *CatalogHandler[T, P]) Reorder(c *gin.Context) {
	type ReorderRequest struct {
		IDs []uint64 `json:"ids" binding:"required"`
	}

	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.service.Reorder(c.Request.Context(), identity, req.IDs); err != nil {
		respondError(c, err)
		return
	}

	items, err := h.service.List(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCatalogItemDTOs[T, P](items))
}
