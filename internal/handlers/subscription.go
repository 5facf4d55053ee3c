package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/family-chores-api/internal/dto"
	apierrors "github.com/yukikurage/family-chores-api/internal/errors"
	"github.com/yukikurage/family-chores-api/internal/services"
)

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// GetSubscription reports whether ads should be shown
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	subscription, err := h.subscriptionService.GetSubscription(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubscriptionDTO(*subscription))
}

// Activate extends the family's premium period after a store purchase
func (h *SubscriptionHandler) Activate(c *gin.Context) {
	type ActivateRequest struct {
		Plan string `json:"plan" binding:"required"`
	}

	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	subscription, err := h.subscriptionService.Activate(c.Request.Context(), identity, req.Plan)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubscriptionDTO(*subscription))
}
