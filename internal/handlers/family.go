package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/family-chores-api/internal/dto"
	apierrors "github.com/yukikurage/family-chores-api/internal/errors"
	"github.com/yukikurage/family-chores-api/internal/models"
	"github.com/yukikurage/family-chores-api/internal/services"
)

// FamilyHandler serves the family and its members
type FamilyHandler struct {
	familyService *services.FamilyService
}

// NewFamilyHandler creates a new FamilyHandler
func NewFamilyHandler(familyService *services.FamilyService) *FamilyHandler {
	return &FamilyHandler{
		familyService: familyService,
	}
}

// GetFamily returns the caller's family; the invite code is shown to guardians only
func (h *FamilyHandler) GetFamily(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	family, err := h.familyService.GetFamily(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToFamilyDTO(*family, identity.IsGuardian()))
}

// RenameFamily updates the family name
func (h *FamilyHandler) RenameFamily(c *gin.Context) {
	type RenameFamilyRequest struct {
		Name string `json:"name" binding:"required"`
	}

	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req RenameFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	family, err := h.familyService.RenameFamily(c.Request.Context(), identity, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToFamilyDTO(*family, true))
}

// JoinFamily adds the caller to a family by invite code
func (h *FamilyHandler) JoinFamily(c *gin.Context) {
	type JoinFamilyRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req JoinFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.familyService.JoinFamily(c.Request.Context(), identity, req.InviteCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// RegenerateInviteCode issues a new family invite code
func (h *FamilyHandler) RegenerateInviteCode(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	family, err := h.familyService.RegenerateInviteCode(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToFamilyDTO(*family, true))
}

// ListMembers lists the caller's family
func (h *FamilyHandler) ListMembers(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	members, err := h.familyService.ListMembers(c.Request.Context(), identity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTOs(members))
}

// InviteMember creates a parent or child and returns their invite token
func (h *FamilyHandler) InviteMember(c *gin.Context) {
	type InviteMemberRequest struct {
		Name   string `json:"name" binding:"required"`
		Role   string `json:"role" binding:"required"`
		Gender string `json:"gender"`
		Email  string `json:"email"`
	}

	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, token, err := h.familyService.InviteMember(c.Request.Context(), identity, services.InviteMemberInput{
		Name:   req.Name,
		Role:   models.Role(req.Role),
		Gender: req.Gender,
		Email:  req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.InviteResponse{
		Member:      dto.ToUserDTO(*member),
		InviteToken: token,
	})
}

// GetMember returns one member
func (h *FamilyHandler) GetMember(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "member")
	if !ok {
		return
	}

	member, err := h.familyService.GetMember(c.Request.Context(), identity, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*member))
}

// UpdateMember changes a member's profile or role
func (h *FamilyHandler) UpdateMember(c *gin.Context) {
	type UpdateMemberRequest struct {
		Name   *string `json:"name"`
		Gender *string `json:"gender"`
		Email  *string `json:"email"`
		Role   *string `json:"role"`
	}

	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "member")
	if !ok {
		return
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateMemberInput{
		Name:   req.Name,
		Gender: req.Gender,
		Email:  req.Email,
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		input.Role = &role
	}

	member, err := h.familyService.UpdateMember(c.Request.Context(), identity, id, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*member))
}

// DeleteMember removes a member and their history
func (h *FamilyHandler) DeleteMember(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "member")
	if !ok {
		return
	}

	if err := h.familyService.DeleteMember(c.Request.Context(), identity, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
