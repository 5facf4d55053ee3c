package dto

import (
	"time"

	"github.com/yukikurage/family-chores-api/internal/models"
)

// UserDTO represents a person in API responses
type UserDTO struct {
	ID                 uint64      `json:"id"`
	Name               string      `json:"name"`
	Role               models.Role `json:"role"`
	Gender             string      `json:"gender,omitempty"`
	Points             int         `json:"points"`
	FamilyID           *uint64     `json:"family_id"`
	Email              *string     `json:"email,omitempty"`
	MustChangePassword bool        `json:"must_change_password"`
}

// CatalogItemDTO represents a task or gift in API responses
type CatalogItemDTO struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	IsActive    bool      `json:"is_active"`
	Emoji       string    `json:"emoji"`
	FamilyID    *uint64   `json:"family_id"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CompletionDTO represents a task completion in API responses
type CompletionDTO struct {
	ID            uint64                  `json:"id"`
	UserID        uint64                  `json:"user_id"`
	UserName      string                  `json:"user_name,omitempty"`
	TaskID        uint64                  `json:"task_id"`
	TaskTitle     string                  `json:"task_title,omitempty"`
	Status        models.CompletionStatus `json:"status"`
	CompletionDay *string                 `json:"completion_day"`
	PointsAwarded int                     `json:"points_awarded"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// RedemptionDTO represents a gift redemption in API responses
type RedemptionDTO struct {
	ID          uint64                  `json:"id"`
	UserID      uint64                  `json:"user_id"`
	UserName    string                  `json:"user_name,omitempty"`
	GiftID      uint64                  `json:"gift_id"`
	GiftTitle   string                  `json:"gift_title,omitempty"`
	Status      models.RedemptionStatus `json:"status"`
	PointsSpent int                     `json:"points_spent"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// CompletionListResponse represents a paginated list of completions
type CompletionListResponse struct {
	Completions []CompletionDTO `json:"completions"`
	Page        int             `json:"page"`
	PageSize    int             `json:"page_size"`
	TotalCount  int64           `json:"total_count"`
	TotalPages  int             `json:"total_pages"`
}

// RedemptionListResponse represents a paginated list of redemptions
type RedemptionListResponse struct {
	Redemptions []RedemptionDTO `json:"redemptions"`
	Page        int             `json:"page"`
	PageSize    int             `json:"page_size"`
	TotalCount  int64           `json:"total_count"`
	TotalPages  int             `json:"total_pages"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:                 user.ID,
		Name:               user.Name,
		Role:               user.Role,
		Gender:             user.Gender,
		Points:             user.Points,
		FamilyID:           user.FamilyID,
		Email:              user.Email,
		MustChangePassword: user.MustChangePassword,
	}
}

// ToUserDTOs converts a list of people
func ToUserDTOs(users []models.User) []UserDTO {
	result := make([]UserDTO, len(users))
	for i, user := range users {
		result[i] = ToUserDTO(user)
	}
	return result
}

// ToCatalogItemDTO converts a task or gift to CatalogItemDTO
func ToCatalogItemDTO[T any, P models.Cataloged[T]](item *T) CatalogItemDTO {
	fields := P(item).Item()
	return CatalogItemDTO{
		ID:          fields.ID,
		Title:       fields.Title,
		Description: fields.Description,
		Points:      fields.Points,
		IsActive:    fields.IsActive,
		Emoji:       fields.Emoji,
		FamilyID:    fields.FamilyID,
		SortOrder:   fields.SortOrder,
		CreatedAt:   fields.CreatedAt,
		UpdatedAt:   fields.UpdatedAt,
	}
}

// ToCatalogItemDTOs converts a list of tasks or gifts
func ToCatalogItemDTOs[T any, P models.Cataloged[T]](items []T) []CatalogItemDTO {
	result := make([]CatalogItemDTO, len(items))
	for i := range items {
		result[i] = ToCatalogItemDTO[T, P](&items[i])
	}
	return result
}

// ToCompletionDTO converts a UserTask model to CompletionDTO
func ToCompletionDTO(completion models.UserTask) CompletionDTO {
	return CompletionDTO{
		ID:            completion.ID,
		UserID:        completion.UserID,
		UserName:      completion.User.Name,
		TaskID:        completion.TaskID,
		TaskTitle:     completion.Task.Title,
		Status:        completion.Status,
		CompletionDay: completion.CompletionDay,
		PointsAwarded: completion.PointsAwarded,
		CreatedAt:     completion.CreatedAt,
		UpdatedAt:     completion.UpdatedAt,
	}
}

// ToRedemptionDTO converts a UserGift model to RedemptionDTO
func ToRedemptionDTO(redemption models.UserGift) RedemptionDTO {
	return RedemptionDTO{
		ID:          redemption.ID,
		UserID:      redemption.UserID,
		UserName:    redemption.User.Name,
		GiftID:      redemption.GiftID,
		GiftTitle:   redemption.Gift.Title,
		Status:      redemption.Status,
		PointsSpent: redemption.PointsSpent,
		CreatedAt:   redemption.CreatedAt,
		UpdatedAt:   redemption.UpdatedAt,
	}
}

// ToCompletionListResponse converts completions to a paginated response
func ToCompletionListResponse(completions []models.UserTask, page, pageSize int, totalCount int64) CompletionListResponse {
	items := make([]CompletionDTO, len(completions))
	for i, completion := range completions {
		items[i] = ToCompletionDTO(completion)
	}

	return CompletionListResponse{
		Completions: items,
		Page:        page,
		PageSize:    pageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages(totalCount, pageSize),
	}
}

// ToRedemptionListResponse converts redemptions to a paginated response
func ToRedemptionListResponse(redemptions []models.UserGift, page, pageSize int, totalCount int64) RedemptionListResponse {
	items := make([]RedemptionDTO, len(redemptions))
	for i, redemption := range redemptions {
		items[i] = ToRedemptionDTO(redemption)
	}

	return RedemptionListResponse{
		Redemptions: items,
		Page:        page,
		PageSize:    pageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages(totalCount, pageSize),
	}
}

func totalPages(totalCount int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((totalCount + int64(pageSize) - 1) / int64(pageSize))
}
