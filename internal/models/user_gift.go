package models

import (
	"time"
)

type RedemptionStatus string

const (
	RedemptionRequested RedemptionStatus = "REQUESTED"
	RedemptionApproved  RedemptionStatus = "APPROVED"
	RedemptionRejected  RedemptionStatus = "REJECTED"
	RedemptionRedeemed  RedemptionStatus = "REDEEMED"
)

func (s RedemptionStatus) Valid() bool {
	switch s {
	case RedemptionRequested, RedemptionApproved, RedemptionRejected, RedemptionRedeemed:
		return true
	}
	return false
}

// UserGift is a request to exchange points for a gift. PointsSpent is the
// gift's cost at request time and is what a rejection refunds.
type UserGift struct {
	ID          uint64           `gorm:"primarykey" json:"id"`
	UserID      uint64           `gorm:"not null;index" json:"user_id"`
	GiftID      uint64           `gorm:"not null;index" json:"gift_id"`
	Status      RedemptionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PointsSpent int              `gorm:"not null" json:"points_spent"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
	Gift Gift `gorm:"foreignKey:GiftID" json:"-"`
}
