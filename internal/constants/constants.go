package constants

import "time"

// Session and context keys
const (
	SessionCookieName     = "family_session"
	ContextKeyUserID      = "user_id"
	ContextKeyIdentity    = "identity"
	ContextKeyRequestID   = "request_id"
	HeaderRequestID       = "X-Request-ID"
	BearerTokenHeaderName = "Authorization"
)

// Credential rules
const (
	MinPasswordLength = 6
	MaxNameLength     = 50
	SecureTokenBytes  = 32
)

// Token lifetimes
const (
	InviteTokenTTL        = 7 * 24 * time.Hour
	PasswordResetTokenTTL = time.Hour
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Statistics windows
const (
	StatsWindowWeek  = "week"
	StatsWindowMonth = "month"
)

// Subscription plans
const (
	PlanMonthly     = "monthly"
	PlanYearly      = "yearly"
	MonthlyPlanDays = 30
	YearlyPlanDays  = 365
)

// DefaultLocale is used when a family registers without a known locale.
const DefaultLocale = "en"
