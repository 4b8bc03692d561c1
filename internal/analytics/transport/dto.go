package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatsRequest bounds the reporting window by calendar day in the business
// timezone. Both days are inclusive.
type StatsRequest struct {
	From string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" validate:"omitempty,datetime=2006-01-02"`
}

type UpsertTargetRequest struct {
	Month             string          `json:"month" validate:"required,yearmonth"`
	RevenueTarget     decimal.Decimal `json:"revenueTarget"`
	ConversionsTarget int             `json:"conversionsTarget" validate:"min=0"`
}

type TargetProgress struct {
	Month                 string          `json:"month"`
	RevenueTarget         decimal.Decimal `json:"revenueTarget"`
	ConversionsTarget     int             `json:"conversionsTarget"`
	RevenueAchieved       decimal.Decimal `json:"revenueAchieved"`
	ConversionsAchieved   int64           `json:"conversionsAchieved"`
	RevenueAchievement    float64         `json:"revenueAchievementPct"`
	ConversionAchievement float64         `json:"conversionAchievementPct"`
}

type AgentStats struct {
	AgentID             uuid.UUID       `json:"agentId"`
	AgentName           string          `json:"agentName"`
	TotalCalls          int64           `json:"totalCalls"`
	TodayCalls          int64           `json:"todayCalls"`
	TotalConversions    int64           `json:"totalConversions"`
	TodayConversions    int64           `json:"todayConversions"`
	LeadsAssigned       int64           `json:"leadsAssigned"`
	ConversionRate      float64         `json:"conversionRate"`
	TotalRevenue        decimal.Decimal `json:"totalRevenue"`
	AverageCallDuration float64         `json:"averageCallDurationSeconds"`
	Target              *TargetProgress `json:"target,omitempty"`
}

type LeaderboardEntry struct {
	Rank int `json:"rank"`
	AgentStats
}

type LeaderboardResponse struct {
	Items []LeaderboardEntry `json:"items"`
}
