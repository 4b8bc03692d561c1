package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ListItinerariesRequest struct {
	Place string `form:"place" validate:"omitempty,max=120"`
}

type CreateItineraryRequest struct {
	Place         string           `json:"place" validate:"required,min=1,max=120"`
	Title         string           `json:"title" validate:"required,min=1,max=200"`
	TransportMode string           `json:"transportMode" validate:"required,oneof=flight train bus self_drive cruise"`
	Days          int              `json:"days" validate:"required,min=1,max=90"`
	Nights        int              `json:"nights" validate:"min=0,max=90"`
	PriceUSD      decimal.Decimal  `json:"priceUsd"`
	PriceINR      *decimal.Decimal `json:"priceInr,omitempty"`
}

type SetActiveRequest struct {
	IsActive bool `json:"isActive"`
}

// ItineraryResponse carries both prices. PriceINRFixed is false when the INR
// price was derived from the current exchange rate.
type ItineraryResponse struct {
	ID            uuid.UUID       `json:"id"`
	Place         string          `json:"place"`
	Title         string          `json:"title"`
	TransportMode string          `json:"transportMode"`
	Days          int             `json:"days"`
	Nights        int             `json:"nights"`
	PriceUSD      decimal.Decimal `json:"priceUsd"`
	PriceINR      decimal.Decimal `json:"priceInr"`
	PriceINRFixed bool            `json:"priceInrFixed"`
	IsActive      bool            `json:"isActive"`
}

type ItineraryListResponse struct {
	Items []ItineraryResponse `json:"items"`
	Rate  *decimal.Decimal    `json:"usdToInr,omitempty"`
}
