package service

import (
	"context"
	"errors"

	"travel_crm_backend/internal/itineraries/repository"
	"travel_crm_backend/internal/itineraries/transport"
	"travel_crm_backend/platform/apperr"
	"travel_crm_backend/platform/sanitize"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is the persistence the service needs.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Itinerary, error)
	ListActive(ctx context.Context, place string) ([]repository.Itinerary, error)
	Create(ctx context.Context, p repository.CreateParams) (repository.Itinerary, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// RateSource provides the USD to INR exchange rate.
type RateSource interface {
	LatestUSDToINR(ctx context.Context) (decimal.Decimal, error)
}

type Service struct {
	repo  Store
	rates RateSource
}

func New(repo Store, rates RateSource) *Service {
	return &Service{repo: repo, rates: rates}
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.ItineraryResponse, error) {
	it, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ItineraryResponse{}, mapStoreError("itineraries.GetByID", err)
	}

	var rate decimal.Decimal
	if !it.PriceINR.Valid {
		if rate, err = s.rates.LatestUSDToINR(ctx); err != nil {
			return transport.ItineraryResponse{}, err
		}
	}
	return toResponse(it, rate), nil
}

// List prices every active itinerary for place. The exchange rate is only
// looked up when at least one itinerary has no fixed INR price.
func (s *Service) List(ctx context.Context, req transport.ListItinerariesRequest) (transport.ItineraryListResponse, error) {
	items, err := s.repo.ListActive(ctx, req.Place)
	if err != nil {
		return transport.ItineraryListResponse{}, apperr.Store("itineraries.List", err)
	}

	var rate decimal.Decimal
	var ratePtr *decimal.Decimal
	for _, it := range items {
		if it.PriceINR.Valid {
			continue
		}
		if rate, err = s.rates.LatestUSDToINR(ctx); err != nil {
			return transport.ItineraryListResponse{}, err
		}
		ratePtr = &rate
		break
	}

	out := make([]transport.ItineraryResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toResponse(it, rate))
	}
	return transport.ItineraryListResponse{Items: out, Rate: ratePtr}, nil
}

func (s *Service) Create(ctx context.Context, req transport.CreateItineraryRequest) (transport.ItineraryResponse, error) {
	if req.PriceUSD.IsNegative() {
		return transport.ItineraryResponse{}, apperr.Validation("priceUsd must not be negative")
	}
	if req.Nights > req.Days {
		return transport.ItineraryResponse{}, apperr.Validation("nights cannot exceed days")
	}
	params := repository.CreateParams{
		Place:         sanitize.Text(req.Place),
		Title:         sanitize.Text(req.Title),
		TransportMode: req.TransportMode,
		Days:          req.Days,
		Nights:        req.Nights,
		PriceUSD:      req.PriceUSD.Round(2),
	}
	if req.PriceINR != nil {
		if req.PriceINR.IsNegative() {
			return transport.ItineraryResponse{}, apperr.Validation("priceInr must not be negative")
		}
		params.PriceINR = decimal.NewNullDecimal(req.PriceINR.Round(2))
	}

	it, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.ItineraryResponse{}, apperr.Store("itineraries.Create", err)
	}
	return toResponse(it, decimal.Zero), nil
}

func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return mapStoreError("itineraries.SetActive", s.repo.SetActive(ctx, id, active))
}

// PriceINR is the fixed INR price when set, otherwise price_usd × rate
// rounded to paise.
func PriceINR(it repository.Itinerary, rate decimal.Decimal) decimal.Decimal {
	if it.PriceINR.Valid {
		return it.PriceINR.Decimal
	}
	return it.PriceUSD.Mul(rate).Round(2)
}

func toResponse(it repository.Itinerary, rate decimal.Decimal) transport.ItineraryResponse {
	return transport.ItineraryResponse{
		ID:            it.ID,
		Place:         it.Place,
		Title:         it.Title,
		TransportMode: it.TransportMode,
		Days:          it.Days,
		Nights:        it.Nights,
		PriceUSD:      it.PriceUSD,
		PriceINR:      PriceINR(it, rate),
		PriceINRFixed: it.PriceINR.Valid,
		IsActive:      it.IsActive,
	}
}

func mapStoreError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("itinerary not found").WithOp(op)
	default:
		return apperr.Store(op, err)
	}
}
