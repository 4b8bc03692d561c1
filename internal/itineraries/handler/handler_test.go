package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"travel_crm_backend/internal/itineraries/repository"
	"travel_crm_backend/internal/itineraries/service"
	"travel_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubStore struct {
	items []repository.Itinerary
}

func (s stubStore) GetByID(_ context.Context, id uuid.UUID) (repository.Itinerary, error) {
	for _, it := range s.items {
		if it.ID == id {
			return it, nil
		}
	}
	return repository.Itinerary{}, repository.ErrNotFound
}

func (s stubStore) ListActive(context.Context, string) ([]repository.Itinerary, error) {
	return s.items, nil
}

func (s stubStore) Create(context.Context, repository.CreateParams) (repository.Itinerary, error) {
	return repository.Itinerary{}, nil
}

func (s stubStore) SetActive(context.Context, uuid.UUID, bool) error { return nil }

type stubRates struct{}

func (stubRates) LatestUSDToINR(context.Context) (decimal.Decimal, error) {
	return decimal.NewFromInt(83), nil
}

func newEngine(items ...repository.Itinerary) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := New(service.New(stubStore{items: items}, stubRates{}), validator.New())
	engine.GET("/itineraries", h.List)
	engine.GET("/itineraries/:id", h.GetByID)
	return engine
}

func TestGetByIDReturnsConvertedPrice(t *testing.T) {
	it := repository.Itinerary{ID: uuid.New(), Place: "Dubai", Title: "Dubai Delight", Days: 5, Nights: 4,
		PriceUSD: decimal.NewFromInt(700), IsActive: true}
	engine := newEngine(it)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/itineraries/"+it.ID.String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		PriceINR string `json:"priceInr"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.PriceINR != "58100" {
		t.Fatalf("unexpected priceInr %q", body.PriceINR)
	}
}

func TestGetByIDStatuses(t *testing.T) {
	engine := newEngine()
	cases := map[string]int{
		"/itineraries/bad-id":              http.StatusBadRequest,
		"/itineraries/" + uuid.NewString(): http.StatusNotFound,
	}
	for path, want := range cases {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Fatalf("%s: expected %d, got %d", path, want, rec.Code)
		}
	}
}
