package exports

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeLister struct {
	from, to time.Time
	limit    int
	bookings []Booking
}

func (f *fakeLister) ListBookings(_ context.Context, from, to time.Time, limit int) ([]Booking, error) {
	f.from, f.to, f.limit = from, to, limit
	return f.bookings, nil
}

var ist = time.FixedZone("IST", 5*3600+1800)

func newEngine(lister *fakeLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(lister, ist)
	h.now = func() time.Time { return time.Date(2026, 4, 20, 12, 0, 0, 0, ist) }
	engine := gin.New()
	engine.GET("/bookings.csv", h.HandleBookingsCSV)
	return engine
}

func TestBookingsCSV(t *testing.T) {
	lister := &fakeLister{bookings: []Booking{{
		ConfirmationID: uuid.New(),
		LeadID:         uuid.New(),
		ClientName:     "Rohan Das",
		CountryCode:    "+91",
		ContactNumber:  "9876543210",
		Place:          "Maldives",
		NoOfPax:        2,
		LeadSource:     "Instagram",
		AgentName:      "Sneha",
		TravelDate:     time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		TotalAmount:    decimal.NewFromInt(250000),
		AdvanceAmount:  decimal.NewFromInt(50000),
		DueAmount:      decimal.NewFromInt(200000),
		TransactionID:  "UTR123",
		ConfirmedAt:    time.Date(2026, 4, 2, 6, 30, 0, 0, time.UTC),
	}}}

	rec := httptest.NewRecorder()
	newEngine(lister).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings.csv?fromDate=2026-04-01&toDate=2026-04-30", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header and one row, got %d", len(records))
	}
	row := records[1]
	if row[9] != "250000.00" || row[11] != "200000.00" || row[8] != "2026-05-10" {
		t.Fatalf("unexpected row %v", row)
	}
	if !lister.to.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, ist)) {
		t.Fatalf("expected exclusive end at May 1, got %s", lister.to)
	}
}

func TestBookingsCSVDefaultsAndValidation(t *testing.T) {
	lister := &fakeLister{}
	engine := newEngine(lister)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings.csv?limit=999999", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if lister.limit != maxLimit {
		t.Fatalf("expected limit capped to %d, got %d", maxLimit, lister.limit)
	}
	if !lister.from.Equal(time.Date(2026, 1, 20, 0, 0, 0, 0, ist)) {
		t.Fatalf("expected 90 day default window, got %s", lister.from)
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings.csv?fromDate=2026-04-10&toDate=2026-04-01", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for reversed range, got %d", rec.Code)
	}
}
