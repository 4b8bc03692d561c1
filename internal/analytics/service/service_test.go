package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"travel_crm_backend/internal/analytics/repository"
	"travel_crm_backend/internal/analytics/transport"
	"travel_crm_backend/internal/auth"
	"travel_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ist = time.FixedZone("IST", 5*3600+1800)

type workflowCfg struct{}

func (workflowCfg) GetLocation() *time.Location { return ist }
func (workflowCfg) GetReminderTime() string     { return "10:00" }

// agentNumbers are the totals a fake agent reports. Windows that start at
// today's midnight get the "today" figures.
type agentNumbers struct {
	agent       repository.Agent
	calls       repository.CallStats
	todayCalls  int64
	conversions repository.ConversionStats
	todayConvs  int64
	leads       int64
	target      *repository.Target
}

type fakeStore struct {
	mu         sync.Mutex
	agents     map[uuid.UUID]agentNumbers
	order      []uuid.UUID
	todayStart time.Time
	windows    []repository.Window
	upserted   *repository.Target
}

func newFakeStore(todayStart time.Time, numbers ...agentNumbers) *fakeStore {
	f := &fakeStore{agents: map[uuid.UUID]agentNumbers{}, todayStart: todayStart}
	for _, n := range numbers {
		f.agents[n.agent.ID] = n
		f.order = append(f.order, n.agent.ID)
	}
	return f
}

func (f *fakeStore) isToday(w repository.Window) bool {
	return w.From != nil && w.From.Equal(f.todayStart)
}

func (f *fakeStore) GetAgent(_ context.Context, id uuid.UUID) (repository.Agent, error) {
	n, ok := f.agents[id]
	if !ok {
		return repository.Agent{}, repository.ErrAgentNotFound
	}
	return n.agent, nil
}

func (f *fakeStore) ListSalesAgents(context.Context) ([]repository.Agent, error) {
	out := make([]repository.Agent, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.agents[id].agent)
	}
	return out, nil
}

func (f *fakeStore) CallStats(_ context.Context, id uuid.UUID, w repository.Window) (repository.CallStats, error) {
	f.mu.Lock()
	f.windows = append(f.windows, w)
	f.mu.Unlock()
	n := f.agents[id]
	if f.isToday(w) {
		return repository.CallStats{Count: n.todayCalls}, nil
	}
	return n.calls, nil
}

func (f *fakeStore) ConversionStats(_ context.Context, id uuid.UUID, w repository.Window) (repository.ConversionStats, error) {
	n := f.agents[id]
	if f.isToday(w) {
		return repository.ConversionStats{Count: n.todayConvs}, nil
	}
	return n.conversions, nil
}

func (f *fakeStore) LeadsAssigned(_ context.Context, id uuid.UUID, _ repository.Window) (int64, error) {
	return f.agents[id].leads, nil
}

func (f *fakeStore) GetTarget(_ context.Context, id uuid.UUID, month string) (repository.Target, bool, error) {
	n := f.agents[id]
	if n.target == nil || n.target.Month != month {
		return repository.Target{}, false, nil
	}
	return *n.target, true, nil
}

func (f *fakeStore) UpsertTarget(_ context.Context, _ uuid.UUID, t repository.Target) error {
	f.upserted = &t
	return nil
}

func newService(store Store, now time.Time) *Service {
	svc := New(store, workflowCfg{})
	svc.now = func() time.Time { return now }
	return svc
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAgentStatsRatesAndToday(t *testing.T) {
	now := time.Date(2026, 6, 15, 14, 0, 0, 0, ist)
	todayStart := time.Date(2026, 6, 15, 0, 0, 0, 0, ist)
	agent := repository.Agent{ID: uuid.New(), Name: "Ananya Iyer", Role: auth.RoleSales}
	store := newFakeStore(todayStart, agentNumbers{
		agent:       agent,
		calls:       repository.CallStats{Count: 8, DurationSeconds: 1000},
		todayCalls:  3,
		conversions: repository.ConversionStats{Count: 3, Revenue: dec("450000")},
		todayConvs:  1,
		leads:       12,
		target:      &repository.Target{Month: "2026-06", Revenue: dec("900000"), Conversions: 6},
	})

	got, err := newService(store, now).AgentStats(context.Background(), auth.Actor{ID: agent.ID, Roles: []string{auth.RoleSales}}, agent.ID, transport.StatsRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalCalls != 8 || got.TodayCalls != 3 || got.TotalConversions != 3 || got.TodayConversions != 1 {
		t.Fatalf("unexpected counts %+v", got)
	}
	if got.ConversionRate != 0.25 {
		t.Fatalf("expected rate 0.25, got %v", got.ConversionRate)
	}
	if got.AverageCallDuration != 125 {
		t.Fatalf("expected 125s average, got %v", got.AverageCallDuration)
	}
	if got.Target == nil || got.Target.RevenueAchievement != 50 || got.Target.ConversionAchievement != 50 {
		t.Fatalf("unexpected target progress %+v", got.Target)
	}
}

func TestAgentStatsZeroDenominators(t *testing.T) {
	agent := repository.Agent{ID: uuid.New(), Name: "New Joiner", Role: auth.RoleSales}
	store := newFakeStore(time.Time{}, agentNumbers{agent: agent})

	got, err := newService(store, time.Now()).AgentStats(context.Background(), auth.Actor{ID: uuid.New(), Roles: []string{auth.RoleAdmin}}, agent.ID, transport.StatsRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if got.ConversionRate != 0 || got.AverageCallDuration != 0 || got.Target != nil {
		t.Fatalf("expected zeroes, got %+v", got)
	}
}

func TestSalesCannotReadOtherAgents(t *testing.T) {
	store := newFakeStore(time.Time{})
	_, err := newService(store, time.Now()).AgentStats(context.Background(),
		auth.Actor{ID: uuid.New(), Roles: []string{auth.RoleSales}}, uuid.New(), transport.StatsRequest{})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestWindowTreatsToAsInclusiveDay(t *testing.T) {
	agent := repository.Agent{ID: uuid.New(), Name: "A", Role: auth.RoleSales}
	store := newFakeStore(time.Time{}, agentNumbers{agent: agent})
	svc := newService(store, time.Date(2026, 6, 15, 9, 0, 0, 0, ist))

	_, err := svc.AgentStats(context.Background(), auth.Actor{ID: agent.ID}, agent.ID,
		transport.StatsRequest{From: "2026-05-01", To: "2026-05-31"})
	if err != nil {
		t.Fatal(err)
	}

	wantEnd := time.Date(2026, 6, 1, 0, 0, 0, 0, ist)
	found := false
	for _, w := range store.windows {
		if w.To != nil && w.To.Equal(wantEnd) && w.From.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, ist)) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a [2026-05-01, 2026-06-01) window, got %+v", store.windows)
	}
}

func TestWindowRejectsReversedRange(t *testing.T) {
	agent := repository.Agent{ID: uuid.New(), Role: auth.RoleSales}
	store := newFakeStore(time.Time{}, agentNumbers{agent: agent})

	_, err := newService(store, time.Now()).AgentStats(context.Background(), auth.Actor{ID: agent.ID}, agent.ID,
		transport.StatsRequest{From: "2026-06-10", To: "2026-06-01"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	mk := func(name string, convs int64, revenue string) agentNumbers {
		return agentNumbers{
			agent:       repository.Agent{ID: uuid.New(), Name: name, Role: auth.RoleSales},
			conversions: repository.ConversionStats{Count: convs, Revenue: dec(revenue)},
		}
	}
	store := newFakeStore(time.Time{},
		mk("Vikram", 2, "100000"),
		mk("Meera", 5, "200000"),
		mk("Arjun", 5, "300000"),
		mk("Kavya", 2, "100000"),
		mk("Dev", 0, "0"),
	)

	res, err := newService(store, time.Now()).Leaderboard(context.Background(), transport.StatsRequest{})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"Arjun", "Meera", "Kavya", "Vikram", "Dev"}
	for i, name := range want {
		if res.Items[i].AgentName != name || res.Items[i].Rank != i+1 {
			t.Fatalf("position %d: expected %s, got %s (rank %d)", i, name, res.Items[i].AgentName, res.Items[i].Rank)
		}
	}
}

func TestUpsertTargetOnlyForSales(t *testing.T) {
	admin := repository.Agent{ID: uuid.New(), Name: "Boss", Role: auth.RoleAdmin}
	sales := repository.Agent{ID: uuid.New(), Name: "Rep", Role: auth.RoleSales}
	store := newFakeStore(time.Time{}, agentNumbers{agent: admin}, agentNumbers{agent: sales})
	svc := newService(store, time.Now())

	req := transport.UpsertTargetRequest{Month: "2026-07", RevenueTarget: dec("500000.456"), ConversionsTarget: 4}
	if err := svc.UpsertTarget(context.Background(), admin.ID, req); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for admin target, got %v", err)
	}
	if err := svc.UpsertTarget(context.Background(), sales.ID, req); err != nil {
		t.Fatal(err)
	}
	if store.upserted == nil || !store.upserted.Revenue.Equal(dec("500000.46")) {
		t.Fatalf("unexpected stored target %+v", store.upserted)
	}
}
