package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"travel_crm_backend/internal/analytics/repository"
	"travel_crm_backend/internal/analytics/transport"
	"travel_crm_backend/internal/auth"
	"travel_crm_backend/platform/apperr"
	"travel_crm_backend/platform/config"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"

	// leaderboardConcurrency caps agents computed in parallel; each runs
	// several queries of its own.
	leaderboardConcurrency = 4
)

// Store is the read side the aggregator needs.
type Store interface {
	GetAgent(ctx context.Context, id uuid.UUID) (repository.Agent, error)
	ListSalesAgents(ctx context.Context) ([]repository.Agent, error)
	CallStats(ctx context.Context, agentID uuid.UUID, w repository.Window) (repository.CallStats, error)
	ConversionStats(ctx context.Context, agentID uuid.UUID, w repository.Window) (repository.ConversionStats, error)
	LeadsAssigned(ctx context.Context, agentID uuid.UUID, w repository.Window) (int64, error)
	GetTarget(ctx context.Context, agentID uuid.UUID, month string) (repository.Target, bool, error)
	UpsertTarget(ctx context.Context, agentID uuid.UUID, t repository.Target) error
}

// Service computes per-agent rollups on demand. Nothing is persisted.
type Service struct {
	repo Store
	loc  *time.Location
	now  func() time.Time
}

func New(repo Store, cfg config.WorkflowConfig) *Service {
	loc := cfg.GetLocation()
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc, now: time.Now}
}

// AgentStats returns the rollup for one agent. Sales agents may only read
// their own numbers.
func (s *Service) AgentStats(ctx context.Context, actor auth.Actor, agentID uuid.UUID, req transport.StatsRequest) (transport.AgentStats, error) {
	if !actor.IsAdmin() && actor.ID != agentID {
		return transport.AgentStats{}, apperr.Forbidden("agents can only view their own analytics")
	}
	window, month, err := s.window(req)
	if err != nil {
		return transport.AgentStats{}, err
	}

	agent, err := s.repo.GetAgent(ctx, agentID)
	if errors.Is(err, repository.ErrAgentNotFound) {
		return transport.AgentStats{}, apperr.NotFound("agent not found")
	}
	if err != nil {
		return transport.AgentStats{}, apperr.Store("analytics.GetAgent", err)
	}
	return s.compute(ctx, agent, window, month)
}

// Leaderboard ranks active sales agents by conversions, then revenue, then
// name so equal agents keep a stable order.
func (s *Service) Leaderboard(ctx context.Context, req transport.StatsRequest) (transport.LeaderboardResponse, error) {
	window, month, err := s.window(req)
	if err != nil {
		return transport.LeaderboardResponse{}, err
	}

	agents, err := s.repo.ListSalesAgents(ctx)
	if err != nil {
		return transport.LeaderboardResponse{}, apperr.Store("analytics.ListSalesAgents", err)
	}

	stats := make([]transport.AgentStats, len(agents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(leaderboardConcurrency)
	for i, agent := range agents {
		g.Go(func() error {
			st, err := s.compute(gctx, agent, window, month)
			if err != nil {
				return err
			}
			stats[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return transport.LeaderboardResponse{}, err
	}

	sortLeaderboard(stats)
	items := make([]transport.LeaderboardEntry, len(stats))
	for i, st := range stats {
		items[i] = transport.LeaderboardEntry{Rank: i + 1, AgentStats: st}
	}
	return transport.LeaderboardResponse{Items: items}, nil
}

func (s *Service) UpsertTarget(ctx context.Context, agentID uuid.UUID, req transport.UpsertTargetRequest) error {
	if req.RevenueTarget.IsNegative() {
		return apperr.Validation("revenueTarget must not be negative")
	}
	agent, err := s.repo.GetAgent(ctx, agentID)
	if errors.Is(err, repository.ErrAgentNotFound) {
		return apperr.NotFound("agent not found")
	}
	if err != nil {
		return apperr.Store("analytics.GetAgent", err)
	}
	if agent.Role != auth.RoleSales {
		return apperr.Validation("targets can only be set for sales agents").WithCode("invalid_assignee")
	}

	err = s.repo.UpsertTarget(ctx, agentID, repository.Target{
		Month:       req.Month,
		Revenue:     req.RevenueTarget.Round(2),
		Conversions: req.ConversionsTarget,
	})
	if err != nil {
		return apperr.Store("analytics.UpsertTarget", err)
	}
	return nil
}

func sortLeaderboard(stats []transport.AgentStats) {
	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.TotalConversions != b.TotalConversions {
			return a.TotalConversions > b.TotalConversions
		}
		if c := a.TotalRevenue.Cmp(b.TotalRevenue); c != 0 {
			return c > 0
		}
		return a.AgentName < b.AgentName
	})
}

// compute runs the independent count queries concurrently.
func (s *Service) compute(ctx context.Context, agent repository.Agent, window repository.Window, month time.Time) (transport.AgentStats, error) {
	today := s.today()
	targetMonth := monthWindow(month)

	var (
		calls, todayCalls             repository.CallStats
		convs, todayConvs, monthConvs repository.ConversionStats
		leads                         int64
		target                        repository.Target
		hasTarget                     bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		calls, err = s.repo.CallStats(gctx, agent.ID, window)
		return storeErr("analytics.CallStats", err)
	})
	g.Go(func() (err error) {
		todayCalls, err = s.repo.CallStats(gctx, agent.ID, today)
		return storeErr("analytics.CallStats", err)
	})
	g.Go(func() (err error) {
		convs, err = s.repo.ConversionStats(gctx, agent.ID, window)
		return storeErr("analytics.ConversionStats", err)
	})
	g.Go(func() (err error) {
		todayConvs, err = s.repo.ConversionStats(gctx, agent.ID, today)
		return storeErr("analytics.ConversionStats", err)
	})
	g.Go(func() (err error) {
		monthConvs, err = s.repo.ConversionStats(gctx, agent.ID, targetMonth)
		return storeErr("analytics.ConversionStats", err)
	})
	g.Go(func() (err error) {
		leads, err = s.repo.LeadsAssigned(gctx, agent.ID, window)
		return storeErr("analytics.LeadsAssigned", err)
	})
	g.Go(func() (err error) {
		target, hasTarget, err = s.repo.GetTarget(gctx, agent.ID, month.Format(monthLayout))
		return storeErr("analytics.GetTarget", err)
	})
	if err := g.Wait(); err != nil {
		return transport.AgentStats{}, err
	}

	out := transport.AgentStats{
		AgentID:             agent.ID,
		AgentName:           agent.Name,
		TotalCalls:          calls.Count,
		TodayCalls:          todayCalls.Count,
		TotalConversions:    convs.Count,
		TodayConversions:    todayConvs.Count,
		LeadsAssigned:       leads,
		ConversionRate:      ratio(decimal.NewFromInt(convs.Count), leads, 4),
		TotalRevenue:        convs.Revenue,
		AverageCallDuration: ratio(decimal.NewFromInt(calls.DurationSeconds), calls.Count, 1),
	}
	if hasTarget {
		out.Target = &transport.TargetProgress{
			Month:                 target.Month,
			RevenueTarget:         target.Revenue,
			ConversionsTarget:     target.Conversions,
			RevenueAchieved:       monthConvs.Revenue,
			ConversionsAchieved:   monthConvs.Count,
			RevenueAchievement:    percent(monthConvs.Revenue, target.Revenue),
			ConversionAchievement: percent(decimal.NewFromInt(monthConvs.Count), decimal.NewFromInt(int64(target.Conversions))),
		}
	}
	return out, nil
}

// window converts the inclusive day range into a half-open timestamp range
// and picks the month whose target is reported: the month of the last day,
// or the current month when the range is open-ended.
func (s *Service) window(req transport.StatsRequest) (repository.Window, time.Time, error) {
	var w repository.Window
	month := s.now().In(s.loc)

	if req.From != "" {
		from, err := time.ParseInLocation(dayLayout, req.From, s.loc)
		if err != nil {
			return w, month, apperr.Validation("from must be YYYY-MM-DD")
		}
		w.From = &from
	}
	if req.To != "" {
		to, err := time.ParseInLocation(dayLayout, req.To, s.loc)
		if err != nil {
			return w, month, apperr.Validation("to must be YYYY-MM-DD")
		}
		month = to
		end := to.AddDate(0, 0, 1)
		w.To = &end
	}
	if w.From != nil && w.To != nil && !w.From.Before(*w.To) {
		return w, month, apperr.Validation("from must not be after to")
	}
	return w, month, nil
}

func (s *Service) today() repository.Window {
	now := s.now().In(s.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 0, 1)
	return repository.Window{From: &start, To: &end}
}

func monthWindow(t time.Time) repository.Window {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0)
	return repository.Window{From: &start, To: &end}
}

// ratio is num/den rounded to places, or 0 when den is 0.
func ratio(num decimal.Decimal, den int64, places int32) float64 {
	if den == 0 {
		return 0
	}
	return num.Div(decimal.NewFromInt(den)).Round(places).InexactFloat64()
}

func percent(achieved, target decimal.Decimal) float64 {
	if !target.IsPositive() {
		return 0
	}
	return achieved.Mul(decimal.NewFromInt(100)).Div(target).Round(1).InexactFloat64()
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return apperr.Store(op, err)
}
