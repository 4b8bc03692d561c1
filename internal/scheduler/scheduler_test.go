package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"travel_crm_backend/internal/notification/outbox"
	"travel_crm_backend/internal/push"
	"travel_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type fakeOutbox struct {
	records   map[uuid.UUID]outbox.Record
	claimed   []outbox.Record
	horizon   time.Time
	pending   map[uuid.UUID]string
	failed    map[uuid.UUID]string
	succeeded map[uuid.UUID]bool
}

func newFakeOutbox() *fakeOutbox {
	return &fakeOutbox{
		records:   map[uuid.UUID]outbox.Record{},
		pending:   map[uuid.UUID]string{},
		failed:    map[uuid.UUID]string{},
		succeeded: map[uuid.UUID]bool{},
	}
}

func (f *fakeOutbox) ClaimDue(_ context.Context, horizon time.Time, _ int) ([]outbox.Record, error) {
	f.horizon = horizon
	out := f.claimed
	f.claimed = nil
	return out, nil
}

func (f *fakeOutbox) MarkPending(_ context.Context, id uuid.UUID, lastError *string) error {
	f.pending[id] = *lastError
	return nil
}

func (f *fakeOutbox) GetByID(_ context.Context, id uuid.UUID) (outbox.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return outbox.Record{}, errors.New("not found")
	}
	return rec, nil
}

func (f *fakeOutbox) MarkProcessing(_ context.Context, id uuid.UUID) error {
	rec := f.records[id]
	rec.Status = outbox.StatusProcessing
	rec.Attempts++
	f.records[id] = rec
	return nil
}

func (f *fakeOutbox) MarkSucceeded(_ context.Context, id uuid.UUID) error {
	f.succeeded[id] = true
	return nil
}

func (f *fakeOutbox) MarkFailed(_ context.Context, id uuid.UUID, lastError string) error {
	f.failed[id] = lastError
	return nil
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

type fakePush struct {
	sent []push.Message
	err  error
}

func (f *fakePush) Send(_ context.Context, msg push.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeSweeper struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSweeper) SweepElapsed(context.Context, time.Time) (int64, error) {
	f.calls.Add(1)
	return 2, f.err
}

func pushRecord(t *testing.T, leadID uuid.UUID) outbox.Record {
	t.Helper()
	raw, err := json.Marshal(outbox.PushPayload{
		UserID: uuid.New(),
		Token:  "ExponentPushToken[abc]",
		Title:  "Follow-up due",
		Body:   "Call back Rahul Mehta",
		Type:   "follow_up",
		LeadID: &leadID,
	})
	if err != nil {
		t.Fatal(err)
	}
	return outbox.Record{ID: uuid.New(), Kind: outbox.KindPush, Payload: raw, Status: outbox.StatusEnqueued}
}

func TestPushDeliverPayloadRoundTrip(t *testing.T) {
	task, err := NewPushDeliverTask(PushDeliverPayload{OutboxID: "abc"})
	if err != nil {
		t.Fatal(err)
	}
	if task.Type() != TaskPushDeliver {
		t.Fatalf("unexpected task type %s", task.Type())
	}
	got, err := ParsePushDeliverPayload(task)
	if err != nil || got.OutboxID != "abc" {
		t.Fatalf("unexpected payload %+v, %v", got, err)
	}
}

func TestDispatchEnqueuesClaimedRecords(t *testing.T) {
	store := newFakeOutbox()
	store.claimed = []outbox.Record{pushRecord(t, uuid.New()), pushRecord(t, uuid.New())}
	client := &fakeEnqueuer{}
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	d := newOutboxDispatcher(client, store, time.Second, 10, logger.Discard())
	d.now = func() time.Time { return now }

	n, err := d.dispatchDue(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || len(client.tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", n)
	}
	if !store.horizon.Equal(now.Add(claimHorizon)) {
		t.Fatalf("unexpected claim horizon %s", store.horizon)
	}
}

func TestDispatchReturnsRecordToPendingOnEnqueueFailure(t *testing.T) {
	store := newFakeOutbox()
	rec := pushRecord(t, uuid.New())
	store.claimed = []outbox.Record{rec}

	d := newOutboxDispatcher(&fakeEnqueuer{err: errors.New("redis down")}, store, time.Second, 10, logger.Discard())
	n, err := d.dispatchDue(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("expected nothing enqueued, got %d", n)
	}
	if store.pending[rec.ID] != "redis down" {
		t.Fatalf("expected record back to pending, got %v", store.pending)
	}
}

func TestHandlePushDeliverSends(t *testing.T) {
	store := newFakeOutbox()
	leadID := uuid.New()
	rec := pushRecord(t, leadID)
	store.records[rec.ID] = rec
	sender := &fakePush{}

	w := &Worker{outbox: store, push: sender, log: logger.Discard()}
	task, _ := NewPushDeliverTask(PushDeliverPayload{OutboxID: rec.ID.String()})

	if err := w.handlePushDeliver(context.Background(), task); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].LeadID != leadID.String() {
		t.Fatalf("unexpected sends %+v", sender.sent)
	}
	if !store.succeeded[rec.ID] || store.records[rec.ID].Attempts != 1 {
		t.Fatal("expected record marked succeeded after one attempt")
	}
}

func TestHandlePushDeliverMarksFailure(t *testing.T) {
	store := newFakeOutbox()
	rec := pushRecord(t, uuid.New())
	store.records[rec.ID] = rec

	w := &Worker{outbox: store, push: &fakePush{err: errors.New("gateway timeout")}, log: logger.Discard()}
	task, _ := NewPushDeliverTask(PushDeliverPayload{OutboxID: rec.ID.String()})

	err := w.handlePushDeliver(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry outside a retry budget, got %v", err)
	}
	if store.failed[rec.ID] != "gateway timeout" {
		t.Fatalf("expected failure recorded, got %v", store.failed)
	}
}

func TestHandlePushDeliverDisabledIsNotRetried(t *testing.T) {
	store := newFakeOutbox()
	rec := pushRecord(t, uuid.New())
	store.records[rec.ID] = rec

	w := &Worker{outbox: store, push: &fakePush{err: push.ErrDisabled}, log: logger.Discard()}
	task, _ := NewPushDeliverTask(PushDeliverPayload{OutboxID: rec.ID.String()})

	if err := w.handlePushDeliver(context.Background(), task); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if _, ok := store.failed[rec.ID]; !ok {
		t.Fatal("expected record marked failed")
	}
}

func TestHandlePushDeliverSkipsFinishedRecords(t *testing.T) {
	store := newFakeOutbox()
	rec := pushRecord(t, uuid.New())
	rec.Status = outbox.StatusSucceeded
	store.records[rec.ID] = rec
	sender := &fakePush{}

	w := &Worker{outbox: store, push: sender, log: logger.Discard()}
	task, _ := NewPushDeliverTask(PushDeliverPayload{OutboxID: rec.ID.String()})

	if err := w.handlePushDeliver(context.Background(), task); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("expected no resend of a delivered record")
	}
}

func TestReminderSweepRunsOnStartAndStops(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := NewReminderSweep(sweeper, nil, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for sweeper.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("sweep did not run on start")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRedisClientOptParsesURL(t *testing.T) {
	opt, err := redisClientOpt("rediss://:pw@cache.internal:6380/2", true)
	if err != nil {
		t.Fatal(err)
	}
	if opt.Addr != "cache.internal:6380" || opt.Password != "pw" || opt.DB != 2 {
		t.Fatalf("unexpected opts %+v", opt)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatal("expected insecure TLS config")
	}
}
