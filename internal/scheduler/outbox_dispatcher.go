package scheduler

import (
	"context"
	"time"

	"travel_crm_backend/internal/notification/outbox"
	"travel_crm_backend/platform/config"
	"travel_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// claimHorizon lets records due shortly after a tick be handed to asynq
// early; asynq holds them until run_at.
const claimHorizon = time.Minute

// OutboxClaimer is the part of the outbox store the dispatcher needs.
type OutboxClaimer interface {
	ClaimDue(ctx context.Context, horizon time.Time, limit int) ([]outbox.Record, error)
	MarkPending(ctx context.Context, id uuid.UUID, lastError *string) error
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// OutboxDispatcher moves due outbox records onto the asynq queue.
type OutboxDispatcher struct {
	client   Enqueuer
	closer   func() error
	repo     OutboxClaimer
	interval time.Duration
	batch    int
	now      func() time.Time
	log      *logger.Logger
}

func NewOutboxDispatcher(cfg config.SchedulerConfig, repo OutboxClaimer, log *logger.Logger) (*OutboxDispatcher, error) {
	client, err := newAsynqClient(cfg)
	if err != nil {
		return nil, err
	}
	d := newOutboxDispatcher(client, repo, cfg.GetOutboxPollInterval(), cfg.GetOutboxBatchSize(), log)
	d.closer = client.Close
	return d, nil
}

func newOutboxDispatcher(client Enqueuer, repo OutboxClaimer, interval time.Duration, batch int, log *logger.Logger) *OutboxDispatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batch < 1 {
		batch = 50
	}
	return &OutboxDispatcher{
		client:   client,
		repo:     repo,
		interval: interval,
		batch:    batch,
		now:      time.Now,
		log:      log,
	}
}

func (d *OutboxDispatcher) Close() error {
	if d == nil || d.closer == nil {
		return nil
	}
	return d.closer()
}

func (d *OutboxDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil || d.repo == nil {
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if _, err := d.dispatchDue(ctx); err != nil {
			d.log.Warn("outbox claim failed", "error", err)
		}
	}
}

// dispatchDue claims one batch and returns how many records were enqueued.
// Records that cannot be enqueued go back to pending with the error recorded.
func (d *OutboxDispatcher) dispatchDue(ctx context.Context) (int, error) {
	records, err := d.repo.ClaimDue(ctx, d.now().Add(claimHorizon), d.batch)
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, rec := range records {
		task, err := NewPushDeliverTask(PushDeliverPayload{OutboxID: rec.ID.String()})
		if err == nil {
			_, err = d.client.EnqueueContext(ctx, task,
				asynq.ProcessAt(rec.RunAt),
				asynq.Queue(defaultQueue),
				asynq.MaxRetry(pushMaxRetry),
				asynq.TaskID(rec.ID.String()),
			)
		}
		if err != nil {
			msg := err.Error()
			if markErr := d.repo.MarkPending(ctx, rec.ID, &msg); markErr != nil {
				d.log.Error("outbox requeue failed", "outbox_id", rec.ID, "error", markErr)
			}
			continue
		}
		enqueued++
	}
	return enqueued, nil
}
