package scheduler

import (
	"context"
	"errors"
	"fmt"

	"travel_crm_backend/internal/notification/outbox"
	"travel_crm_backend/internal/push"
	"travel_crm_backend/platform/config"
	"travel_crm_backend/platform/logger"
	"travel_crm_backend/platform/metrics"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// OutboxStore is the part of the outbox the worker updates while delivering.
type OutboxStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (outbox.Record, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkSucceeded(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error
}

// PushSender delivers a device notification.
type PushSender interface {
	Send(ctx context.Context, msg push.Message) error
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	outbox  OutboxStore
	push    PushSender
	metrics *metrics.Metrics
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, store OutboxStore, sender PushSender, m *metrics.Metrics, log *logger.Logger) (*Worker, error) {
	opt, err := redisOpt(cfg)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: defaultConcurrency,
		Queues: map[string]int{
			defaultQueue: 1,
		},
	})

	w := &Worker{
		server:  server,
		mux:     asynq.NewServeMux(),
		outbox:  store,
		push:    sender,
		metrics: m,
		log:     log,
	}
	w.mux.HandleFunc(TaskPushDeliver, w.handlePushDeliver)
	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handlePushDeliver(ctx context.Context, task *asynq.Task) error {
	payload, err := ParsePushDeliverPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	id, err := uuid.Parse(payload.OutboxID)
	if err != nil {
		return fmt.Errorf("outbox id %q: %w", payload.OutboxID, asynq.SkipRetry)
	}

	rec, err := w.outbox.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rec.Status == outbox.StatusSucceeded || rec.Status == outbox.StatusFailed {
		return nil
	}

	msg, err := rec.Push()
	if err != nil {
		w.fail(ctx, id, err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := w.outbox.MarkProcessing(ctx, id); err != nil {
		return err
	}

	leadID := ""
	if msg.LeadID != nil {
		leadID = msg.LeadID.String()
	}
	sendErr := w.push.Send(ctx, push.Message{
		Token:  msg.Token,
		Title:  msg.Title,
		Body:   msg.Body,
		Type:   msg.Type,
		LeadID: leadID,
	})

	switch {
	case sendErr == nil:
		w.metrics.RecordPush("sent")
		return w.outbox.MarkSucceeded(ctx, id)
	case errors.Is(sendErr, push.ErrDisabled):
		w.metrics.RecordPush("disabled")
		w.fail(ctx, id, sendErr)
		return nil
	case finalAttempt(ctx):
		w.metrics.RecordPush("failed")
		w.fail(ctx, id, sendErr)
		return fmt.Errorf("%v: %w", sendErr, asynq.SkipRetry)
	default:
		w.metrics.RecordPush("retry")
		return sendErr
	}
}

func (w *Worker) fail(ctx context.Context, id uuid.UUID, cause error) {
	if err := w.outbox.MarkFailed(ctx, id, cause.Error()); err != nil {
		w.log.Error("outbox mark failed", "outbox_id", id, "error", err)
	}
}

// finalAttempt reports whether asynq will not retry the current task again.
// Outside a worker context there is no retry budget.
func finalAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return true
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return true
	}
	return retried >= maxRetry
}
