package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"venuepipe/internal/classify"
	"venuepipe/internal/config"
	"venuepipe/internal/ingest"
	"venuepipe/internal/metrics"
	"venuepipe/internal/model"
	"venuepipe/internal/rejects"
	"venuepipe/internal/storage"
	"venuepipe/internal/validate"
)

var pollErrorBackoff = time.Second

// Engine runs the ingestion loop: one message is decoded, validated,
// classified and written in its own transaction before the next poll.
type Engine struct {
	logger       *slog.Logger
	source       ingest.Source
	store        storage.Store
	rejects      *rejects.Store
	validator    *validate.Validator
	pollTimeout  time.Duration
	writeTimeout time.Duration
	state        atomic.Int32
	started      time.Time
	now          func() time.Time

	polled     atomic.Int64
	empty      atomic.Int64
	rejected   atomic.Int64
	inserted   atomic.Int64
	duplicates atomic.Int64
	failed     atomic.Int64
	byKind     [3]atomic.Int64
}

type Stats struct {
	State      State                `json:"state"`
	Started    time.Time            `json:"started"`
	Polled     int64                `json:"polled"`
	Empty      int64                `json:"empty_polls"`
	Rejected   int64                `json:"rejected"`
	Inserted   int64                `json:"inserted"`
	Duplicates int64                `json:"duplicates"`
	Failed     int64                `json:"failed"`
	ByKind     map[model.Kind]int64 `json:"by_kind"`
}

var kinds = [3]model.Kind{model.KindRating, model.KindEmergency, model.KindAssistance}

func NewEngine(cfg *config.Config, logger *slog.Logger, source ingest.Source, store storage.Store, rejectsStore *rejects.Store) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if rejectsStore == nil {
		rejectsStore = rejects.NewStore(cfg.Rejects.StoreLimit)
	}
	writeTimeout := cfg.Storage.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Engine{
		logger:       logger,
		source:       source,
		store:        store,
		rejects:      rejectsStore,
		validator:    validate.New(cfg.Validation),
		pollTimeout:  cfg.Kafka.PollTimeout,
		writeTimeout: writeTimeout,
		started:      time.Now().UTC(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (e *Engine) State() State {
	return State(e.state.Load())
}

func (e *Engine) setState(s State) {
	e.state.Store(int32(s))
}

// Run polls until ctx is cancelled. Cancellation is only observed between
// messages, so a write in progress always finishes first.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("ingestion loop started", "checks", e.validator.Checks(), "poll_timeout", e.pollTimeout)
	for {
		if ctx.Err() != nil {
			e.setState(StateShuttingDown)
			e.logger.Info("ingestion loop stopping", "reason", context.Cause(ctx))
			return nil
		}
		e.setState(StatePolling)
		msg, err := e.source.Poll(ctx, e.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			metrics.MessagesTotal.WithLabelValues("poll_error").Inc()
			e.logger.Warn("queue poll error", "err", err)
			ingest.BackoffSleep(ctx, pollErrorBackoff)
			continue
		}
		if msg == nil {
			e.empty.Add(1)
			metrics.MessagesTotal.WithLabelValues(string(OutcomeEmpty)).Inc()
			continue
		}
		e.Process(ctx, msg)
	}
}

// Process handles a single message end to end.
func (e *Engine) Process(ctx context.Context, msg *ingest.Message) Outcome {
	e.polled.Add(1)
	metrics.LastOffset.WithLabelValues(msg.Topic, strconv.Itoa(msg.Partition)).Set(float64(msg.Offset))

	e.setState(StateParsing)
	raw, err := ingest.Decode(msg.Value)
	if err != nil {
		return e.reject(model.Rejection{
			Reason:  model.ReasonDecode,
			Detail:  err.Error(),
			Payload: string(msg.Value),
		})
	}

	e.setState(StateValidating)
	rec, rej := e.validator.Validate(raw)
	if rej != nil {
		return e.reject(*rej)
	}

	e.setState(StateClassifying)
	classified := classify.Classify(rec)
	row := classify.Project(classified)

	outcome := e.persist(ctx, classified.Kind, row)
	metrics.MessagesTotal.WithLabelValues(string(outcome)).Inc()
	metrics.RecordsTotal.WithLabelValues(string(classified.Kind), string(outcome)).Inc()
	return outcome
}

func (e *Engine) persist(ctx context.Context, kind model.Kind, row model.Row) Outcome {
	// Detached from ctx so shutdown never aborts a transaction midway.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.writeTimeout)
	defer cancel()
	start := time.Now()

	e.setState(StatePersisting)
	tx, err := e.store.Begin(wctx)
	if err != nil {
		return e.persistFailed("begin", row, err)
	}
	inserted, err := tx.Insert(wctx, row)
	if err != nil {
		_ = tx.Rollback()
		return e.persistFailed("insert", row, err)
	}

	e.setState(StateCommitting)
	if err := tx.Commit(); err != nil {
		return e.persistFailed("commit", row, err)
	}
	metrics.WriteLatency.WithLabelValues(string(row.Destination)).Observe(time.Since(start).Seconds())

	if !inserted {
		e.duplicates.Add(1)
		e.logger.Debug("duplicate record ignored", "kind", kind, "destination", row.Destination, "values", row.Values)
		return OutcomeDuplicate
	}
	e.inserted.Add(1)
	for i, k := range kinds {
		if k == kind {
			e.byKind[i].Add(1)
		}
	}
	e.logger.Debug("record persisted", "kind", kind, "destination", row.Destination, "values", row.Values)
	return OutcomeInserted
}

func (e *Engine) persistFailed(stage string, row model.Row, err error) Outcome {
	if errors.Is(err, storage.ErrCommit) {
		stage = "commit"
	}
	e.failed.Add(1)
	metrics.PersistErrorsTotal.WithLabelValues(stage).Inc()
	e.logger.Error("persist failed",
		"stage", stage,
		"destination", row.Destination,
		"values", row.Values,
		"err", err,
	)
	return OutcomeFailed
}

func (e *Engine) reject(rej model.Rejection) Outcome {
	rej.ID = uuid.NewString()
	rej.Time = e.now()
	e.rejected.Add(1)
	e.rejects.Add(rej)
	metrics.MessagesTotal.WithLabelValues(string(OutcomeRejected)).Inc()
	metrics.RejectionsTotal.WithLabelValues(string(rej.Reason), rej.Field).Inc()
	e.logger.Error("record rejected",
		"reason", rej.Reason,
		"field", rej.Field,
		"detail", rej.Detail,
		"record", rej.Payload,
		"rejection_id", rej.ID,
	)
	return OutcomeRejected
}

func (e *Engine) Stats() Stats {
	byKind := make(map[model.Kind]int64, len(kinds))
	for i, k := range kinds {
		byKind[k] = e.byKind[i].Load()
	}
	return Stats{
		State:      e.State(),
		Started:    e.started,
		Polled:     e.polled.Load(),
		Empty:      e.empty.Load(),
		Rejected:   e.rejected.Load(),
		Inserted:   e.inserted.Load(),
		Duplicates: e.duplicates.Load(),
		Failed:     e.failed.Load(),
		ByKind:     byKind,
	}
}

// Rejections is the journal shared with the admin API.
func (e *Engine) Rejections() *rejects.Store {
	return e.rejects
}
