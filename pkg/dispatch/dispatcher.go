package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/grouplog/internal/logging"
	"github.com/aretw0/grouplog/internal/metrics"
	"github.com/aretw0/grouplog/internal/runtime"
	"github.com/aretw0/grouplog/pkg/domain"
	"github.com/aretw0/grouplog/pkg/ports"
	"github.com/aretw0/grouplog/pkg/session"
)

// Dispatcher routes decoded events through the engine.
type Dispatcher struct {
	store     ports.Store
	messenger ports.Messenger
	engine    *runtime.Engine
	locks     *session.Manager
	logger    *slog.Logger
	metrics   *metrics.Metrics
	maxLength int
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithEngine replaces the default engine.
func WithEngine(engine *runtime.Engine) Option {
	return func(d *Dispatcher) {
		d.engine = engine
	}
}

// WithLocks serializes dispatch per group. Without it events for the same group
// may interleave between load and save.
func WithLocks(locks *session.Manager) Option {
	return func(d *Dispatcher) {
		d.locks = locks
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics records events, drops and transitions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithMaxMessageLength overrides the message length limit, in characters.
func WithMaxMessageLength(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxLength = n
		}
	}
}

// NewDispatcher creates a dispatcher over the given store and messenger.
func NewDispatcher(store ports.Store, messenger ports.Messenger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:     store,
		messenger: messenger,
		engine:    runtime.NewEngine(),
		logger:    logging.NewNop(),
		maxLength: maxMessageLengthFromEnv(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DispatchAll dispatches every event, even after a failure, and joins the errors.
func (d *Dispatcher) DispatchAll(ctx context.Context, events []domain.Event) error {
	var errs []error
	for _, ev := range events {
		if err := d.Dispatch(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dispatch handles a single event. Events that cannot be interpreted are dropped
// and return nil; only store and messenger failures are returned.
func (d *Dispatcher) Dispatch(ctx context.Context, ev domain.Event) error {
	src := ev.Origin()
	d.metrics.Event(string(ev.Kind()))

	if src.GroupID == "" {
		d.logger.Warn("Dropping event without group", "kind", ev.Kind())
		d.metrics.Drop(metrics.DropNoGroup)
		return nil
	}

	if msg, ok := ev.(domain.MessageEvent); ok {
		text, err := SanitizeText(msg.Text, d.maxLength)
		if err != nil {
			d.logger.Warn("Dropping message", "group_id", src.GroupID, "err", err)
			d.metrics.Drop(metrics.DropInvalidInput)
			return nil
		}
		msg.Text = text
		ev = msg
	}

	if d.locks == nil {
		return d.handle(ctx, ev)
	}
	return d.locks.WithLock(ctx, src.GroupID, func(ctx context.Context) error {
		return d.handle(ctx, ev)
	})
}

func (d *Dispatcher) handle(ctx context.Context, ev domain.Event) error {
	src := ev.Origin()

	var current *domain.EventLog
	if runtime.NeedsFlow(ev) {
		loaded, err := d.store.LoadFlow(ctx, src.GroupID)
		if errors.Is(err, domain.ErrFlowNotFound) {
			d.logger.Warn("No flow state for group, dropping event",
				"group_id", src.GroupID,
				"kind", ev.Kind(),
			)
			d.metrics.Drop(metrics.DropNoFlow)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load flow for %s: %w", src.GroupID, err)
		}
		current = loaded
	}

	decision, err := d.engine.Decide(ev, current)
	if errors.Is(err, runtime.ErrUnsupportedEvent) {
		d.logger.Warn("Dropping unsupported event", "group_id", src.GroupID, "err", err)
		d.metrics.Drop(metrics.DropUnsupported)
		return nil
	}
	if err != nil {
		return err
	}

	reply, err := d.apply(ctx, src.GroupID, current, decision)
	if err != nil {
		return err
	}

	return d.reply(ctx, src, reply)
}

// apply persists the decision and returns the reply to send.
func (d *Dispatcher) apply(ctx context.Context, groupID string, current *domain.EventLog, decision runtime.Decision) (domain.Reply, error) {
	if decision.Remove {
		if err := d.store.DeleteGroup(ctx, groupID); err != nil {
			return nil, fmt.Errorf("failed to delete group %s: %w", groupID, err)
		}
		if err := d.store.DeleteFlow(ctx, groupID); err != nil {
			return nil, fmt.Errorf("failed to delete flow %s: %w", groupID, err)
		}
		if err := d.store.DeleteRecords(ctx, groupID); err != nil {
			return nil, fmt.Errorf("failed to delete records %s: %w", groupID, err)
		}
		d.logger.Info("Group removed", "group_id", groupID)
	}

	if decision.Group != nil {
		if err := d.store.CreateGroup(ctx, decision.Group); err != nil {
			return nil, fmt.Errorf("failed to create group %s: %w", groupID, err)
		}
		d.logger.Info("Group joined", "group_id", groupID)
	}

	if decision.Record != nil {
		if err := d.store.AppendRecord(ctx, decision.Record); err != nil {
			return nil, fmt.Errorf("failed to append record for %s: %w", groupID, err)
		}
	}

	if decision.Flow != nil {
		if err := d.store.SaveFlow(ctx, decision.Flow); err != nil {
			return nil, fmt.Errorf("failed to save flow for %s: %w", groupID, err)
		}
		from := "none"
		if current != nil {
			from = current.Funcs.String()
		}
		d.metrics.Transition(from, decision.Flow.Funcs.String())
		d.logger.Debug("Flow transition",
			"group_id", groupID,
			"from", from,
			"to", decision.Flow.Funcs.String(),
		)
	}

	if !decision.Lookup {
		return decision.Reply, nil
	}

	rec, err := d.store.FirstRecord(ctx, groupID)
	if errors.Is(err, domain.ErrRecordNotFound) {
		return runtime.RecordReply(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up records for %s: %w", groupID, err)
	}
	return runtime.RecordReply(rec), nil
}

func (d *Dispatcher) reply(ctx context.Context, src domain.Source, reply domain.Reply) error {
	if reply == nil {
		return nil
	}
	if src.ReplyToken == "" {
		d.logger.Debug("Skipping reply without token", "group_id", src.GroupID)
		return nil
	}
	if err := d.messenger.Reply(ctx, src.ReplyToken, reply); err != nil {
		return fmt.Errorf("failed to reply in %s: %w", src.GroupID, err)
	}
	return nil
}
