package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/grouplog/internal/metrics"
	"github.com/aretw0/grouplog/pkg/domain"
	"github.com/aretw0/grouplog/pkg/ports"
)

type instrumentMiddleware struct {
	next    ports.Store
	metrics *metrics.Metrics
}

// NewInstrumentMiddleware records the duration and outcome of every store call.
// Not-found results count as successful lookups.
func NewInstrumentMiddleware(m *metrics.Metrics) Middleware {
	return func(next ports.Store) ports.Store {
		return &instrumentMiddleware{next: next, metrics: m}
	}
}

func (m *instrumentMiddleware) observe(op string, start time.Time, err error) {
	if errors.Is(err, domain.ErrFlowNotFound) || errors.Is(err, domain.ErrGroupNotFound) || errors.Is(err, domain.ErrRecordNotFound) {
		err = nil
	}
	m.metrics.ObserveStore(op, time.Since(start).Seconds(), err)
}

func (m *instrumentMiddleware) LoadFlow(ctx context.Context, groupID string) (log *domain.EventLog, err error) {
	defer func(start time.Time) { m.observe("load_flow", start, err) }(time.Now())
	return m.next.LoadFlow(ctx, groupID)
}

func (m *instrumentMiddleware) SaveFlow(ctx context.Context, log *domain.EventLog) (err error) {
	defer func(start time.Time) { m.observe("save_flow", start, err) }(time.Now())
	return m.next.SaveFlow(ctx, log)
}

func (m *instrumentMiddleware) DeleteFlow(ctx context.Context, groupID string) (err error) {
	defer func(start time.Time) { m.observe("delete_flow", start, err) }(time.Now())
	return m.next.DeleteFlow(ctx, groupID)
}

func (m *instrumentMiddleware) CreateGroup(ctx context.Context, group *domain.GroupInfo) (err error) {
	defer func(start time.Time) { m.observe("create_group", start, err) }(time.Now())
	return m.next.CreateGroup(ctx, group)
}

func (m *instrumentMiddleware) LoadGroup(ctx context.Context, groupID string) (group *domain.GroupInfo, err error) {
	defer func(start time.Time) { m.observe("load_group", start, err) }(time.Now())
	return m.next.LoadGroup(ctx, groupID)
}

func (m *instrumentMiddleware) DeleteGroup(ctx context.Context, groupID string) (err error) {
	defer func(start time.Time) { m.observe("delete_group", start, err) }(time.Now())
	return m.next.DeleteGroup(ctx, groupID)
}

func (m *instrumentMiddleware) AppendRecord(ctx context.Context, record *domain.CalendarRecord) (err error) {
	defer func(start time.Time) { m.observe("append_record", start, err) }(time.Now())
	return m.next.AppendRecord(ctx, record)
}

func (m *instrumentMiddleware) FirstRecord(ctx context.Context, groupID string) (record *domain.CalendarRecord, err error) {
	defer func(start time.Time) { m.observe("first_record", start, err) }(time.Now())
	return m.next.FirstRecord(ctx, groupID)
}

func (m *instrumentMiddleware) DeleteRecords(ctx context.Context, groupID string) (err error) {
	defer func(start time.Time) { m.observe("delete_records", start, err) }(time.Now())
	return m.next.DeleteRecords(ctx, groupID)
}
