package middleware

import (
	"context"

	"github.com/aretw0/grouplog/pkg/domain"
	"github.com/aretw0/grouplog/pkg/ports"
)

type splitMiddleware struct {
	ports.Store
	flows ports.FlowStore
}

// WithFlowStore routes EventLog operations to flows, leaving groups and records
// on the wrapped store.
func WithFlowStore(flows ports.FlowStore) Middleware {
	return func(next ports.Store) ports.Store {
		return &splitMiddleware{Store: next, flows: flows}
	}
}

func (m *splitMiddleware) LoadFlow(ctx context.Context, groupID string) (*domain.EventLog, error) {
	return m.flows.LoadFlow(ctx, groupID)
}

func (m *splitMiddleware) SaveFlow(ctx context.Context, log *domain.EventLog) error {
	return m.flows.SaveFlow(ctx, log)
}

func (m *splitMiddleware) DeleteFlow(ctx context.Context, groupID string) error {
	return m.flows.DeleteFlow(ctx, groupID)
}
