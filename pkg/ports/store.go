package ports

import (
	"context"

	"github.com/aretw0/grouplog/pkg/domain"
)

// FlowStore persists the EventLog of each group.
// Every operation is scoped to a single group_id.
type FlowStore interface {
	// LoadFlow retrieves the flow state of a group.
	// Returns domain.ErrFlowNotFound if the group has none.
	LoadFlow(ctx context.Context, groupID string) (*domain.EventLog, error)

	// SaveFlow writes the flow state, creating it if absent.
	// An empty Date must remove any previously stored date.
	SaveFlow(ctx context.Context, log *domain.EventLog) error

	// DeleteFlow removes the flow state of a group. Deleting a missing one is not an error.
	DeleteFlow(ctx context.Context, groupID string) error
}

// GroupStore persists GroupInfo documents.
type GroupStore interface {
	// CreateGroup writes the group, replacing an existing document with the same group_id.
	CreateGroup(ctx context.Context, group *domain.GroupInfo) error

	// LoadGroup returns domain.ErrGroupNotFound if the group does not exist.
	LoadGroup(ctx context.Context, groupID string) (*domain.GroupInfo, error)

	DeleteGroup(ctx context.Context, groupID string) error
}

// RecordStore persists Calendar records.
type RecordStore interface {
	AppendRecord(ctx context.Context, record *domain.CalendarRecord) error

	// FirstRecord returns one record of the group, in no defined order.
	// Returns domain.ErrRecordNotFound if the group has no records.
	FirstRecord(ctx context.Context, groupID string) (*domain.CalendarRecord, error)

	// DeleteRecords removes every record of the group.
	DeleteRecords(ctx context.Context, groupID string) error
}

// Store bundles the three collections the dispatcher works with.
type Store interface {
	GroupStore
	FlowStore
	RecordStore
}
