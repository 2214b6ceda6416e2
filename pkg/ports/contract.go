package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/grouplog/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunFlowStoreContract runs a suite of tests to verify that a FlowStore implementation
// adheres to the defined interface contract.
func RunFlowStoreContract(t *testing.T, store FlowStore) {
	ctx := context.Background()
	groupID := "contract-flow-" + time.Now().Format("20060102150405.000000000")

	t.Run("Save and Load", func(t *testing.T) {
		log := domain.NewEventLog(groupID, 1).Transition(domain.FlowCreateRecord, "2024-02-29", 2)

		require.NoError(t, store.SaveFlow(ctx, log), "SaveFlow should not return error")

		loaded, err := store.LoadFlow(ctx, groupID)
		require.NoError(t, err, "LoadFlow should not return error")
		// Round trip must not coerce funcs or date.
		assert.Equal(t, log, loaded)
	})

	t.Run("Save clears date", func(t *testing.T) {
		require.NoError(t, store.SaveFlow(ctx, domain.NewEventLog(groupID, 1).Transition(domain.FlowCreateRecord, "2024-02-29", 2)))
		require.NoError(t, store.SaveFlow(ctx, domain.NewEventLog(groupID, 3)))

		loaded, err := store.LoadFlow(ctx, groupID)
		require.NoError(t, err)
		assert.Equal(t, domain.FlowIdle, loaded.Funcs)
		assert.Empty(t, loaded.Date)
		assert.Equal(t, int64(3), loaded.Timestamp)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.LoadFlow(ctx, "non-existent-"+groupID)
		assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.SaveFlow(ctx, domain.NewEventLog(groupID, 1)))

		require.NoError(t, store.DeleteFlow(ctx, groupID), "DeleteFlow should not return error")

		_, err := store.LoadFlow(ctx, groupID)
		assert.ErrorIs(t, err, domain.ErrFlowNotFound, "LoadFlow after DeleteFlow should return ErrFlowNotFound")

		assert.NoError(t, store.DeleteFlow(ctx, groupID), "deleting twice is not an error")
	})
}

// RunStoreContract runs the FlowStore contract plus the group and record contracts.
func RunStoreContract(t *testing.T, store Store) {
	ctx := context.Background()
	groupID := "contract-group-" + time.Now().Format("20060102150405.000000000")

	RunFlowStoreContract(t, store)

	t.Run("Groups", func(t *testing.T) {
		_, err := store.LoadGroup(ctx, groupID)
		assert.ErrorIs(t, err, domain.ErrGroupNotFound)

		require.NoError(t, store.CreateGroup(ctx, domain.NewGroupInfo(groupID, 10)))
		group, err := store.LoadGroup(ctx, groupID)
		require.NoError(t, err)
		assert.True(t, group.Active)
		assert.Equal(t, int64(10), group.CreatedAt)
		assert.Empty(t, group.Members)

		// Create again replaces rather than duplicates.
		require.NoError(t, store.CreateGroup(ctx, domain.NewGroupInfo(groupID, 20)))
		group, err = store.LoadGroup(ctx, groupID)
		require.NoError(t, err)
		assert.Equal(t, int64(20), group.CreatedAt)

		require.NoError(t, store.DeleteGroup(ctx, groupID))
		_, err = store.LoadGroup(ctx, groupID)
		assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	})

	t.Run("Records", func(t *testing.T) {
		other := groupID + "-other"
		defer func() {
			_ = store.DeleteRecords(ctx, other)
		}()

		_, err := store.FirstRecord(ctx, groupID)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)

		rec := &domain.CalendarRecord{
			GroupID:    groupID,
			UserID:     "U1",
			Timestamp:  30,
			RecordDate: "2024-01-02",
			Content:    "dentist",
		}
		require.NoError(t, store.AppendRecord(ctx, rec))
		require.NoError(t, store.AppendRecord(ctx, &domain.CalendarRecord{GroupID: groupID, UserID: "U2", Timestamp: 31, RecordDate: "2024-01-03", Content: "gym"}))
		require.NoError(t, store.AppendRecord(ctx, &domain.CalendarRecord{GroupID: other, UserID: "U3", Timestamp: 32, RecordDate: "2024-01-04", Content: "other"}))

		first, err := store.FirstRecord(ctx, groupID)
		require.NoError(t, err)
		assert.Equal(t, groupID, first.GroupID)
		assert.Contains(t, []string{"dentist", "gym"}, first.Content)

		require.NoError(t, store.DeleteRecords(ctx, groupID))
		_, err = store.FirstRecord(ctx, groupID)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound, "all records of the group should be gone")

		// Other groups are untouched.
		kept, err := store.FirstRecord(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, "other", kept.Content)
	})
}
