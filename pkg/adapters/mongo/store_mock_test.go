package mongo

import (
	"context"
	"testing"

	"github.com/aretw0/grouplog/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// The mock deployment answers each command with the next queued response, so
// these run without a server and cover decoding and error mapping.
func TestStore_MockDeployment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("LoadFlow decodes the EventLog", func(mt *mtest.T) {
		store := New(mt.Client, "grouplog")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "grouplog.EventLog", mtest.FirstBatch, bson.D{
			{Key: "group_id", Value: "G1"},
			{Key: "timestamp", Value: int64(1700000000000)},
			{Key: "funcs", Value: "create_record"},
			{Key: "date", Value: "2024-01-01"},
		}))

		flow, err := store.LoadFlow(ctx, "G1")
		require.NoError(mt, err)
		assert.Equal(mt, &domain.EventLog{
			GroupID:   "G1",
			Timestamp: 1700000000000,
			Funcs:     domain.FlowCreateRecord,
			Date:      "2024-01-01",
		}, flow)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "find", started.CommandName)
		assert.Equal(mt, "EventLog", started.Command.Lookup("find").StringValue())
	})

	mt.Run("LoadFlow maps an empty batch to ErrFlowNotFound", func(mt *mtest.T) {
		store := New(mt.Client, "grouplog")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "grouplog.EventLog", mtest.FirstBatch))

		_, err := store.LoadFlow(ctx, "G1")
		assert.ErrorIs(mt, err, domain.ErrFlowNotFound)
	})

	mt.Run("LoadFlow wraps server errors", func(mt *mtest.T) {
		store := New(mt.Client, "grouplog")
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized",
		}))

		_, err := store.LoadFlow(ctx, "G1")
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, domain.ErrFlowNotFound)
		assert.Contains(mt, err.Error(), "failed to find flow")
	})

	mt.Run("SaveFlow upserts and unsets an empty date", func(mt *mtest.T) {
		store := New(mt.Client, "grouplog")
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := store.SaveFlow(ctx, &domain.EventLog{GroupID: "G1", Timestamp: 2, Funcs: domain.FlowIdle})
		require.NoError(mt, err)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "update", started.CommandName)

		updates, ok := started.Command.Lookup("updates").ArrayOK()
		require.True(mt, ok)
		values, err := updates.Values()
		require.NoError(mt, err)
		require.Len(mt, values, 1)

		stmt := values[0].Document()
		assert.True(mt, stmt.Lookup("upsert").Boolean())
		assert.Equal(mt, "G1", stmt.Lookup("q", "group_id").StringValue())
		assert.Equal(mt, "", stmt.Lookup("u", "$set", "funcs").StringValue())
		_, err = stmt.LookupErr("u", "$unset", "date")
		assert.NoError(mt, err, "reset removes the stored date")
	})

	mt.Run("SaveFlow wraps write errors", func(mt *mtest.T) {
		store := New(mt.Client, "grouplog")
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := store.SaveFlow(ctx, &domain.EventLog{GroupID: "G1", Funcs: domain.FlowMenu})
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to update flow")
	})

	mt.Run("FirstRecord decodes the Calendar document", func(mt *mtest.T) {
		store := New(mt.Client, "grouplog")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "grouplog.Calendar", mtest.FirstBatch, bson.D{
			{Key: "group_id", Value: "G1"},
			{Key: "user_id", Value: "U1"},
			{Key: "timestamp", Value: int64(5)},
			{Key: "record_date", Value: "2024-01-01"},
			{Key: "content", Value: "團練"},
		}))

		rec, err := store.FirstRecord(ctx, "G1")
		require.NoError(mt, err)
		assert.Equal(mt, &domain.CalendarRecord{
			GroupID:    "G1",
			UserID:     "U1",
			Timestamp:  5,
			RecordDate: "2024-01-01",
			Content:    "團練",
		}, rec)
	})

	mt.Run("FirstRecord maps an empty batch to ErrRecordNotFound", func(mt *mtest.T) {
		store := New(mt.Client, "grouplog")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "grouplog.Calendar", mtest.FirstBatch))

		_, err := store.FirstRecord(ctx, "G1")
		assert.ErrorIs(mt, err, domain.ErrRecordNotFound)
	})

	mt.Run("LoadGroup maps an empty batch to ErrGroupNotFound", func(mt *mtest.T) {
		store := New(mt.Client, "grouplog")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "grouplog.GroupInfo", mtest.FirstBatch))

		_, err := store.LoadGroup(ctx, "G1")
		assert.ErrorIs(mt, err, domain.ErrGroupNotFound)
	})

	mt.Run("CreateGroup replaces with upsert", func(mt *mtest.T) {
		store := New(mt.Client, "grouplog")
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := store.CreateGroup(ctx, &domain.GroupInfo{GroupID: "G1", Active: true, CreatedAt: 1})
		require.NoError(mt, err)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "update", started.CommandName)
		assert.Equal(mt, "GroupInfo", started.Command.Lookup("update").StringValue())
	})
}
