package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/aretw0/grouplog/pkg/domain"
	"github.com/aretw0/grouplog/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEventLog_BSONRoundTrip(t *testing.T) {
	tests := []domain.EventLog{
		{GroupID: "G1", Timestamp: 1, Funcs: domain.FlowIdle},
		{GroupID: "G1", Timestamp: 2, Funcs: domain.FlowMenu},
		{GroupID: "G1", Timestamp: 3, Funcs: domain.FlowCreateRecord, Date: "2024-12-31"},
	}

	for _, want := range tests {
		t.Run(want.Funcs.String(), func(t *testing.T) {
			raw, err := bson.Marshal(want)
			require.NoError(t, err)

			var got domain.EventLog
			require.NoError(t, bson.Unmarshal(raw, &got))
			assert.Equal(t, want, got)

			var doc bson.M
			require.NoError(t, bson.Unmarshal(raw, &doc))
			assert.Equal(t, "G1", doc["group_id"])
			assert.Equal(t, string(want.Funcs), doc["funcs"])
			_, hasDate := doc["date"]
			assert.Equal(t, want.Date != "", hasDate, "date is only stored when set")
		})
	}
}

func TestDocuments_BSONFieldNames(t *testing.T) {
	raw, err := bson.Marshal(domain.CalendarRecord{GroupID: "G1", UserID: "U1", Timestamp: 9, RecordDate: "2024-01-01", Content: "note"})
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	for _, key := range []string{"group_id", "user_id", "timestamp", "record_date", "content"} {
		assert.Contains(t, doc, key)
	}

	raw, err = bson.Marshal(domain.NewGroupInfo("G1", 5))
	require.NoError(t, err)
	doc = bson.M{}
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, true, doc["active"])
	assert.Equal(t, int64(5), doc["created_at"])
	assert.Contains(t, doc, "members")
	assert.Empty(t, doc["members"])
}

func TestFlowUpdate(t *testing.T) {
	withDate := flowUpdate(&domain.EventLog{GroupID: "G1", Timestamp: 4, Funcs: domain.FlowCreateRecord, Date: "2024-01-05"})
	assert.Equal(t, bson.M{
		"$set": bson.M{"timestamp": int64(4), "funcs": domain.FlowCreateRecord, "date": "2024-01-05"},
	}, withDate)

	reset := flowUpdate(&domain.EventLog{GroupID: "G1", Timestamp: 5, Funcs: domain.FlowIdle})
	assert.Equal(t, bson.M{
		"$set":   bson.M{"timestamp": int64(5), "funcs": domain.FlowIdle},
		"$unset": bson.M{"date": ""},
	}, reset)
}

// TestMongoStore_Contract runs against a real server when MONGODB_TEST_URI is set.
func TestMongoStore_Contract(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := Connect(ctx, uri, "grouplog_test_"+time.Now().Format("20060102150405"))
	require.NoError(t, err)
	defer func() {
		_ = store.groups.Database().Drop(context.Background())
		_ = store.Close(context.Background())
	}()

	require.NoError(t, store.EnsureIndexes(ctx))
	ports.RunStoreContract(t, store)
}
