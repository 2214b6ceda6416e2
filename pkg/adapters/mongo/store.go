package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/grouplog/pkg/domain"
	"go.mongodb.org/mongo-driver/bson"
	backend "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store implements ports.Store on a MongoDB database with one collection per
// document kind (GroupInfo, EventLog, Calendar). Every query is a group_id equality.
type Store struct {
	client   *backend.Client
	groups   *backend.Collection
	flows    *backend.Collection
	calendar *backend.Collection
}

// Connect dials MongoDB and verifies the connection.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := backend.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect error: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping error: %w", err)
	}

	return New(client, database), nil
}

// New creates a store on an existing client.
func New(client *backend.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:   client,
		groups:   db.Collection(domain.CollectionGroupInfo),
		flows:    db.Collection(domain.CollectionEventLog),
		calendar: db.Collection(domain.CollectionCalendar),
	}
}

// EnsureIndexes creates the group_id indexes. GroupInfo and EventLog are unique per group.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	byGroup := bson.D{{Key: "group_id", Value: 1}}

	for _, coll := range []*backend.Collection{s.groups, s.flows} {
		_, err := coll.Indexes().CreateOne(ctx, backend.IndexModel{
			Keys:    byGroup,
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("failed to index %s: %w", coll.Name(), err)
		}
	}

	if _, err := s.calendar.Indexes().CreateOne(ctx, backend.IndexModel{Keys: byGroup}); err != nil {
		return fmt.Errorf("failed to index %s: %w", s.calendar.Name(), err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func byGroupID(groupID string) bson.M {
	return bson.M{"group_id": groupID}
}

// flowUpdate is the partial update applied by SaveFlow. An empty date is unset
// rather than stored, so a reset can never leave a stale date behind.
func flowUpdate(log *domain.EventLog) bson.M {
	update := bson.M{
		"$set": bson.M{
			"timestamp": log.Timestamp,
			"funcs":     log.Funcs,
		},
	}
	if log.Date != "" {
		update["$set"].(bson.M)["date"] = log.Date
	} else {
		update["$unset"] = bson.M{"date": ""}
	}
	return update
}

// LoadFlow retrieves the EventLog of a group.
func (s *Store) LoadFlow(ctx context.Context, groupID string) (*domain.EventLog, error) {
	var log domain.EventLog
	if err := s.flows.FindOne(ctx, byGroupID(groupID)).Decode(&log); err != nil {
		if errors.Is(err, backend.ErrNoDocuments) {
			return nil, domain.ErrFlowNotFound
		}
		return nil, fmt.Errorf("failed to find flow: %w", err)
	}
	return &log, nil
}

// SaveFlow updates the EventLog of a group, inserting it if absent.
func (s *Store) SaveFlow(ctx context.Context, log *domain.EventLog) error {
	_, err := s.flows.UpdateOne(ctx, byGroupID(log.GroupID), flowUpdate(log), options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to update flow: %w", err)
	}
	return nil
}

// DeleteFlow removes the EventLog of a group.
func (s *Store) DeleteFlow(ctx context.Context, groupID string) error {
	if _, err := s.flows.DeleteOne(ctx, byGroupID(groupID)); err != nil {
		return fmt.Errorf("failed to delete flow: %w", err)
	}
	return nil
}

// CreateGroup writes the GroupInfo, replacing any previous document of the group.
func (s *Store) CreateGroup(ctx context.Context, group *domain.GroupInfo) error {
	_, err := s.groups.ReplaceOne(ctx, byGroupID(group.GroupID), group, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to write group: %w", err)
	}
	return nil
}

// LoadGroup retrieves the GroupInfo of a group.
func (s *Store) LoadGroup(ctx context.Context, groupID string) (*domain.GroupInfo, error) {
	var group domain.GroupInfo
	if err := s.groups.FindOne(ctx, byGroupID(groupID)).Decode(&group); err != nil {
		if errors.Is(err, backend.ErrNoDocuments) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to find group: %w", err)
	}
	return &group, nil
}

// DeleteGroup removes the GroupInfo of a group.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	if _, err := s.groups.DeleteOne(ctx, byGroupID(groupID)); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

// AppendRecord inserts a Calendar document.
func (s *Store) AppendRecord(ctx context.Context, record *domain.CalendarRecord) error {
	if _, err := s.calendar.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// FirstRecord returns whichever Calendar document of the group the server yields first.
func (s *Store) FirstRecord(ctx context.Context, groupID string) (*domain.CalendarRecord, error) {
	var record domain.CalendarRecord
	if err := s.calendar.FindOne(ctx, byGroupID(groupID)).Decode(&record); err != nil {
		if errors.Is(err, backend.ErrNoDocuments) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find record: %w", err)
	}
	return &record, nil
}

// DeleteRecords removes every Calendar document of the group.
func (s *Store) DeleteRecords(ctx context.Context, groupID string) error {
	if _, err := s.calendar.DeleteMany(ctx, byGroupID(groupID)); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	return nil
}
