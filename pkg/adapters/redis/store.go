package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/grouplog/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "grouplog:"

// FlowStore implements ports.FlowStore using Redis.
// Each EventLog is one JSON value under <prefix>flow:<group_id>, without expiry:
// an expired flow would leave the group unable to use the bot until it rejoins.
type FlowStore struct {
	client *backend.Client
	prefix string
}

type Option func(*FlowStore)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *FlowStore) {
		s.prefix = prefix
	}
}

// NewClient opens a Redis client for the given address.
func NewClient(address, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}

// NewFlowStore creates a new Redis flow store from an existing client.
func NewFlowStore(client *backend.Client, opts ...Option) *FlowStore {
	store := &FlowStore{
		client: client,
		prefix: DefaultPrefix,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *FlowStore) key(groupID string) string {
	return s.prefix + "flow:" + groupID
}

// SaveFlow persists the flow state.
func (s *FlowStore) SaveFlow(ctx context.Context, log *domain.EventLog) error {
	data, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("failed to marshal flow: %w", err)
	}

	if err := s.client.Set(ctx, s.key(log.GroupID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// LoadFlow retrieves the flow state.
func (s *FlowStore) LoadFlow(ctx context.Context, groupID string) (*domain.EventLog, error) {
	val, err := s.client.Get(ctx, s.key(groupID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrFlowNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var log domain.EventLog
	if err := json.Unmarshal(val, &log); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flow: %w", err)
	}

	return &log, nil
}

// DeleteFlow removes the flow state.
func (s *FlowStore) DeleteFlow(ctx context.Context, groupID string) error {
	if err := s.client.Del(ctx, s.key(groupID)).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (s *FlowStore) Close() error {
	return s.client.Close()
}
