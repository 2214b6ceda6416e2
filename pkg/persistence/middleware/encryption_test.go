package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/grouplog/pkg/adapters/memory"
	"github.com/aretw0/grouplog/pkg/domain"
	"github.com/aretw0/grouplog/pkg/persistence/middleware"
	"github.com/aretw0/grouplog/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func encrypted(t *testing.T, next ports.Store, cfg middleware.EncryptionConfig) ports.Store {
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	require.NoError(t, secure.AppendRecord(ctx, &domain.CalendarRecord{GroupID: "G1", RecordDate: "2024-01-01", Content: "my-secret-sauce"}))

	// Underlying store only sees ciphertext.
	stored, err := underlying.FirstRecord(ctx, "G1")
	require.NoError(t, err)
	assert.NotContains(t, stored.Content, "my-secret-sauce")
	assert.True(t, strings.HasPrefix(stored.Content, "enc:v1:"))
	assert.Equal(t, "2024-01-01", stored.RecordDate, "only content is encrypted")

	loaded, err := secure.FirstRecord(ctx, "G1")
	require.NoError(t, err)
	assert.Equal(t, "my-secret-sauce", loaded.Content)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	old := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, old.AppendRecord(ctx, &domain.CalendarRecord{GroupID: "G1", Content: "encrypted-with-old-key"}))

	rotated := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	loaded, err := rotated.FirstRecord(ctx, "G1")
	require.NoError(t, err)
	assert.Equal(t, "encrypted-with-old-key", loaded.Content)

	wrong := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey})
	_, err = wrong.FirstRecord(ctx, "G1")
	assert.Error(t, err, "decryption without the old key must fail")
}

func TestEncryptionMiddleware_PlaintextPassthrough(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.AppendRecord(ctx, &domain.CalendarRecord{GroupID: "G1", Content: "legacy"}))

	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	loaded, err := secure.FirstRecord(ctx, "G1")
	require.NoError(t, err)
	assert.Equal(t, "legacy", loaded.Content)

	_, err = secure.FirstRecord(ctx, "G2")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.Error(t, err)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunStoreContract(t, encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}
