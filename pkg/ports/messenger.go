package ports

import (
	"context"

	"github.com/aretw0/grouplog/pkg/domain"
)

// Messenger delivers abstract replies through the chat platform.
type Messenger interface {
	// Reply answers an event through its one-time reply token.
	Reply(ctx context.Context, replyToken string, reply domain.Reply) error

	// Push sends a message to a group outside of any event.
	Push(ctx context.Context, groupID string, reply domain.Reply) error
}
