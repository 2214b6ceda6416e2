package line

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/grouplog/internal/logging"
	"github.com/aretw0/grouplog/pkg/domain"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// API is the subset of the Messaging API client the Emitter uses.
type API interface {
	ReplyMessage(req *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
	PushMessage(req *messaging_api.PushMessageRequest, xLineRetryKey string) (*messaging_api.PushMessageResponse, error)
}

// Emitter implements ports.Messenger over the Messaging API.
type Emitter struct {
	api    API
	logger *slog.Logger
}

// EmitterOption configures the Emitter.
type EmitterOption func(*Emitter)

// WithEmitterLogger sets the logger.
func WithEmitterLogger(logger *slog.Logger) EmitterOption {
	return func(e *Emitter) {
		e.logger = logger
	}
}

// NewEmitter wraps an API client.
func NewEmitter(api API, opts ...EmitterOption) *Emitter {
	e := &Emitter{api: api, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewClient creates a Messaging API client for the channel access token.
func NewClient(channelAccessToken string) (*messaging_api.MessagingApiAPI, error) {
	client, err := messaging_api.NewMessagingApiAPI(channelAccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging api client: %w", err)
	}
	return client, nil
}

// Reply answers an event through its reply token.
func (e *Emitter) Reply(ctx context.Context, replyToken string, reply domain.Reply) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	messages, err := Messages(reply)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	if _, err := e.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	}); err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	e.logger.Debug("Reply sent", "messages", len(messages))
	return nil
}

// Push sends a message to a group without a reply token.
func (e *Emitter) Push(ctx context.Context, groupID string, reply domain.Reply) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	messages, err := Messages(reply)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	if _, err := e.api.PushMessage(&messaging_api.PushMessageRequest{
		To:       groupID,
		Messages: messages,
	}, ""); err != nil {
		return fmt.Errorf("push message to %s: %w", groupID, err)
	}
	e.logger.Debug("Push sent", "group_id", groupID, "messages", len(messages))
	return nil
}

// Messages translates an abstract reply into LINE messages.
func Messages(reply domain.Reply) ([]messaging_api.MessageInterface, error) {
	switch r := reply.(type) {
	case nil:
		return nil, nil

	case domain.TextReply:
		messages := make([]messaging_api.MessageInterface, 0, len(r.Texts))
		for _, text := range r.Texts {
			messages = append(messages, messaging_api.TextMessage{Text: text})
		}
		return messages, nil

	case domain.MenuReply:
		items := make([]messaging_api.QuickReplyItem, 0, len(r.Options))
		for _, opt := range r.Options {
			items = append(items, messaging_api.QuickReplyItem{Action: action(opt)})
		}
		return []messaging_api.MessageInterface{
			messaging_api.TextMessage{
				Text:       r.Text,
				QuickReply: &messaging_api.QuickReply{Items: items},
			},
		}, nil

	case domain.ConfirmReply:
		actions := make([]messaging_api.ActionInterface, 0, len(r.Actions))
		for _, opt := range r.Actions {
			actions = append(actions, action(opt))
		}
		return []messaging_api.MessageInterface{
			messaging_api.TemplateMessage{
				AltText: r.AltText,
				Template: &messaging_api.ConfirmTemplate{
					Text:    r.Text,
					Actions: actions,
				},
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported reply %T", reply)
	}
}

func action(opt domain.Option) messaging_api.ActionInterface {
	if opt.Kind == domain.OptionDatePicker {
		return &messaging_api.DatetimePickerAction{
			Label: opt.Label,
			Data:  opt.Data,
			Mode:  messaging_api.DatetimePickerActionMODE_DATE,
		}
	}
	return &messaging_api.PostbackAction{
		Label:       opt.Label,
		Data:        opt.Data,
		DisplayText: opt.Label,
	}
}
