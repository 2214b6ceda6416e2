package line

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/grouplog/internal/logging"
	"github.com/aretw0/grouplog/pkg/domain"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/mitchellh/mapstructure"
)

// ErrInvalidSignature is returned when the X-Line-Signature header does not match the body.
var ErrInvalidSignature = webhook.ErrInvalidSignature

// Parser decodes signed webhook requests.
type Parser struct {
	secret string
	logger *slog.Logger
}

// ParserOption configures the Parser.
type ParserOption func(*Parser)

// WithParserLogger sets the logger used for skipped events.
func WithParserLogger(logger *slog.Logger) ParserOption {
	return func(p *Parser) {
		p.logger = logger
	}
}

// NewParser creates a parser verifying requests with the channel secret.
func NewParser(channelSecret string, opts ...ParserOption) *Parser {
	p := &Parser{secret: channelSecret, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse verifies the request signature and returns the group events it carries.
// Events outside groups and non-text messages are skipped.
func (p *Parser) Parse(r *http.Request) ([]domain.Event, error) {
	cb, err := webhook.ParseRequest(p.secret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			return nil, ErrInvalidSignature
		}
		return nil, fmt.Errorf("failed to parse webhook: %w", err)
	}

	events := make([]domain.Event, 0, len(cb.Events))
	for _, raw := range cb.Events {
		ev, ok, err := p.convert(raw)
		if err != nil {
			return nil, err
		}
		if ok {
			events = append(events, ev)
		}
	}
	return events, nil
}

func (p *Parser) convert(raw webhook.EventInterface) (domain.Event, bool, error) {
	switch e := raw.(type) {
	case webhook.JoinEvent:
		src, ok := groupSource(e.Source, e.ReplyToken, e.Timestamp)
		if !ok {
			return p.skip(e.GetType(), "not a group")
		}
		return domain.JoinEvent{Source: src}, true, nil

	case webhook.LeaveEvent:
		src, ok := groupSource(e.Source, "", e.Timestamp)
		if !ok {
			return p.skip(e.GetType(), "not a group")
		}
		return domain.LeaveEvent{Source: src}, true, nil

	case webhook.MessageEvent:
		src, ok := groupSource(e.Source, e.ReplyToken, e.Timestamp)
		if !ok {
			return p.skip(e.GetType(), "not a group")
		}
		text, ok := e.Message.(webhook.TextMessageContent)
		if !ok {
			return p.skip(e.GetType(), "not a text message")
		}
		return domain.MessageEvent{Source: src, Text: text.Text}, true, nil

	case webhook.PostbackEvent:
		src, ok := groupSource(e.Source, e.ReplyToken, e.Timestamp)
		if !ok {
			return p.skip(e.GetType(), "not a group")
		}
		ev := domain.PostbackEvent{Source: src}
		if e.Postback != nil {
			ev.Data = e.Postback.Data
			params, err := decodeParams(e.Postback.Params)
			if err != nil {
				return nil, false, err
			}
			ev.Params = params
		}
		return ev, true, nil

	default:
		return p.skip(raw.GetType(), "unhandled event type")
	}
}

func (p *Parser) skip(kind, reason string) (domain.Event, bool, error) {
	p.logger.Debug("Skipping webhook event", "type", kind, "reason", reason)
	return nil, false, nil
}

func groupSource(source webhook.SourceInterface, replyToken string, ts int64) (domain.Source, bool) {
	g, ok := source.(webhook.GroupSource)
	if !ok || g.GroupId == "" {
		return domain.Source{}, false
	}
	return domain.Source{
		GroupID:    g.GroupId,
		UserID:     g.UserId,
		ReplyToken: replyToken,
		Timestamp:  ts,
	}, true
}

func decodeParams(params map[string]string) (domain.PostbackParams, error) {
	var out domain.PostbackParams
	if len(params) == 0 {
		return out, nil
	}
	if err := mapstructure.Decode(params, &out); err != nil {
		return out, fmt.Errorf("failed to decode postback params: %w", err)
	}
	return out, nil
}
