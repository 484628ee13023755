package notify

import (
	"context"
	"encoding/json"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"
)

// LarkConfig holds credentials for the optional ops channel
type LarkConfig struct {
	AppID     string
	AppSecret string
	ChatID    string
}

// LarkNotifier mirrors workflow events into a Lark group chat so
// operators can follow the approval pipeline without tailing logs.
// OTP messages are never mirrored.
type LarkNotifier struct {
	client *lark.Client
	chatID string
	logger *zap.Logger
}

// NewLarkNotifier creates a notifier posting to the configured chat
func NewLarkNotifier(cfg LarkConfig, logger *zap.Logger) *LarkNotifier {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithEnableTokenCache(true),
	)
	return &LarkNotifier{
		client: client,
		chatID: cfg.ChatID,
		logger: logger,
	}
}

// Send posts the message body as a text message to the ops chat
func (n *LarkNotifier) Send(ctx context.Context, msg Message) error {
	if msg.Event == EventOTP {
		// Passcodes stay between the relay and the recipient.
		return nil
	}

	content, err := json.Marshal(map[string]string{
		"text": fmt.Sprintf("[%s] %s\n%s", msg.Event, msg.Subject, msg.Body),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message content: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType("chat_id").
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(n.chatID).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := n.client.Im.Message.Create(ctx, req)
	if err != nil {
		n.logger.Error("Failed to post to ops chat",
			zap.String("event", msg.Event),
			zap.Error(err))
		return fmt.Errorf("failed to post to ops chat: %w", err)
	}
	if !resp.Success() {
		n.logger.Error("Ops chat API returned failure",
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("ops chat API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}
	return nil
}
