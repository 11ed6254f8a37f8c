package whatsapp

import (
	"context"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	"github.com/soutoadv/whatsapp-intake/internal/transport"
	"github.com/soutoadv/whatsapp-intake/pkg/logging"
)

const publishTimeout = 10 * time.Second

// InboundPublisher receives every inbound message the socket delivers.
type InboundPublisher interface {
	PublishInbound(ctx context.Context, msg transport.InboundMessage) error
}

// Client adapts whatsmeow to the transport contract. Pairing, session
// credentials, encryption and socket reconnection all live inside
// whatsmeow; the conversation core only ever sees sender identity and text.
type Client struct {
	wa        *whatsmeow.Client
	publisher InboundPublisher
	logger    *logging.Logger
}

// NewClient opens the sqlite device store at storePath and prepares the
// socket client. Call Run to connect.
func NewClient(ctx context.Context, storePath string, publisher InboundPublisher, logger *logging.Logger) (*Client, error) {
	if publisher == nil {
		return nil, fmt.Errorf("whatsapp: publisher required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	dbLog := waLog.Stdout("Database", "ERROR", true)
	container, err := sqlstore.New(ctx, "sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", storePath), dbLog)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: failed to open device store: %w", err)
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: failed to load device: %w", err)
	}

	c := &Client{
		wa:        whatsmeow.NewClient(device, waLog.Stdout("Client", "ERROR", true)),
		publisher: publisher,
		logger:    logger,
	}
	c.wa.AddEventHandler(c.handleEvent)
	return c, nil
}

// Run connects the socket and blocks until ctx is done. On first run the
// pairing QR code is printed to stdout. whatsmeow reconnects dropped
// sockets on its own; a logged-out device is surfaced as an error so the
// supervisor can stop instead of spinning.
func (c *Client) Run(ctx context.Context) error {
	if c.wa.Store.ID == nil {
		qrChan, _ := c.wa.GetQRChannel(ctx)
		if err := c.wa.Connect(); err != nil {
			return fmt.Errorf("whatsapp: failed to connect: %w", err)
		}
		go func() {
			for evt := range qrChan {
				if evt.Event == "code" {
					c.logger.Info("scan the QR code to pair the device")
					qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
				} else {
					c.logger.Info("pairing update", "event", evt.Event)
				}
			}
		}()
	} else {
		if err := c.wa.Connect(); err != nil {
			return fmt.Errorf("whatsapp: failed to connect: %w", err)
		}
	}

	<-ctx.Done()
	c.wa.Disconnect()
	return nil
}

func (c *Client) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.Message:
		c.handleMessage(v)
	case *events.Connected:
		c.logger.Info("whatsapp socket connected")
	case *events.Disconnected:
		c.logger.Warn("whatsapp socket disconnected, awaiting reconnect")
	case *events.LoggedOut:
		c.logger.Error("whatsapp device logged out; delete the device store and pair again")
	}
}

func (c *Client) handleMessage(v *events.Message) {
	// Group chats are not part of the contact channel.
	if v.Info.Chat.Server == types.GroupServer {
		return
	}

	text := v.Message.GetConversation()
	if text == "" && v.Message.GetExtendedTextMessage() != nil {
		text = v.Message.GetExtendedTextMessage().GetText()
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err := c.publisher.PublishInbound(ctx, transport.InboundMessage{
		Sender:   v.Info.Chat.String(),
		Text:     text,
		FromSelf: v.Info.IsFromMe,
	})
	if err != nil {
		c.logger.Error("failed to publish inbound message",
			"sender", v.Info.Chat.String(),
			"error", err,
		)
	}
}

// SendText delivers one outbound text message.
func (c *Client) SendText(ctx context.Context, sender, text string) error {
	jid, err := types.ParseJID(sender)
	if err != nil {
		return fmt.Errorf("whatsapp: invalid recipient %q: %w", sender, err)
	}
	_, err = c.wa.SendMessage(ctx, jid, &waProto.Message{
		Conversation: proto.String(text),
	})
	if err != nil {
		return fmt.Errorf("whatsapp: failed to send message: %w", err)
	}
	return nil
}

// SetPresence publishes a chat presence update, best effort.
func (c *Client) SetPresence(ctx context.Context, sender string, state transport.PresenceState) error {
	jid, err := types.ParseJID(sender)
	if err != nil {
		return fmt.Errorf("whatsapp: invalid recipient %q: %w", sender, err)
	}

	chatState := types.ChatPresencePaused
	if state == transport.PresenceComposing {
		chatState = types.ChatPresenceComposing
	}
	if err := c.wa.SendChatPresence(ctx, jid, chatState, types.ChatPresenceMediaText); err != nil {
		return fmt.Errorf("whatsapp: failed to send chat presence: %w", err)
	}
	return nil
}
