package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ShortletAssistant/database/postgres"

	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

var ErrInvalidPhoneNumber = errors.New("invalid phone number")

type IWhatsappSender interface {
	SendMessage(ctx context.Context, phoneNumber, message string) error
	Disconnect() error
	IsConnected() bool
}

type whatsappSender struct {
	client *whatsmeow.Client
}

// New opens the device store in the assistant database and connects. A fresh
// device prints a pairing code to the log and waits up to a minute.
func New(ctx context.Context, logger *logrus.Logger) (IWhatsappSender, error) {
	container, err := sqlstore.New(ctx, postgres.Driver(), postgres.FormatDSN(), newLogger(logger, "Database"))
	if err != nil {
		return nil, fmt.Errorf("failed to open whatsapp store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device store: %w", err)
	}

	client := whatsmeow.NewClient(deviceStore, newLogger(logger, "Client"))

	connected := make(chan struct{}, 1)
	client.AddEventHandler(func(evt interface{}) {
		if _, ok := evt.(*events.Connected); ok {
			select {
			case connected <- struct{}{}:
			default:
			}
		}
	})

	if client.Store.ID == nil {
		qrChan, _ := client.GetQRChannel(ctx)
		if err := client.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect: %w", err)
		}
		go func() {
			for evt := range qrChan {
				if evt.Event == "code" {
					logger.WithField("code", evt.Code).Info("Scan the WhatsApp pairing code")
				}
			}
		}()
	} else if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	select {
	case <-connected:
		logger.Info("WhatsApp connected")
	case <-time.After(60 * time.Second):
		client.Disconnect()
		return nil, fmt.Errorf("whatsapp connection timeout")
	case <-ctx.Done():
		client.Disconnect()
		return nil, ctx.Err()
	}

	return &whatsappSender{client: client}, nil
}

func (w *whatsappSender) SendMessage(ctx context.Context, phoneNumber, message string) error {
	number := NormalizePhone(phoneNumber)
	if number == "" {
		return ErrInvalidPhoneNumber
	}

	jid := types.NewJID(number, types.DefaultUserServer)
	if _, err := w.client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: proto.String(message),
	}); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (w *whatsappSender) Disconnect() error {
	w.client.Disconnect()
	return nil
}

func (w *whatsappSender) IsConnected() bool {
	return w.client.IsConnected()
}

// NormalizePhone keeps the digits of an international number. Local numbers
// starting with 0 are assumed to be Nigerian.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") && len(digits) == 11 {
		digits = "234" + digits[1:]
	}
	if len(digits) < 8 {
		return ""
	}
	return digits
}

type logrusLogger struct {
	entry *logrus.Entry
}

func newLogger(logger *logrus.Logger, module string) waLog.Logger {
	return &logrusLogger{entry: logger.WithField("module", "whatsapp/"+module)}
}

func (l *logrusLogger) Warnf(msg string, args ...interface{})  { l.entry.Warnf(msg, args...) }
func (l *logrusLogger) Errorf(msg string, args ...interface{}) { l.entry.Errorf(msg, args...) }
func (l *logrusLogger) Infof(msg string, args ...interface{})  { l.entry.Infof(msg, args...) }
func (l *logrusLogger) Debugf(msg string, args ...interface{}) { l.entry.Debugf(msg, args...) }

func (l *logrusLogger) Sub(module string) waLog.Logger {
	current, _ := l.entry.Data["module"].(string)
	return &logrusLogger{entry: l.entry.WithField("module", current+"/"+module)}
}
