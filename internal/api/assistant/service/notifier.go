package assistantService

import (
	"context"
	"fmt"

	"ShortletAssistant/internal/entity"
	websocketPkg "ShortletAssistant/pkg/websocket"
	"ShortletAssistant/pkg/whatsapp"

	"github.com/sirupsen/logrus"
)

// Notifier tells the host that a guest was handed over to a human.
type Notifier interface {
	NotifyEscalation(ctx context.Context, event entity.EscalationEvent)
}

type noopNotifier struct{}

func (noopNotifier) NotifyEscalation(context.Context, entity.EscalationEvent) {}

type hostNotifier struct {
	log       *logrus.Logger
	whatsapp  whatsapp.IWhatsappSender
	dashboard websocketPkg.IDashboard
}

// NewHostNotifier sends escalations over WhatsApp and the dashboard socket.
// Either client may be nil.
func NewHostNotifier(log *logrus.Logger, sender whatsapp.IWhatsappSender, dashboard websocketPkg.IDashboard) Notifier {
	return &hostNotifier{log: log, whatsapp: sender, dashboard: dashboard}
}

func escalationMessage(event entity.EscalationEvent) string {
	return fmt.Sprintf(
		"A guest needs help with property %s (%s channel).\nQuestion: %s\nPlease follow up as soon as possible.",
		event.PropertyID, event.Channel, event.Utterance,
	)
}

func (n *hostNotifier) NotifyEscalation(ctx context.Context, event entity.EscalationEvent) {
	fields := logrus.Fields{
		"query_id":    event.QueryID,
		"property_id": event.PropertyID,
	}

	if n.dashboard != nil {
		if err := n.dashboard.PublishEscalation(ctx, event); err != nil {
			fields["error"] = err.Error()
			n.log.WithFields(fields).Warn("Failed to push escalation to dashboard")
			delete(fields, "error")
		}
	}

	if n.whatsapp != nil && event.HostPhone != "" {
		if err := n.whatsapp.SendMessage(ctx, event.HostPhone, escalationMessage(event)); err != nil {
			fields["error"] = err.Error()
			n.log.WithFields(fields).Warn("Failed to send escalation over WhatsApp")
			return
		}
	}

	n.log.WithFields(fields).Info("Host notified of escalation")
}
