package assistantService

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ShortletAssistant/internal/entity"
)

type fakeSender struct {
	to, body string
	err      error
}

func (f *fakeSender) SendMessage(_ context.Context, phone, message string) error {
	f.to, f.body = phone, message
	return f.err
}

func (f *fakeSender) Disconnect() error { return nil }

func (f *fakeSender) IsConnected() bool { return true }

type fakeDashboard struct {
	published []entity.EscalationEvent
	err       error
}

func (f *fakeDashboard) PublishEscalation(_ context.Context, event entity.EscalationEvent) error {
	f.published = append(f.published, event)
	return f.err
}

func (f *fakeDashboard) IsConnected() bool { return f.err == nil }

func (f *fakeDashboard) Close() {}

func TestHostNotifierFansOut(t *testing.T) {
	sender := &fakeSender{}
	dashboard := &fakeDashboard{}
	notifier := NewHostNotifier(quietLogger(), sender, dashboard)

	event := entity.EscalationEvent{QueryID: "q1", PropertyID: "prop-001", Utterance: "is there a generator?", HostPhone: "+2348012345678", Channel: entity.ChannelVoice}
	notifier.NotifyEscalation(context.Background(), event)

	if len(dashboard.published) != 1 || dashboard.published[0].QueryID != "q1" {
		t.Errorf("dashboard got %+v", dashboard.published)
	}
	if sender.to != "+2348012345678" || !strings.Contains(sender.body, "is there a generator?") {
		t.Errorf("whatsapp got %q %q", sender.to, sender.body)
	}
}

func TestHostNotifierSkipsWhatsappWithoutPhone(t *testing.T) {
	sender := &fakeSender{}
	dashboard := &fakeDashboard{err: errors.New("offline")}
	notifier := NewHostNotifier(quietLogger(), sender, dashboard)

	notifier.NotifyEscalation(context.Background(), entity.EscalationEvent{QueryID: "q2"})

	if sender.to != "" {
		t.Errorf("message sent without a host phone: %q", sender.to)
	}
	if len(dashboard.published) != 1 {
		t.Errorf("dashboard push should still be attempted")
	}
}

func TestHostNotifierWithoutClients(t *testing.T) {
	NewHostNotifier(quietLogger(), nil, nil).NotifyEscalation(context.Background(), entity.EscalationEvent{HostPhone: "+234"})
}
