package websocketPkg

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ShortletAssistant/internal/entity"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestPublishEscalationDeliversEnvelope(t *testing.T) {
	received := make(chan []byte, 1)
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, msg, err := conn.ReadMessage()
		if err == nil {
			received <- msg
		}
	}))
	defer server.Close()

	client := NewDashboardClient("ws"+strings.TrimPrefix(server.URL, "http"), quietLogger())
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	event := entity.EscalationEvent{QueryID: "q1", PropertyID: "prop-1", Utterance: "is there a sauna", Channel: entity.ChannelVoice}
	if err := client.PublishEscalation(ctx, event); err != nil {
		t.Fatalf("PublishEscalation: %v", err)
	}

	select {
	case msg := <-received:
		var got envelope
		if err := jsoniter.Unmarshal(msg, &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Type != "escalation" || got.Data.QueryID != "q1" || got.Data.PropertyID != "prop-1" {
			t.Fatalf("unexpected envelope: %+v", got)
		}
	case <-ctx.Done():
		t.Fatal("dashboard never received the event")
	}
}

func TestPublishWithoutURL(t *testing.T) {
	client := NewDashboardClient("", quietLogger())
	err := client.PublishEscalation(context.Background(), entity.EscalationEvent{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if client.IsConnected() {
		t.Fatal("client should not be connected")
	}
}
