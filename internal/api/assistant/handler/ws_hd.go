package assistantHandler

import (
	"errors"
	"time"

	"ShortletAssistant/internal/api/assistant"
	"ShortletAssistant/internal/entity"
	"ShortletAssistant/internal/middleware"
	contextPkg "ShortletAssistant/pkg/context"
	"ShortletAssistant/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/context"
)

const (
	wsReadTimeout  = 120 * time.Second
	wsWriteTimeout = 10 * time.Second
)

func (h *AssistantHandler) upgradeWebSocket(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	return ctx.Next()
}

func (h *AssistantHandler) writeFrame(c *websocket.Conn, v interface{}) error {
	data, err := jsoniter.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, data)
}

func wsError(err error) assistant.WSErrorFrame {
	var respErr *response.Error
	if errors.As(err, &respErr) {
		return assistant.WSErrorFrame{Error: err.Error(), Code: respErr.Slug}
	}
	return assistant.WSErrorFrame{Error: err.Error(), Code: "BAD_REQUEST"}
}

// handleChatSocket answers every text frame as a chat query. Closing the socket
// cancels the query in flight.
func (h *AssistantHandler) handleChatSocket(c *websocket.Conn) {
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)
	logger := h.log.WithField("request_id", requestID)
	logger.Info("Chat websocket connected")
	defer logger.Info("Chat websocket disconnected")

	connCtx, cancel := context.WithCancel(contextPkg.WithRequestID(context.Background(), requestID))
	defer cancel()

	for {
		if err := c.SetReadDeadline(time.Now().Add(wsReadTimeout)); err != nil {
			logger.Errorf("Error setting read deadline: %v", err)
			return
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warnf("Chat websocket error: %v", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			if err := h.writeFrame(c, assistant.WSErrorFrame{Error: "only text frames are accepted", Code: "VALIDATION_ERROR"}); err != nil {
				return
			}
			continue
		}

		var req assistant.QueryRequest
		if err := jsoniter.Unmarshal(message, &req); err != nil {
			if err := h.writeFrame(c, assistant.WSErrorFrame{Error: "invalid JSON frame", Code: "VALIDATION_ERROR"}); err != nil {
				return
			}
			continue
		}
		if err := h.validator.Struct(req); err != nil {
			if err := h.writeFrame(c, assistant.WSErrorFrame{Error: err.Error(), Code: "VALIDATION_ERROR"}); err != nil {
				return
			}
			continue
		}

		queryCtx, queryCancel := context.WithTimeout(connCtx, assistant.QueryTimeout)
		res, err := h.assistantService.Query(queryCtx, entity.ChannelChat, req)
		queryCancel()

		var frame interface{} = res
		if err != nil {
			frame = wsError(err)
		}
		if err := h.writeFrame(c, frame); err != nil {
			logger.Warnf("Error writing chat frame: %v", err)
			return
		}
	}
}
