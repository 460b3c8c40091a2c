package websocket

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"healthbridge-be/internal/apperror"
	"healthbridge-be/internal/constant"
	"healthbridge-be/internal/dto"
	"healthbridge-be/internal/entity"
	"healthbridge-be/internal/pkg/logger"
	"healthbridge-be/internal/pkg/serverutils"
	"healthbridge-be/internal/service"
	"healthbridge-be/pkg/agent"
	"healthbridge-be/pkg/events"
	"healthbridge-be/pkg/nats"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Sink receives the protocol frames a turn produces. The live path
// broadcasts them to every connection of the chat through the hub.
type Sink interface {
	SendJSON(v interface{}) error
}

// Relay owns the websocket protocol: it authenticates connections,
// replays history, and runs each inbound message through the agent while
// streaming the answer back.
type Relay struct {
	hub            *Hub
	chatService    service.IChatService
	invoker        agent.Invoker
	eventPublisher *nats.Publisher // may be nil
	jwtSecret      string
	turnTimeout    time.Duration
	streamWords    int
	logger         logger.ILogger
}

func NewRelay(
	hub *Hub,
	chatService service.IChatService,
	invoker agent.Invoker,
	eventPublisher *nats.Publisher,
	jwtSecret string,
	turnTimeout time.Duration,
	log logger.ILogger,
) *Relay {
	return &Relay{
		hub:            hub,
		chatService:    chatService,
		invoker:        invoker,
		eventPublisher: eventPublisher,
		jwtSecret:      jwtSecret,
		turnTimeout:    turnTimeout,
		streamWords:    5,
		logger:         log,
	}
}

// Handle runs one websocket connection to completion. Auth failures
// close the socket with an application close code before any protocol
// frame is sent.
func (r *Relay) Handle(conn *websocket.Conn) {
	ctx := context.Background()

	chat, userID, err := r.authorize(ctx, conn.Query("token"), conn.Params("chat_id"))
	if err != nil {
		code := closeCodeFor(err)
		reason := "forbidden"
		if code == constant.CloseUnauthenticated {
			reason = "unauthenticated"
		}
		closeWith(conn, code, reason)
		return
	}
	chatID := chat.Id

	client := &Client{
		Hub:    r.hub,
		Conn:   conn,
		UserID: userID,
		ChatID: chatID,
		Send:   make(chan []byte, 256),
	}
	r.hub.register <- client
	go client.writePump()

	defer func() {
		r.hub.unregister <- client
		conn.Close()
	}()

	client.SendJSON(&dto.WsConnectionEstablished{
		Type:   constant.WsEventConnectionEstablished,
		ChatID: chatID.String(),
	})

	if err := r.replayHistory(ctx, client, userID, chatID); err != nil {
		r.logger.Error("Relay", "History replay failed", map[string]interface{}{
			"chat_id": chatID,
			"error":   err.Error(),
		})
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Messages are processed sequentially: a turn must finish before the
	// next inbound frame is read, so transcript order is never racy.
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				r.logger.Warn("Relay", "Connection dropped", map[string]interface{}{
					"chat_id": chatID,
					"error":   err.Error(),
				})
			}
			break
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		sink := &chatSink{hub: r.hub, chatID: chatID}
		r.processInbound(ctx, sink, chat, userID, raw)
	}
}

// authorize validates the query-param token and chat ownership. It writes
// nothing to the socket, so a rejected connection sees only the close.
func (r *Relay) authorize(ctx context.Context, token, chatParam string) (*entity.Chat, uuid.UUID, error) {
	userID, err := serverutils.ParseUserID(token, r.jwtSecret)
	if err != nil {
		return nil, uuid.Nil, err
	}

	chatID, err := uuid.Parse(chatParam)
	if err != nil {
		return nil, uuid.Nil, apperror.Authorization("unknown chat")
	}

	chat, err := r.chatService.FindOwnedChat(ctx, userID, chatID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return chat, userID, nil
}

// closeCodeFor maps an authorize failure to its application close code.
func closeCodeFor(err error) int {
	if apperror.IsKind(err, apperror.KindAuthentication) {
		return constant.CloseUnauthenticated
	}
	return constant.CloseForbidden
}

func (r *Relay) replayHistory(ctx context.Context, client *Client, userID, chatID uuid.UUID) error {
	messages, err := r.chatService.GetMessages(ctx, userID, chatID)
	if err != nil {
		return err
	}

	previous := make([]dto.WsPreviousMessage, len(messages))
	for i, msg := range messages {
		previous[i] = dto.WsPreviousMessage{
			Content:   msg.Content,
			Response:  msg.Response,
			CreatedAt: msg.CreatedAt,
		}
	}
	return client.SendJSON(&dto.WsPreviousMessages{
		Type:     constant.WsEventPreviousMessages,
		Messages: previous,
	})
}

// processInbound handles one user message end to end: persist it, echo it
// back with its id, run the agent, stream the answer, persist the response.
func (r *Relay) processInbound(ctx context.Context, sink Sink, chat *entity.Chat, userID uuid.UUID, raw []byte) {
	var inbound dto.WsInboundMessage
	if err := json.Unmarshal(raw, &inbound); err != nil {
		sink.SendJSON(errorFrame("Invalid JSON format"))
		return
	}

	content := strings.TrimSpace(inbound.Content)
	if content == "" {
		// Nothing is persisted for a blank message.
		sink.SendJSON(errorFrame("Message content cannot be empty"))
		return
	}

	// The transcript rendered here excludes the message being handled;
	// the agent appends its own user line.
	previous, err := r.chatService.RenderPreviousConversation(ctx, chat.Id)
	if err != nil {
		sink.SendJSON(errorFrame("conversation unavailable, try again"))
		return
	}

	message, err := r.chatService.AppendUserMessage(ctx, chat.Id, content)
	if err != nil {
		sink.SendJSON(errorFrame("failed to save your message, try again"))
		return
	}

	// Echo the persisted message so the client can render it with its
	// real id and timestamp.
	sink.SendJSON(messageFrame(message.Id.String(), content, constant.ChatMessageRoleUser, message.CreatedAt, chat.Id.String()))

	// The assistant side streams under its own id; every chunk and the
	// final frame carry it so clients can correlate them.
	assistantID := uuid.NewString()
	sink.SendJSON(messageFrame(assistantID, "", constant.ChatMessageRoleAssistant, time.Now(), chat.Id.String()))

	turnCtx, cancel := context.WithTimeout(ctx, r.turnTimeout)
	defer cancel()

	resp, err := r.invoker.Invoke(turnCtx, &agent.TurnRequest{
		ChatID:               chat.Id.String(),
		UserID:               userID.String(),
		Query:                content,
		PreviousConversation: previous,
		UserData:             chat.UserData,
	})
	if err != nil {
		r.logger.Error("Relay", "Turn failed", map[string]interface{}{
			"chat_id": chat.Id,
			"error":   err.Error(),
		})
		sink.SendJSON(errorFrame("the assistant could not answer, try again"))
		return
	}

	for _, chunk := range Chunks(resp.Result, r.streamWords) {
		sink.SendJSON(updateFrame(assistantID, chunk))
	}

	if err := r.chatService.AttachResponse(ctx, message.Id, resp.Result); err != nil {
		r.logger.Error("Relay", "Failed to persist response", map[string]interface{}{
			"chat_id":    chat.Id,
			"message_id": message.Id,
			"error":      err.Error(),
		})
		sink.SendJSON(errorFrame("response could not be saved"))
		return
	}

	sink.SendJSON(messageFrame(assistantID, resp.Result, constant.ChatMessageRoleAssistant, time.Now(), chat.Id.String()))

	if r.eventPublisher != nil {
		if err := r.eventPublisher.Publish(ctx, events.NewTurnCompleted(chat.Id.String(), userID.String(), message.Id.String())); err != nil {
			r.logger.Warn("Relay", "Failed to publish turn event", map[string]interface{}{
				"chat_id": chat.Id,
				"error":   err.Error(),
			})
		}
	}
}

// chatSink broadcasts frames to every connection of the chat.
type chatSink struct {
	hub    *Hub
	chatID uuid.UUID
}

func (s *chatSink) SendJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.hub.SendToChat(s.chatID, data)
	return nil
}

func errorFrame(message string) *dto.WsError {
	return &dto.WsError{Type: constant.WsEventError, Message: message}
}

func messageFrame(id, content, role string, timestamp time.Time, chatID string) *dto.WsMessage {
	return &dto.WsMessage{
		Type: constant.WsEventMessage,
		Message: dto.WsChatMessage{
			ID:        id,
			Content:   content,
			Role:      role,
			Timestamp: timestamp,
			ChatID:    chatID,
		},
	}
}

func updateFrame(messageID, content string) *dto.WsMessageUpdate {
	return &dto.WsMessageUpdate{
		Type:      constant.WsEventMessageUpdate,
		MessageID: messageID,
		Content:   content,
	}
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeWait),
	)
	conn.Close()
}
