package dto

import "time"

// WsInboundMessage is the only frame clients send.
type WsInboundMessage struct {
	Content string `json:"content"`
}

type WsConnectionEstablished struct {
	Type   string `json:"type"`
	ChatID string `json:"chat_id"`
}

type WsPreviousMessage struct {
	Content   string    `json:"content"`
	Response  *string   `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

type WsPreviousMessages struct {
	Type     string              `json:"type"`
	Messages []WsPreviousMessage `json:"messages"`
}

// WsChatMessage is the body of a full "message" frame: the echo of a
// just-persisted user message, the assistant's opening placeholder, and
// the assistant's final answer all use this shape.
type WsChatMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
	ChatID    string    `json:"chatId"`
}

type WsMessage struct {
	Type    string        `json:"type"`
	Message WsChatMessage `json:"message"`
}

// WsMessageUpdate carries one cumulative slice of the answer while it is
// being streamed. MessageID ties the chunks to the final message frame.
type WsMessageUpdate struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
}

type WsError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
