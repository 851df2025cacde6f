/*
Package message defines the wire envelope used for all inter-service
communication on the bus.
*/
package message

import (
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
)

// Type is the coarse category of a message.
type Type string

const (
	TypeCRUD   Type = "crud"
	TypeCustom Type = "custom"
)

// Action is the fine-grained operation name. Custom actions are free-form.
type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionDelete    Action = "delete"
	ActionGetSingle Action = "getSingle"
	ActionGetAll    Action = "getAll"
)

// Header carries the identity of a message. MessageID is assigned at
// construction and never changes; SentAt is stamped at publish time.
type Header struct {
	MessageID string    `json:"messageId"`
	SentAt    time.Time `json:"sentAt"`
}

// Message is the envelope for one logical request or response.
//
// Channel is the logical topic the message was originally published to.
// Recipient is the subscriber type this delivery attempt targets; it is
// rewritten per send when fanning out to multiple types.
type Message struct {
	Header    Header         `json:"header"`
	Channel   string         `json:"channel"`
	Type      Type           `json:"type"`
	Action    Action         `json:"action"`
	Recipient string         `json:"recipient"`
	Payload   map[string]any `json:"payload"`
}

// New constructs a message with a fresh time-ordered message ID. Recipient
// names the subscriber type the caller addresses; a publish fan-out rewrites
// it per registered type.
func New(channel string, kind Type, action Action, recipient string, payload map[string]any) *Message {
	return &Message{
		Header: Header{
			MessageID: uuid.Must(uuid.NewV7()).String(),
		},
		Channel:   channel,
		Type:      kind,
		Action:    action,
		Recipient: recipient,
		Payload:   payload,
	}
}

// Parse decodes and validates a wire envelope.
func Parse(data []byte) (*Message, error) {
	var msg Message

	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, &ParseError{Err: err}
	}

	if err := msg.Validate(); err != nil {
		return nil, err
	}

	return &msg, nil
}

// Validate reports whether the envelope is complete enough to dispatch.
// Invalid messages are never published and never acted upon by a receiver.
func (m *Message) Validate() error {
	switch {
	case m == nil:
		return ErrNilMessage
	case m.Channel == "":
		return ErrMissingChannel
	case m.Type == "":
		return ErrMissingType
	case m.Type != TypeCRUD && m.Type != TypeCustom:
		return ErrUnknownType
	case m.Action == "":
		return ErrMissingAction
	case m.Recipient == "":
		return ErrMissingRecipient
	case m.Payload == nil:
		return ErrMissingPayload
	}

	return nil
}

// Marshal serializes the envelope to its JSON wire format.
func (m *Message) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// Reply builds a response envelope on the given channel. It carries the
// request's message ID so the waiting caller can correlate it. The recipient
// starts as the type that processed the request and is rewritten when the
// response fans out.
func (m *Message) Reply(channel string, payload map[string]any) *Message {
	return &Message{
		Header: Header{
			MessageID: m.Header.MessageID,
		},
		Channel:   channel,
		Type:      m.Type,
		Action:    m.Action,
		Recipient: m.Recipient,
		Payload:   payload,
	}
}
