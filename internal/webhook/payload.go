// Package webhook implements the inbound WhatsApp webhook pipeline:
// payload normalization, message classification, enquiry creation and
// the in-memory event monitor.
package webhook

import "strings"

// Webhook event types sent by the gateway.
const (
	TypeIncomingMessage = "incomingMessageReceived"
	TypeOutgoingMessage = "outgoingMessageReceived"
	TypeStateChange     = "stateInstanceChanged"
)

// Payload is the union of the webhook body shapes the gateway delivers.
// Which fields are populated depends on the gateway version and event
// type, so extraction walks the known shapes in order.
type Payload struct {
	TypeWebhook string       `json:"typeWebhook"`
	ChatID      string       `json:"chatId"`
	SenderName  string       `json:"senderName"`
	Text        string       `json:"text"`
	IDMessage   string       `json:"idMessage"`
	Message     *messagePart `json:"message"`
	MessageData *messageData `json:"messageData"`
	SenderData  *senderData  `json:"senderData"`
}

type textMessage struct {
	Text string `json:"text"`
}

type messagePart struct {
	TextMessage textMessage `json:"textMessage"`
	IDMessage   string      `json:"idMessage"`
	ID          string      `json:"id"`
}

type messageData struct {
	TypeMessage     string      `json:"typeMessage"`
	TextMessage     textMessage `json:"textMessage"`
	Text            string      `json:"text"`
	IDMessage       string      `json:"idMessage"`
	TextMessageData struct {
		TextMessage string `json:"textMessage"`
	} `json:"textMessageData"`
}

type senderData struct {
	ChatID            string `json:"chatId"`
	Sender            string `json:"sender"`
	SenderName        string `json:"senderName"`
	ChatName          string `json:"chatName"`
	PushName          string `json:"pushName"`
	NotifyName        string `json:"notifyName"`
	SenderContactName string `json:"senderContactName"`
}

// name returns the best available sender name, in priority order.
func (s *senderData) name() string {
	for _, candidate := range []string{s.SenderName, s.ChatName, s.PushName, s.NotifyName} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// outgoingName is the fallback chain for self-sent messages, which carry
// different sender fields.
func (s *senderData) outgoingName() string {
	candidates := []string{
		s.SenderName,
		s.ChatName,
		s.SenderContactName,
		strings.TrimSuffix(s.Sender, "@c.us"),
	}
	for _, candidate := range candidates {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// Message is the normalized form of a webhook message event.
type Message struct {
	ChatID     string
	Text       string
	SenderName string
	MessageID  string

	// SelfSent marks messages the account itself sent (outgoing events).
	// These are surfaced for monitoring but never treated as enquiries.
	SelfSent bool
}

// ExtractMessage normalizes the payload into a Message. ok is false when
// the payload carries no message text (state changes, delivery receipts,
// unrecognized shapes).
func ExtractMessage(p *Payload) (Message, bool) {
	switch {
	// Legacy shape: message and chatId at the top level, no typeWebhook.
	case p.TypeWebhook == "" && p.Message != nil && p.ChatID != "":
		m := Message{
			ChatID:     p.ChatID,
			SenderName: strings.TrimSpace(p.SenderName),
			Text:       p.Message.TextMessage.Text,
			MessageID:  p.Message.IDMessage,
		}
		return m, m.Text != ""

	case p.TypeWebhook == TypeIncomingMessage && p.MessageData != nil:
		m := Message{Text: p.MessageData.TextMessage.Text}
		if m.Text == "" {
			m.Text = p.MessageData.Text
		}
		m.MessageID = p.MessageData.IDMessage
		if m.MessageID == "" {
			m.MessageID = p.IDMessage
		}
		if p.SenderData != nil {
			m.ChatID = p.SenderData.ChatID
			m.SenderName = p.SenderData.name()
		}
		return m, m.Text != ""

	case p.TypeWebhook == TypeIncomingMessage && p.Message != nil:
		m := Message{
			Text:      p.Message.TextMessage.Text,
			MessageID: p.Message.IDMessage,
		}
		if m.MessageID == "" {
			m.MessageID = p.Message.ID
		}
		if p.SenderData != nil {
			m.ChatID = p.SenderData.ChatID
			m.SenderName = p.SenderData.name()
		}
		return m, m.Text != ""

	case p.TypeWebhook == TypeIncomingMessage && p.Text != "":
		m := Message{
			Text:      p.Text,
			MessageID: p.IDMessage,
		}
		if p.SenderData != nil {
			m.ChatID = p.SenderData.ChatID
			m.SenderName = p.SenderData.name()
		}
		return m, true

	case p.TypeWebhook == TypeOutgoingMessage && p.MessageData != nil:
		m := Message{
			Text:      p.MessageData.TextMessageData.TextMessage,
			MessageID: p.IDMessage,
			SelfSent:  true,
		}
		if p.SenderData != nil {
			m.ChatID = p.SenderData.ChatID
			m.SenderName = p.SenderData.outgoingName()
		}
		return m, m.Text != ""
	}

	return Message{}, false
}
