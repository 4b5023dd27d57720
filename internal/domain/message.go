package domain

import (
	"encoding/json"
	"time"
)

// MaxMessageLength is the longest message text accepted, in characters
const MaxMessageLength = 2000

// PreviewLength is the length of the last-message preview kept on a conversation
const PreviewLength = 100

// Message is a single chat message. Messages are append-only.
type Message struct {
	ID             uint64    `gorm:"primaryKey" json:"id"`
	ConversationID uint64    `gorm:"column:conversation_id;not null;index:idx_message_conversation_created,priority:1" json:"conversation_id"`
	SenderID       uint64    `gorm:"column:sender_id;not null" json:"sender_id"`
	Text           string    `gorm:"column:text;type:text;not null" json:"text"`
	ReadBy         string    `gorm:"column:read_by;type:text" json:"-"` // JSON array of user ids
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime;index:idx_message_conversation_created,priority:2" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// ReadByIDs decodes the read-by set
func (m *Message) ReadByIDs() []uint64 {
	ids := []uint64{}
	if m.ReadBy != "" {
		_ = json.Unmarshal([]byte(m.ReadBy), &ids)
	}
	return ids
}

// IsReadBy reports whether userID has read the message
func (m *Message) IsReadBy(userID uint64) bool {
	for _, id := range m.ReadByIDs() {
		if id == userID {
			return true
		}
	}
	return false
}

// AddReader returns the read-by JSON with userID added; duplicates are ignored
func AddReader(readBy string, userID uint64) (string, error) {
	ids := []uint64{}
	if readBy != "" {
		if err := json.Unmarshal([]byte(readBy), &ids); err != nil {
			return "", err
		}
	}
	for _, id := range ids {
		if id == userID {
			return readBy, nil
		}
	}
	ids = append(ids, userID)
	data, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SendMessageRequest message body
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// MessageResponse message as returned to a participant
type MessageResponse struct {
	ID             uint64    `json:"id"`
	ConversationID uint64    `json:"conversation_id"`
	SenderID       uint64    `json:"sender_id"`
	Text           string    `json:"text"`
	ReadBy         []uint64  `json:"read_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// ToResponse converts Message to MessageResponse
func (m *Message) ToResponse() *MessageResponse {
	return &MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Text:           m.Text,
		ReadBy:         m.ReadByIDs(),
		CreatedAt:      m.CreatedAt,
	}
}
