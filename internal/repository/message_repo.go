package repository

import (
	"context"
	"errors"

	"github.com/titanmarket/titanmarket-backend/internal/domain"
	"gorm.io/gorm"
)

// MessageRepository message data access interface
type MessageRepository interface {
	Append(ctx context.Context, conv *domain.Conversation, msg *domain.Message, preview string) error
	FindByID(ctx context.Context, id uint64) (*domain.Message, error)
	ListByConversation(ctx context.Context, conversationID uint64, page, limit int) ([]*domain.Message, int64, error)
	MarkRead(ctx context.Context, conv *domain.Conversation, userID uint64) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Append stores msg and updates the conversation summary in one transaction:
// last message preview, last sender, updated_at and the recipient's unread counter.
func (r *messageRepository) Append(ctx context.Context, conv *domain.Conversation, msg *domain.Message, preview string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}

		recipient := conv.OtherParticipant(msg.SenderID)
		unreadCol := conv.UnreadColumn(recipient)

		return tx.Model(&domain.Conversation{}).Where("id = ?", conv.ID).
			Updates(map[string]interface{}{
				"last_message":   preview,
				"last_sender_id": msg.SenderID,
				"updated_at":     msg.CreatedAt,
				unreadCol:        gorm.Expr(unreadCol + " + 1"),
			}).Error
	})
}

func (r *messageRepository) FindByID(ctx context.Context, id uint64) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// ListByConversation returns a page of messages, oldest first
func (r *messageRepository) ListByConversation(ctx context.Context, conversationID uint64, page, limit int) ([]*domain.Message, int64, error) {
	var messages []*domain.Message
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Message{}).Where("conversation_id = ?", conversationID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at ASC, id ASC").Offset(offset).Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// MarkRead adds userID to the read-by set of every message in the conversation
// and resets userID's unread counter.
func (r *messageRepository) MarkRead(ctx context.Context, conv *domain.Conversation, userID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var unread []*domain.Message
		err := tx.Select("id", "read_by").
			Where("conversation_id = ? AND sender_id <> ?", conv.ID, userID).
			Find(&unread).Error
		if err != nil {
			return err
		}

		for _, m := range unread {
			if m.IsReadBy(userID) {
				continue
			}
			readBy, err := domain.AddReader(m.ReadBy, userID)
			if err != nil {
				return err
			}
			if err := tx.Model(&domain.Message{}).Where("id = ?", m.ID).
				UpdateColumn("read_by", readBy).Error; err != nil {
				return err
			}
		}

		return tx.Model(&domain.Conversation{}).Where("id = ?", conv.ID).
			UpdateColumn(conv.UnreadColumn(userID), 0).Error
	})
}
