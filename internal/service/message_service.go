package service

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/titanmarket/titanmarket-backend/internal/common"
	"github.com/titanmarket/titanmarket-backend/internal/domain"
	"github.com/titanmarket/titanmarket-backend/internal/repository"
	"github.com/titanmarket/titanmarket-backend/internal/ws"
	pkglogger "github.com/titanmarket/titanmarket-backend/pkg/logger"
)

// Message paging
const (
	DefaultMessagePageSize = 50
	MaxMessagePageSize     = 200
)

// EventPublisher pushes real-time events to users
type EventPublisher interface {
	SendToUser(userID uint64, event *ws.Event)
}

// MessageService conversation and message business logic
type MessageService interface {
	FindOrCreateConversation(ctx context.Context, listingID, buyerID uint64) (*domain.ConversationResponse, error)
	GetConversation(ctx context.Context, conversationID, userID uint64) (*domain.ConversationResponse, error)
	ListConversations(ctx context.Context, userID uint64) ([]*domain.ConversationResponse, error)
	SendMessage(ctx context.Context, conversationID, senderID uint64, text string) (*domain.MessageResponse, error)
	ListMessages(ctx context.Context, conversationID, userID uint64, page, limit int) ([]*domain.MessageResponse, *common.Meta, error)
	MarkRead(ctx context.Context, conversationID, userID uint64) error
}

type messageService struct {
	convRepo    repository.ConversationRepository
	msgRepo     repository.MessageRepository
	listingRepo repository.ListingRepository
	events      EventPublisher
}

// NewMessageService creates a new MessageService. events may be nil.
func NewMessageService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	listingRepo repository.ListingRepository,
	events EventPublisher,
) MessageService {
	return &messageService{
		convRepo:    convRepo,
		msgRepo:     msgRepo,
		listingRepo: listingRepo,
		events:      events,
	}
}

// FindOrCreateConversation returns the buyer's conversation about a listing,
// creating it with participants [buyer, seller] on first contact.
func (s *messageService) FindOrCreateConversation(ctx context.Context, listingID, buyerID uint64) (*domain.ConversationResponse, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, common.ErrListingNotFound
	}
	if listing.SellerID == buyerID {
		return nil, common.ErrSelfConversation
	}

	conv, err := s.convRepo.FindByListingAndBuyer(ctx, listingID, buyerID)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		return conv.ToResponse(buyerID), nil
	}

	if listing.Status != domain.ListingStatusActive {
		return nil, common.ErrListingNotActive
	}

	conv, err = s.convRepo.CreateOrGet(ctx, &domain.Conversation{
		ListingID: listingID,
		BuyerID:   buyerID,
		SellerID:  listing.SellerID,
	})
	if err != nil {
		return nil, err
	}

	pkglogger.GetLogger().Info().
		Uint64("conversation_id", conv.ID).
		Uint64("listing_id", listingID).
		Uint64("buyer_id", buyerID).
		Msg("conversation opened")
	return conv.ToResponse(buyerID), nil
}

func (s *messageService) participantConversation(ctx context.Context, conversationID, userID uint64) (*domain.Conversation, error) {
	conv, err := s.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, common.ErrConversationNotFound
	}
	if !conv.IsParticipant(userID) {
		return nil, common.ErrNotParticipant
	}
	return conv, nil
}

func (s *messageService) GetConversation(ctx context.Context, conversationID, userID uint64) (*domain.ConversationResponse, error) {
	conv, err := s.participantConversation(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	return conv.ToResponse(userID), nil
}

// ListConversations returns the user's inbox, most recent activity first
func (s *messageService) ListConversations(ctx context.Context, userID uint64) ([]*domain.ConversationResponse, error) {
	convs, err := s.convRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := make([]*domain.ConversationResponse, len(convs))
	for i, c := range convs {
		resp[i] = c.ToResponse(userID)
	}
	return resp, nil
}

// SendMessage appends a message and updates the conversation summary atomically,
// then pushes message.created and conversation.updated to both participants.
func (s *messageService) SendMessage(ctx context.Context, conversationID, senderID uint64, text string) (*domain.MessageResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, common.ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > domain.MaxMessageLength {
		return nil, common.ErrMessageTooLong
	}

	conv, err := s.participantConversation(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Text:           text,
		ReadBy:         "[" + strconv.FormatUint(senderID, 10) + "]",
		CreatedAt:      time.Now(),
	}
	preview := truncateRunes(text, domain.PreviewLength)
	if err := s.msgRepo.Append(ctx, conv, msg, preview); err != nil {
		return nil, err
	}

	conv.LastMessage = preview
	conv.LastSenderID = &senderID
	conv.UpdatedAt = msg.CreatedAt
	recipient := conv.OtherParticipant(senderID)
	if recipient == conv.BuyerID {
		conv.BuyerUnread++
	} else {
		conv.SellerUnread++
	}

	resp := msg.ToResponse()
	s.publish(conv, resp)
	return resp, nil
}

func (s *messageService) publish(conv *domain.Conversation, msg *domain.MessageResponse) {
	if s.events == nil {
		return
	}
	for _, userID := range conv.Participants() {
		s.events.SendToUser(userID, &ws.Event{Type: ws.EventMessageCreated, Payload: msg})
		s.events.SendToUser(userID, &ws.Event{Type: ws.EventConversationUpdated, Payload: conv.ToResponse(userID)})
	}
}

// ListMessages returns a page of the conversation, oldest first
func (s *messageService) ListMessages(ctx context.Context, conversationID, userID uint64, page, limit int) ([]*domain.MessageResponse, *common.Meta, error) {
	if _, err := s.participantConversation(ctx, conversationID, userID); err != nil {
		return nil, nil, err
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultMessagePageSize
	}
	if limit > MaxMessagePageSize {
		limit = MaxMessagePageSize
	}

	msgs, total, err := s.msgRepo.ListByConversation(ctx, conversationID, page, limit)
	if err != nil {
		return nil, nil, err
	}
	resp := make([]*domain.MessageResponse, len(msgs))
	for i, m := range msgs {
		resp[i] = m.ToResponse()
	}
	return resp, common.NewMeta(page, limit, total), nil
}

// MarkRead marks every message of the conversation read by userID
func (s *messageService) MarkRead(ctx context.Context, conversationID, userID uint64) error {
	conv, err := s.participantConversation(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if err := s.msgRepo.MarkRead(ctx, conv, userID); err != nil {
		return err
	}

	if s.events != nil {
		if userID == conv.BuyerID {
			conv.BuyerUnread = 0
		} else {
			conv.SellerUnread = 0
		}
		s.events.SendToUser(userID, &ws.Event{Type: ws.EventConversationUpdated, Payload: conv.ToResponse(userID)})
	}
	return nil
}

// truncateRunes cuts s to at most n characters without splitting a UTF-8 sequence
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
