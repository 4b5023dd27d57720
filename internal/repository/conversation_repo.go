package repository

import (
	"context"
	"errors"

	"github.com/titanmarket/titanmarket-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationRepository conversation data access interface
type ConversationRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Conversation, error)
	FindByListingAndBuyer(ctx context.Context, listingID, buyerID uint64) (*domain.Conversation, error)
	CreateOrGet(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID uint64) ([]*domain.Conversation, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Listing").Preload("Buyer").Preload("Seller")
}

func (r *conversationRepository) FindByID(ctx context.Context, id uint64) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.withRelations(ctx).Where("id = ?", id).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) FindByListingAndBuyer(ctx context.Context, listingID, buyerID uint64) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.withRelations(ctx).
		Where("listing_id = ? AND buyer_id = ?", listingID, buyerID).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// CreateOrGet inserts conv unless a row for (listing_id, buyer_id) exists, then
// returns the stored row. Two racing callers both get the same conversation.
func (r *conversationRepository) CreateOrGet(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error) {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "listing_id"}, {Name: "buyer_id"}},
			DoNothing: true,
		}).
		Create(conv).Error
	if err != nil {
		return nil, err
	}

	stored, err := r.FindByListingAndBuyer(ctx, conv.ListingID, conv.BuyerID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return stored, nil
}

// ListByUser returns every conversation userID participates in, most recently active first
func (r *conversationRepository) ListByUser(ctx context.Context, userID uint64) ([]*domain.Conversation, error) {
	var convs []*domain.Conversation
	err := r.withRelations(ctx).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("updated_at DESC, id DESC").
		Find(&convs).Error
	return convs, err
}
