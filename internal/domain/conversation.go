package domain

import "time"

// Conversation is the thread between a buyer and the seller about one listing.
// (listing_id, buyer_id) is unique and the participant pair never changes.
type Conversation struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	ListingID    uint64    `gorm:"column:listing_id;not null;uniqueIndex:idx_conversation_listing_buyer" json:"listing_id"`
	BuyerID      uint64    `gorm:"column:buyer_id;not null;uniqueIndex:idx_conversation_listing_buyer;index" json:"buyer_id"`
	SellerID     uint64    `gorm:"column:seller_id;not null;index" json:"seller_id"`
	LastMessage  string    `gorm:"column:last_message;size:500" json:"last_message"`
	LastSenderID *uint64   `gorm:"column:last_sender_id" json:"last_sender_id,omitempty"`
	BuyerUnread  int       `gorm:"column:buyer_unread;default:0" json:"-"`
	SellerUnread int       `gorm:"column:seller_unread;default:0" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime;index" json:"updated_at"`

	// Relations
	Listing *Listing `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
	Buyer   *User    `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Seller  *User    `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Participants returns [buyer, seller]
func (c *Conversation) Participants() []uint64 {
	return []uint64{c.BuyerID, c.SellerID}
}

func (c *Conversation) IsParticipant(userID uint64) bool {
	return userID == c.BuyerID || userID == c.SellerID
}

// OtherParticipant returns the counterpart of userID
func (c *Conversation) OtherParticipant(userID uint64) uint64 {
	if userID == c.BuyerID {
		return c.SellerID
	}
	return c.BuyerID
}

// UnreadFor returns userID's unread counter
func (c *Conversation) UnreadFor(userID uint64) int {
	if userID == c.BuyerID {
		return c.BuyerUnread
	}
	return c.SellerUnread
}

// UnreadColumn is the counter column belonging to userID
func (c *Conversation) UnreadColumn(userID uint64) string {
	if userID == c.BuyerID {
		return "buyer_unread"
	}
	return "seller_unread"
}

// StartConversationRequest opens (or reopens) the thread about a listing
type StartConversationRequest struct {
	ListingID uint64 `json:"listing_id" binding:"required"`
}

// ConversationResponse is a row of the inbox as seen by one participant
type ConversationResponse struct {
	ID           uint64          `json:"id"`
	Listing      *ListingSummary `json:"listing,omitempty"`
	BuyerID      uint64          `json:"buyer_id"`
	SellerID     uint64          `json:"seller_id"`
	OtherUser    *UserSummary    `json:"other_user,omitempty"`
	LastMessage  string          `json:"last_message"`
	LastSenderID *uint64         `json:"last_sender_id,omitempty"`
	UnreadCount  int             `json:"unread_count"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToResponse builds the view of the conversation for viewerID
func (c *Conversation) ToResponse(viewerID uint64) *ConversationResponse {
	other := c.Seller
	if viewerID == c.SellerID {
		other = c.Buyer
	}
	return &ConversationResponse{
		ID:           c.ID,
		Listing:      c.Listing.ToSummary(),
		BuyerID:      c.BuyerID,
		SellerID:     c.SellerID,
		OtherUser:    other.ToSummary(),
		LastMessage:  c.LastMessage,
		LastSenderID: c.LastSenderID,
		UnreadCount:  c.UnreadFor(viewerID),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
