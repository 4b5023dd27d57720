package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/titanmarket/titanmarket-backend/internal/common"
	"github.com/titanmarket/titanmarket-backend/internal/domain"
	"github.com/titanmarket/titanmarket-backend/internal/ws"
)

const (
	testBuyer  uint64 = 10
	testSeller uint64 = 20
)

type messageFixture struct {
	convs    *mockConversationRepo
	msgs     *mockMessageRepo
	listings *mockListingRepo
	events   *recordingPublisher
	svc      MessageService
}

func newMessageFixture() *messageFixture {
	f := &messageFixture{
		convs:    new(mockConversationRepo),
		msgs:     new(mockMessageRepo),
		listings: new(mockListingRepo),
		events:   newRecordingPublisher(),
	}
	f.svc = NewMessageService(f.convs, f.msgs, f.listings, f.events)
	return f
}

func activeListing() *domain.Listing {
	return &domain.Listing{ID: 1, SellerID: testSeller, Status: domain.ListingStatusActive}
}

func testConversation() *domain.Conversation {
	return &domain.Conversation{ID: 3, ListingID: 1, BuyerID: testBuyer, SellerID: testSeller}
}

func TestFindOrCreateConversation_CreatesOnFirstContact(t *testing.T) {
	f := newMessageFixture()
	f.listings.On("FindByID", mock.Anything, uint64(1)).Return(activeListing(), nil)
	f.convs.On("FindByListingAndBuyer", mock.Anything, uint64(1), testBuyer).Return(nil, nil)
	f.convs.On("CreateOrGet", mock.Anything, mock.MatchedBy(func(c *domain.Conversation) bool {
		return c.ListingID == 1 && c.BuyerID == testBuyer && c.SellerID == testSeller
	})).Return(testConversation(), nil)

	resp, err := f.svc.FindOrCreateConversation(context.Background(), 1, testBuyer)

	assert.NoError(t, err)
	assert.Equal(t, uint64(3), resp.ID)
	assert.Equal(t, testSeller, resp.SellerID)
	f.convs.AssertExpectations(t)
}

func TestFindOrCreateConversation_ReusesExisting(t *testing.T) {
	f := newMessageFixture()
	sold := activeListing()
	sold.Status = domain.ListingStatusSold
	f.listings.On("FindByID", mock.Anything, uint64(1)).Return(sold, nil)
	f.convs.On("FindByListingAndBuyer", mock.Anything, uint64(1), testBuyer).Return(testConversation(), nil)

	first, err := f.svc.FindOrCreateConversation(context.Background(), 1, testBuyer)
	assert.NoError(t, err)
	second, err := f.svc.FindOrCreateConversation(context.Background(), 1, testBuyer)
	assert.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	f.convs.AssertNotCalled(t, "CreateOrGet", mock.Anything, mock.Anything)
}

func TestFindOrCreateConversation_Rejections(t *testing.T) {
	f := newMessageFixture()
	sold := &domain.Listing{ID: 2, SellerID: testSeller, Status: domain.ListingStatusSold}
	f.listings.On("FindByID", mock.Anything, uint64(1)).Return(activeListing(), nil)
	f.listings.On("FindByID", mock.Anything, uint64(2)).Return(sold, nil)
	f.listings.On("FindByID", mock.Anything, uint64(404)).Return(nil, nil)
	f.convs.On("FindByListingAndBuyer", mock.Anything, uint64(2), testBuyer).Return(nil, nil)

	_, err := f.svc.FindOrCreateConversation(context.Background(), 1, testSeller)
	assert.ErrorIs(t, err, common.ErrSelfConversation)

	_, err = f.svc.FindOrCreateConversation(context.Background(), 2, testBuyer)
	assert.ErrorIs(t, err, common.ErrListingNotActive)

	_, err = f.svc.FindOrCreateConversation(context.Background(), 404, testBuyer)
	assert.ErrorIs(t, err, common.ErrListingNotFound)
}

func TestSendMessage_AppendsAndFansOut(t *testing.T) {
	f := newMessageFixture()
	f.convs.On("FindByID", mock.Anything, uint64(3)).Return(testConversation(), nil)
	f.msgs.On("Append", mock.Anything, mock.Anything, mock.MatchedBy(func(m *domain.Message) bool {
		return m.SenderID == testBuyer && m.Text == "Is this still available?" && m.IsReadBy(testBuyer)
	}), "Is this still available?").Return(nil)

	resp, err := f.svc.SendMessage(context.Background(), 3, testBuyer, "  Is this still available?  ")

	assert.NoError(t, err)
	assert.Equal(t, uint64(3), resp.ConversationID)
	assert.Equal(t, []uint64{testBuyer}, resp.ReadBy)

	for _, user := range []uint64{testBuyer, testSeller} {
		events := f.events.events[user]
		if assert.Len(t, events, 2) {
			assert.Equal(t, ws.EventMessageCreated, events[0].Type)
			assert.Equal(t, ws.EventConversationUpdated, events[1].Type)
		}
	}
	sellerView := f.events.events[testSeller][1].Payload.(*domain.ConversationResponse)
	assert.Equal(t, 1, sellerView.UnreadCount)
	assert.Equal(t, "Is this still available?", sellerView.LastMessage)

	buyerView := f.events.events[testBuyer][1].Payload.(*domain.ConversationResponse)
	assert.Equal(t, 0, buyerView.UnreadCount)
}

func TestSendMessage_TruncatesPreview(t *testing.T) {
	f := newMessageFixture()
	long := strings.Repeat("é", domain.PreviewLength+20)
	f.convs.On("FindByID", mock.Anything, uint64(3)).Return(testConversation(), nil)
	f.msgs.On("Append", mock.Anything, mock.Anything, mock.Anything, strings.Repeat("é", domain.PreviewLength)).Return(nil)

	_, err := f.svc.SendMessage(context.Background(), 3, testSeller, long)

	assert.NoError(t, err)
	f.msgs.AssertExpectations(t)
}

func TestSendMessage_TextValidation(t *testing.T) {
	f := newMessageFixture()

	_, err := f.svc.SendMessage(context.Background(), 3, testBuyer, "   \n\t")
	assert.ErrorIs(t, err, common.ErrEmptyMessage)

	_, err = f.svc.SendMessage(context.Background(), 3, testBuyer, strings.Repeat("a", domain.MaxMessageLength+1))
	assert.ErrorIs(t, err, common.ErrMessageTooLong)

	f.convs.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestSendMessage_NotParticipant(t *testing.T) {
	f := newMessageFixture()
	f.convs.On("FindByID", mock.Anything, uint64(3)).Return(testConversation(), nil)
	f.convs.On("FindByID", mock.Anything, uint64(4)).Return(nil, nil)

	_, err := f.svc.SendMessage(context.Background(), 3, 99, "hello")
	assert.ErrorIs(t, err, common.ErrNotParticipant)

	_, err = f.svc.SendMessage(context.Background(), 4, testBuyer, "hello")
	assert.ErrorIs(t, err, common.ErrConversationNotFound)

	f.msgs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.events.events)
}

func TestListMessages_Paging(t *testing.T) {
	f := newMessageFixture()
	f.convs.On("FindByID", mock.Anything, uint64(3)).Return(testConversation(), nil)
	f.msgs.On("ListByConversation", mock.Anything, uint64(3), 1, MaxMessagePageSize).
		Return([]*domain.Message{{ID: 1, ReadBy: "[10]"}, {ID: 2, ReadBy: "[20]"}}, int64(2), nil)

	msgs, meta, err := f.svc.ListMessages(context.Background(), 3, testSeller, 0, 1000)

	assert.NoError(t, err)
	assert.Len(t, msgs, 2)
	assert.Equal(t, uint64(1), msgs[0].ID)
	assert.Equal(t, int64(2), meta.Total)
}

func TestMarkRead_ResetsOwnCounter(t *testing.T) {
	f := newMessageFixture()
	conv := testConversation()
	conv.SellerUnread = 4
	f.convs.On("FindByID", mock.Anything, uint64(3)).Return(conv, nil)
	f.msgs.On("MarkRead", mock.Anything, conv, testSeller).Return(nil)

	err := f.svc.MarkRead(context.Background(), 3, testSeller)

	assert.NoError(t, err)
	events := f.events.events[testSeller]
	if assert.Len(t, events, 1) {
		assert.Equal(t, 0, events[0].Payload.(*domain.ConversationResponse).UnreadCount)
	}
	assert.Empty(t, f.events.events[testBuyer])
}

func TestListConversations(t *testing.T) {
	f := newMessageFixture()
	conv := testConversation()
	conv.BuyerUnread = 2
	f.convs.On("ListByUser", mock.Anything, testBuyer).Return([]*domain.Conversation{conv}, nil)

	list, err := f.svc.ListConversations(context.Background(), testBuyer)

	assert.NoError(t, err)
	if assert.Len(t, list, 1) {
		assert.Equal(t, 2, list[0].UnreadCount)
	}
}
