package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/titanmarket/titanmarket-backend/internal/domain"
	"github.com/titanmarket/titanmarket-backend/internal/repository"
	"github.com/titanmarket/titanmarket-backend/internal/ws"
	pkgcache "github.com/titanmarket/titanmarket-backend/pkg/cache"
	pkges "github.com/titanmarket/titanmarket-backend/pkg/elasticsearch"
	"github.com/titanmarket/titanmarket-backend/pkg/oauth"
	"github.com/titanmarket/titanmarket-backend/pkg/storage"
)

// --- Mock UserRepository ---

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == 0 {
		user.ID = 100
	}
	return args.Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uint64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) FindByGoogleSub(ctx context.Context, sub string) (*domain.User, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) UpdatePhotoURL(ctx context.Context, id uint64, url string) error {
	return m.Called(ctx, id, url).Error(0)
}

// --- Mock ListingRepository ---

type mockListingRepo struct {
	mock.Mock
}

func (m *mockListingRepo) Create(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	if args.Error(0) == nil && listing.ID == 0 {
		listing.ID = 1
	}
	return args.Error(0)
}

func (m *mockListingRepo) FindByID(ctx context.Context, id uint64) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *mockListingRepo) FindByIDs(ctx context.Context, ids []uint64) ([]*domain.Listing, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}

func (m *mockListingRepo) Update(ctx context.Context, listing *domain.Listing) error {
	return m.Called(ctx, listing).Error(0)
}

func (m *mockListingRepo) UpdateStatus(ctx context.Context, id uint64, status domain.ListingStatus, soldAt *time.Time) error {
	return m.Called(ctx, id, status, soldAt).Error(0)
}

func (m *mockListingRepo) IncrementViewCount(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockListingRepo) List(ctx context.Context, params *repository.ListingListParams) ([]*domain.Listing, int64, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Listing), args.Get(1).(int64), args.Error(2)
}

func (m *mockListingRepo) ListBySeller(ctx context.Context, sellerID uint64, status *domain.ListingStatus) ([]*domain.Listing, error) {
	args := m.Called(ctx, sellerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}

// --- Mock ConversationRepository ---

type mockConversationRepo struct {
	mock.Mock
}

func (m *mockConversationRepo) FindByID(ctx context.Context, id uint64) (*domain.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *mockConversationRepo) FindByListingAndBuyer(ctx context.Context, listingID, buyerID uint64) (*domain.Conversation, error) {
	args := m.Called(ctx, listingID, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *mockConversationRepo) CreateOrGet(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error) {
	args := m.Called(ctx, conv)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *mockConversationRepo) ListByUser(ctx context.Context, userID uint64) ([]*domain.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Conversation), args.Error(1)
}

// --- Mock MessageRepository ---

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) Append(ctx context.Context, conv *domain.Conversation, msg *domain.Message, preview string) error {
	args := m.Called(ctx, conv, msg, preview)
	if args.Error(0) == nil && msg.ID == 0 {
		msg.ID = 1
	}
	return args.Error(0)
}

func (m *mockMessageRepo) FindByID(ctx context.Context, id uint64) (*domain.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *mockMessageRepo) ListByConversation(ctx context.Context, conversationID uint64, page, limit int) ([]*domain.Message, int64, error) {
	args := m.Called(ctx, conversationID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Message), args.Get(1).(int64), args.Error(2)
}

func (m *mockMessageRepo) MarkRead(ctx context.Context, conv *domain.Conversation, userID uint64) error {
	return m.Called(ctx, conv, userID).Error(0)
}

// --- Mock ReportRepository ---

type mockReportRepo struct {
	mock.Mock
}

func (m *mockReportRepo) Create(ctx context.Context, report *domain.Report) error {
	args := m.Called(ctx, report)
	if args.Error(0) == nil && report.ID == 0 {
		report.ID = 1
	}
	return args.Error(0)
}

func (m *mockReportRepo) ListByReporter(ctx context.Context, reporterID uint64, page, limit int) ([]*domain.Report, int64, error) {
	args := m.Called(ctx, reporterID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Report), args.Get(1).(int64), args.Error(2)
}

func (m *mockReportRepo) List(ctx context.Context, status *domain.ReportStatus, page, limit int) ([]*domain.Report, int64, error) {
	args := m.Called(ctx, status, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Report), args.Get(1).(int64), args.Error(2)
}

// --- Mock collaborators ---

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) SearchListings(ctx context.Context, q pkges.ListingQuery) ([]uint64, int64, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]uint64), args.Get(1).(int64), args.Error(2)
}

func (m *mockSearcher) IndexListing(ctx context.Context, doc *pkges.ListingDocument) error {
	return m.Called(ctx, doc).Error(0)
}

type mockGoogle struct {
	mock.Mock
}

func (m *mockGoogle) VerifyIDToken(ctx context.Context, idToken string) (*oauth.GoogleIdentity, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.GoogleIdentity), args.Error(1)
}

func (m *mockGoogle) ExchangeCode(ctx context.Context, code string) (*oauth.GoogleIdentity, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.GoogleIdentity), args.Error(1)
}

func (m *mockGoogle) AuthCodeURL(state string) string {
	return m.Called(state).String(0)
}

type mockMedia struct {
	mock.Mock
}

func (m *mockMedia) UploadImage(ctx context.Context, prefix string, ownerID uint64, file *UploadFile) (*MediaUploadResult, error) {
	args := m.Called(ctx, prefix, ownerID, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MediaUploadResult), args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*storage.UploadResult, error) {
	args := m.Called(ctx, key, body, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.UploadResult), args.Error(1)
}

// recordingPublisher captures pushed events per user
type recordingPublisher struct {
	events map[uint64][]*ws.Event
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(map[uint64][]*ws.Event)}
}

func (p *recordingPublisher) SendToUser(userID uint64, event *ws.Event) {
	p.events[userID] = append(p.events[userID], event)
}

// memCache is an in-process cache.Service for asserting hit and invalidation behavior
type memCache struct {
	entries       map[string][]byte
	browseVersion int64
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) error {
	data, ok := c.entries[key]
	if !ok {
		return pkgcache.ErrMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *memCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := c.entries[key]
	return ok, nil
}

func (c *memCache) GetProfile(ctx context.Context, userID uint64, dest interface{}) error {
	return c.Get(ctx, fmt.Sprintf("%s%d", pkgcache.PrefixProfile, userID), dest)
}

func (c *memCache) SetProfile(ctx context.Context, userID uint64, data interface{}) error {
	return c.Set(ctx, fmt.Sprintf("%s%d", pkgcache.PrefixProfile, userID), data, pkgcache.TTLProfile)
}

func (c *memCache) InvalidateProfile(ctx context.Context, userID uint64) error {
	return c.Delete(ctx, fmt.Sprintf("%s%d", pkgcache.PrefixProfile, userID))
}

func (c *memCache) BrowseVersion(context.Context) int64 { return c.browseVersion }

func (c *memCache) browseKey(version int64, query string) string {
	return fmt.Sprintf("%sv%d:%s", pkgcache.PrefixBrowse, version, query)
}

func (c *memCache) GetBrowse(ctx context.Context, version int64, query string, dest interface{}) error {
	return c.Get(ctx, c.browseKey(version, query), dest)
}

func (c *memCache) SetBrowse(ctx context.Context, version int64, query string, data interface{}) error {
	return c.Set(ctx, c.browseKey(version, query), data, pkgcache.TTLBrowse)
}

// InvalidateBrowse bumps the generation and drops old pages, standing in for TTL expiry
func (c *memCache) InvalidateBrowse(_ context.Context) error {
	c.browseVersion++
	for k := range c.entries {
		if strings.HasPrefix(k, pkgcache.PrefixBrowse) {
			delete(c.entries, k)
		}
	}
	return nil
}

func (c *memCache) IsAvailable() bool { return true }

func (c *memCache) Ping(context.Context) error { return nil }
