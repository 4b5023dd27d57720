package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/titanmarket/titanmarket-backend/internal/common"
	"github.com/titanmarket/titanmarket-backend/internal/domain"
	"github.com/titanmarket/titanmarket-backend/internal/repository"
	pkgcache "github.com/titanmarket/titanmarket-backend/pkg/cache"
	pkges "github.com/titanmarket/titanmarket-backend/pkg/elasticsearch"
	pkglogger "github.com/titanmarket/titanmarket-backend/pkg/logger"
)

// Browse paging
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListingSearcher is the keyword search backend
type ListingSearcher interface {
	SearchListings(ctx context.Context, q pkges.ListingQuery) ([]uint64, int64, error)
	IndexListing(ctx context.Context, doc *pkges.ListingDocument) error
}

// ListingService listing business logic
type ListingService interface {
	Create(ctx context.Context, sellerID uint64, req *domain.CreateListingRequest) (*domain.ListingResponse, error)
	Get(ctx context.Context, id uint64, viewerID *uint64) (*domain.ListingResponse, error)
	Update(ctx context.Context, id, sellerID uint64, req *domain.UpdateListingRequest) (*domain.ListingResponse, error)
	UpdateStatus(ctx context.Context, id, sellerID uint64, status domain.ListingStatus) (*domain.ListingResponse, error)
	Browse(ctx context.Context, params *repository.ListingListParams) ([]*domain.ListingListResponse, *common.Meta, error)
	ListBySeller(ctx context.Context, sellerID uint64, activeOnly bool) ([]*domain.ListingListResponse, error)
	ListMine(ctx context.Context, sellerID uint64) ([]*domain.ListingListResponse, error)
	UploadImage(ctx context.Context, sellerID uint64, file *UploadFile) (*MediaUploadResult, error)
}

type listingService struct {
	listingRepo repository.ListingRepository
	searcher    ListingSearcher
	cache       pkgcache.Service
	media       MediaService
}

// NewListingService creates a new ListingService. searcher and cache may be nil.
func NewListingService(listingRepo repository.ListingRepository, searcher ListingSearcher, cache pkgcache.Service, media MediaService) ListingService {
	if cache == nil {
		cache = pkgcache.NewService(nil)
	}
	return &listingService{
		listingRepo: listingRepo,
		searcher:    searcher,
		cache:       cache,
		media:       media,
	}
}

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", common.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func validateListing(l *domain.Listing, images []string) error {
	if strings.TrimSpace(l.Title) == "" {
		return invalidInput("title is required")
	}
	if l.Price < 0 || math.IsNaN(l.Price) || math.IsInf(l.Price, 0) {
		return invalidInput("price must be a non-negative number")
	}
	if !l.Category.IsValid() {
		return invalidInput("unknown category %q", l.Category)
	}
	if !l.Condition.IsValid() {
		return invalidInput("unknown condition %q", l.Condition)
	}
	if len(images) > domain.MaxListingImages {
		return invalidInput("at most %d images are allowed", domain.MaxListingImages)
	}
	return nil
}

func (s *listingService) Create(ctx context.Context, sellerID uint64, req *domain.CreateListingRequest) (*domain.ListingResponse, error) {
	listing := &domain.Listing{
		SellerID:    sellerID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Price:       math.Round(req.Price*100) / 100,
		Category:    req.Category,
		Condition:   req.Condition,
		Location:    strings.TrimSpace(req.Location),
		Status:      domain.ListingStatusActive,
	}
	if err := validateListing(listing, req.Images); err != nil {
		return nil, err
	}
	listing.SetImageURLs(req.Images)

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	stored, err := s.listingRepo.FindByID(ctx, listing.ID)
	if err != nil || stored == nil {
		stored = listing
	}
	s.afterWrite(ctx, stored)
	return stored.ToResponse(), nil
}

// Get returns a listing; the view count is bumped unless the viewer is the seller
func (s *listingService) Get(ctx context.Context, id uint64, viewerID *uint64) (*domain.ListingResponse, error) {
	listing, err := s.listingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, common.ErrListingNotFound
	}

	if viewerID == nil || *viewerID != listing.SellerID {
		if err := s.listingRepo.IncrementViewCount(ctx, id); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Uint64("listing_id", id).Msg("view count update failed")
		} else {
			listing.ViewCount++
		}
	}

	return listing.ToResponse(), nil
}

// Update edits a listing. The id and seller never change.
func (s *listingService) Update(ctx context.Context, id, sellerID uint64, req *domain.UpdateListingRequest) (*domain.ListingResponse, error) {
	listing, err := s.ownedListing(ctx, id, sellerID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		listing.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		listing.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		listing.Price = math.Round(*req.Price*100) / 100
	}
	if req.Category != nil {
		listing.Category = *req.Category
	}
	if req.Condition != nil {
		listing.Condition = *req.Condition
	}
	if req.Location != nil {
		listing.Location = strings.TrimSpace(*req.Location)
	}
	images := listing.ImageURLs()
	if req.Images != nil {
		images = req.Images
	}
	if err := validateListing(listing, images); err != nil {
		return nil, err
	}
	listing.SetImageURLs(images)

	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	listing.UpdatedAt = time.Now()

	s.afterWrite(ctx, listing)
	return listing.ToResponse(), nil
}

// UpdateStatus moves a listing between active and sold. Marking sold records sold_at.
func (s *listingService) UpdateStatus(ctx context.Context, id, sellerID uint64, status domain.ListingStatus) (*domain.ListingResponse, error) {
	if !status.IsValid() {
		return nil, invalidInput("unknown status %q", status)
	}
	listing, err := s.ownedListing(ctx, id, sellerID)
	if err != nil {
		return nil, err
	}
	if listing.Status == status {
		return listing.ToResponse(), nil
	}

	var soldAt *time.Time
	if status == domain.ListingStatusSold {
		now := time.Now()
		soldAt = &now
	}
	if err := s.listingRepo.UpdateStatus(ctx, id, status, soldAt); err != nil {
		return nil, err
	}
	listing.Status = status
	listing.SoldAt = soldAt

	s.afterWrite(ctx, listing)
	return listing.ToResponse(), nil
}

func (s *listingService) ownedListing(ctx context.Context, id, sellerID uint64) (*domain.Listing, error) {
	listing, err := s.listingRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, common.ErrListingNotFound
	}
	if listing.SellerID != sellerID {
		return nil, common.ErrForbidden
	}
	return listing, nil
}

// afterWrite keeps the search index and caches in step with the database.
// Failures are logged; the database stays the source of truth.
func (s *listingService) afterWrite(ctx context.Context, l *domain.Listing) {
	log := pkglogger.GetLogger()
	if s.searcher != nil {
		if err := s.searcher.IndexListing(ctx, toSearchDocument(l)); err != nil {
			log.Warn().Err(err).Uint64("listing_id", l.ID).Msg("listing index update failed")
		}
	}
	if err := s.cache.InvalidateBrowse(ctx); err != nil {
		log.Warn().Err(err).Msg("browse cache invalidation failed")
	}
	if err := s.cache.InvalidateProfile(ctx, l.SellerID); err != nil {
		log.Warn().Err(err).Uint64("user_id", l.SellerID).Msg("profile cache invalidation failed")
	}
}

func toSearchDocument(l *domain.Listing) *pkges.ListingDocument {
	return &pkges.ListingDocument{
		ID:          l.ID,
		SellerID:    l.SellerID,
		Title:       l.Title,
		Description: l.Description,
		Category:    string(l.Category),
		Condition:   string(l.Condition),
		Status:      string(l.Status),
		Location:    l.Location,
		Price:       l.Price,
		CreatedAt:   l.CreatedAt,
	}
}

// NormalizeBrowseParams applies paging defaults and validates enum filters
func NormalizeBrowseParams(p *repository.ListingListParams) error {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	switch p.Sort {
	case repository.SortNewest, repository.SortPriceAsc, repository.SortPriceDesc, repository.SortViews:
	case "":
		p.Sort = repository.SortNewest
	default:
		return invalidInput("unknown sort %q", p.Sort)
	}
	if p.Category != nil && !p.Category.IsValid() {
		return invalidInput("unknown category %q", *p.Category)
	}
	if p.Condition != nil && !p.Condition.IsValid() {
		return invalidInput("unknown condition %q", *p.Condition)
	}
	if p.Status != nil && !p.Status.IsValid() {
		return invalidInput("unknown status %q", *p.Status)
	}
	if p.MinPrice != nil && p.MaxPrice != nil && *p.MinPrice > *p.MaxPrice {
		return invalidInput("min_price is greater than max_price")
	}
	p.Keyword = strings.TrimSpace(p.Keyword)
	p.Location = strings.TrimSpace(p.Location)
	return nil
}

type browsePage struct {
	Items []*domain.ListingListResponse `json:"items"`
	Meta  *common.Meta                  `json:"meta"`
}

// Browse lists listings. Keyword queries go to the search index when one is
// configured; any search error falls back to a LIKE query on the database.
func (s *listingService) Browse(ctx context.Context, params *repository.ListingListParams) ([]*domain.ListingListResponse, *common.Meta, error) {
	if err := NormalizeBrowseParams(params); err != nil {
		return nil, nil, err
	}

	cacheKey := browseCacheKey(params)
	version := s.cache.BrowseVersion(ctx)
	var cached browsePage
	if err := s.cache.GetBrowse(ctx, version, cacheKey, &cached); err == nil {
		return cached.Items, cached.Meta, nil
	}

	var (
		listings []*domain.Listing
		total    int64
		err      error
	)
	if s.useSearch(params) {
		listings, total, err = s.search(ctx, params)
		if err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("keyword", params.Keyword).
				Msg("search backend failed, falling back to database query")
			listings, total, err = s.listingRepo.List(ctx, params)
		}
	} else {
		listings, total, err = s.listingRepo.List(ctx, params)
	}
	if err != nil {
		return nil, nil, err
	}

	items := make([]*domain.ListingListResponse, len(listings))
	for i, l := range listings {
		items[i] = l.ToListResponse()
	}
	meta := common.NewMeta(params.Page, params.Limit, total)

	if err := s.cache.SetBrowse(ctx, version, cacheKey, &browsePage{Items: items, Meta: meta}); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("browse cache write failed")
	}
	return items, meta, nil
}

// useSearch: keyword present, index configured and newest-first order requested
// (the index sorts by created_at). Location is free text and only the database
// filter handles it.
func (s *listingService) useSearch(p *repository.ListingListParams) bool {
	return s.searcher != nil && p.Keyword != "" && p.Location == "" && p.Sort == repository.SortNewest
}

func (s *listingService) search(ctx context.Context, p *repository.ListingListParams) ([]*domain.Listing, int64, error) {
	q := pkges.ListingQuery{
		Keyword:  p.Keyword,
		SellerID: p.SellerID,
		MinPrice: p.MinPrice,
		MaxPrice: p.MaxPrice,
		From:     p.Offset(),
		Size:     p.Limit,
	}
	if p.Category != nil {
		q.Category = string(*p.Category)
	}
	if p.Condition != nil {
		q.Condition = string(*p.Condition)
	}
	if p.Status != nil {
		q.Status = string(*p.Status)
	}

	ids, total, err := s.searcher.SearchListings(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	listings, err := s.listingRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func browseCacheKey(p *repository.ListingListParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "p=%d&l=%d&s=%s", p.Page, p.Limit, p.Sort)
	if p.Status != nil {
		fmt.Fprintf(&b, "&st=%s", *p.Status)
	}
	if p.Category != nil {
		fmt.Fprintf(&b, "&c=%s", *p.Category)
	}
	if p.Condition != nil {
		fmt.Fprintf(&b, "&co=%s", *p.Condition)
	}
	if p.SellerID != nil {
		fmt.Fprintf(&b, "&u=%d", *p.SellerID)
	}
	if p.MinPrice != nil {
		fmt.Fprintf(&b, "&min=%.2f", *p.MinPrice)
	}
	if p.MaxPrice != nil {
		fmt.Fprintf(&b, "&max=%.2f", *p.MaxPrice)
	}
	if p.Location != "" {
		fmt.Fprintf(&b, "&loc=%s", strings.ToLower(p.Location))
	}
	if p.Keyword != "" {
		fmt.Fprintf(&b, "&q=%s", strings.ToLower(p.Keyword))
	}
	return b.String()
}

func (s *listingService) ListBySeller(ctx context.Context, sellerID uint64, activeOnly bool) ([]*domain.ListingListResponse, error) {
	var status *domain.ListingStatus
	if activeOnly {
		active := domain.ListingStatusActive
		status = &active
	}
	listings, err := s.listingRepo.ListBySeller(ctx, sellerID, status)
	if err != nil {
		return nil, err
	}
	items := make([]*domain.ListingListResponse, len(listings))
	for i, l := range listings {
		items[i] = l.ToListResponse()
	}
	return items, nil
}

// ListMine returns every listing of the seller, sold ones included
func (s *listingService) ListMine(ctx context.Context, sellerID uint64) ([]*domain.ListingListResponse, error) {
	return s.ListBySeller(ctx, sellerID, false)
}

func (s *listingService) UploadImage(ctx context.Context, sellerID uint64, file *UploadFile) (*MediaUploadResult, error) {
	return s.media.UploadImage(ctx, PrefixListingImages, sellerID, file)
}
