package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/titanmarket/titanmarket-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Browse sort orders
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortViews     = "views"
)

// ListingRepository listing data access interface
type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	FindByID(ctx context.Context, id uint64) (*domain.Listing, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]*domain.Listing, error)
	Update(ctx context.Context, listing *domain.Listing) error
	UpdateStatus(ctx context.Context, id uint64, status domain.ListingStatus, soldAt *time.Time) error
	IncrementViewCount(ctx context.Context, id uint64) error
	List(ctx context.Context, params *ListingListParams) ([]*domain.Listing, int64, error)
	ListBySeller(ctx context.Context, sellerID uint64, status *domain.ListingStatus) ([]*domain.Listing, error)
}

// ListingListParams browse filters
type ListingListParams struct {
	Category  *domain.Category
	Condition *domain.Condition
	Status    *domain.ListingStatus // nil means any status
	SellerID  *uint64
	MinPrice  *float64
	MaxPrice  *float64
	Location  string
	Keyword   string
	Sort      string // newest, price_asc, price_desc, views
	Page      int
	Limit     int
}

// Offset returns the row offset of the requested page
func (p *ListingListParams) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new ListingRepository
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(listing).Error
}

func (r *listingRepository) FindByID(ctx context.Context, id uint64) (*domain.Listing, error) {
	var listing domain.Listing
	err := r.db.WithContext(ctx).Preload("Seller").Where("id = ?", id).First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

// FindByIDs loads listings and returns them in the order of ids; missing ids are skipped
func (r *listingRepository) FindByIDs(ctx context.Context, ids []uint64) ([]*domain.Listing, error) {
	if len(ids) == 0 {
		return []*domain.Listing{}, nil
	}

	var rows []*domain.Listing
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint64]*domain.Listing, len(rows))
	for _, l := range rows {
		byID[l.ID] = l
	}
	ordered := make([]*domain.Listing, 0, len(rows))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			ordered = append(ordered, l)
		}
	}
	return ordered, nil
}

// Update saves editable columns. seller_id and created_at are never written.
func (r *listingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	return r.db.WithContext(ctx).Model(listing).
		Select("title", "description", "price", "category", "item_condition", "images", "location", "updated_at").
		Updates(listing).Error
}

func (r *listingRepository) UpdateStatus(ctx context.Context, id uint64, status domain.ListingStatus, soldAt *time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Listing{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"sold_at":    soldAt,
			"updated_at": time.Now(),
		}).Error
}

func (r *listingRepository) IncrementViewCount(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Model(&domain.Listing{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *listingRepository) List(ctx context.Context, params *ListingListParams) ([]*domain.Listing, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Listing{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Category != nil {
		query = query.Where("category = ?", *params.Category)
	}
	if params.Condition != nil {
		query = query.Where("item_condition = ?", *params.Condition)
	}
	if params.SellerID != nil {
		query = query.Where("seller_id = ?", *params.SellerID)
	}
	if params.MinPrice != nil {
		query = query.Where("price >= ?", *params.MinPrice)
	}
	if params.MaxPrice != nil {
		query = query.Where("price <= ?", *params.MaxPrice)
	}
	if params.Location != "" {
		query = query.Where("LOWER(location) LIKE ? ESCAPE '!'", containsPattern(params.Location))
	}
	if params.Keyword != "" {
		like := containsPattern(params.Keyword)
		query = query.Where("(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var listings []*domain.Listing
	err := query.Order(orderClause(params.Sort)).
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern builds a case-insensitive substring pattern for LIKE ... ESCAPE '!'
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func orderClause(sort string) string {
	switch sort {
	case SortPriceAsc:
		return "price ASC, id DESC"
	case SortPriceDesc:
		return "price DESC, id DESC"
	case SortViews:
		return "view_count DESC, id DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

func (r *listingRepository) ListBySeller(ctx context.Context, sellerID uint64, status *domain.ListingStatus) ([]*domain.Listing, error) {
	query := r.db.WithContext(ctx).Where("seller_id = ?", sellerID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var listings []*domain.Listing
	err := query.Order("created_at DESC, id DESC").Find(&listings).Error
	return listings, err
}
