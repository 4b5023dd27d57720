package domain

import (
	"encoding/json"
	"time"
)

// ListingStatus listing lifecycle state
type ListingStatus string

const (
	ListingStatusActive ListingStatus = "active"
	ListingStatusSold   ListingStatus = "sold"
)

// Category listing category
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryTextbooks   Category = "textbooks"
	CategoryFurniture   Category = "furniture"
	CategoryClothing    Category = "clothing"
	CategorySports      Category = "sports"
	CategoryBooks       Category = "books"
	CategoryVehicles    Category = "vehicles"
	CategoryOther       Category = "other"
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryElectronics, CategoryTextbooks, CategoryFurniture, CategoryClothing,
	CategorySports, CategoryBooks, CategoryVehicles, CategoryOther,
}

// Condition item condition
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like-new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
	ConditionPoor    Condition = "poor"
)

// Conditions lists every condition from best to worst
var Conditions = []Condition{ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor}

// MaxListingImages is the number of image URLs a listing may carry
const MaxListingImages = 10

func (c Category) IsValid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

func (c Condition) IsValid() bool {
	for _, v := range Conditions {
		if v == c {
			return true
		}
	}
	return false
}

func (s ListingStatus) IsValid() bool {
	return s == ListingStatusActive || s == ListingStatusSold
}

// Listing an item offered for sale. Listings are never physically deleted.
type Listing struct {
	ID          uint64        `gorm:"primaryKey" json:"id"`
	SellerID    uint64        `gorm:"column:seller_id;not null;index" json:"seller_id"`
	Title       string        `gorm:"column:title;size:200;not null" json:"title"`
	Description string        `gorm:"column:description;type:text" json:"description"`
	Price       float64       `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	Category    Category      `gorm:"column:category;size:20;not null;index" json:"category"`
	Condition   Condition     `gorm:"column:item_condition;size:20;not null" json:"condition"`
	Images      string        `gorm:"column:images;type:text" json:"-"` // JSON array
	Status      ListingStatus `gorm:"column:status;size:10;default:active;index" json:"status"`
	Location    string        `gorm:"column:location;size:100" json:"location"`
	ViewCount   uint          `gorm:"column:view_count;default:0" json:"view_count"`
	SoldAt      *time.Time    `gorm:"column:sold_at" json:"sold_at,omitempty"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relations
	Seller *User `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
}

func (Listing) TableName() string {
	return "listings"
}

// ImageURLs decodes the stored image list
func (l *Listing) ImageURLs() []string {
	images := []string{}
	if l.Images != "" {
		_ = json.Unmarshal([]byte(l.Images), &images)
	}
	return images
}

// SetImageURLs encodes the image list for storage
func (l *Listing) SetImageURLs(images []string) {
	if images == nil {
		images = []string{}
	}
	data, _ := json.Marshal(images)
	l.Images = string(data)
}

// CreateListingRequest new listing form
type CreateListingRequest struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description" binding:"required,max=5000"`
	Price       float64   `json:"price" binding:"gte=0,lte=1000000"`
	Category    Category  `json:"category" binding:"required,enum"`
	Condition   Condition `json:"condition" binding:"required,enum"`
	Images      []string  `json:"images" binding:"max=10,dive,url"`
	Location    string    `json:"location" binding:"max=100"`
}

// UpdateListingRequest edit form. Nil fields are left unchanged.
type UpdateListingRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	Price       *float64   `json:"price" binding:"omitempty,gte=0,lte=1000000"`
	Category    *Category  `json:"category" binding:"omitempty,enum"`
	Condition   *Condition `json:"condition" binding:"omitempty,enum"`
	Images      []string   `json:"images" binding:"omitempty,max=10,dive,url"`
	Location    *string    `json:"location" binding:"omitempty,max=100"`
}

// UpdateListingStatusRequest marks a listing sold or active again
type UpdateListingStatusRequest struct {
	Status ListingStatus `json:"status" binding:"required,enum"`
}

// ListingResponse listing detail
type ListingResponse struct {
	ID          uint64        `json:"id"`
	Seller      *UserSummary  `json:"seller"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	Category    Category      `json:"category"`
	Condition   Condition     `json:"condition"`
	Images      []string      `json:"images"`
	Status      ListingStatus `json:"status"`
	Location    string        `json:"location"`
	ViewCount   uint          `json:"view_count"`
	SoldAt      *time.Time    `json:"sold_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ListingListResponse listing card in browse results
type ListingListResponse struct {
	ID        uint64        `json:"id"`
	SellerID  uint64        `json:"seller_id"`
	Title     string        `json:"title"`
	Price     float64       `json:"price"`
	Category  Category      `json:"category"`
	Condition Condition     `json:"condition"`
	Status    ListingStatus `json:"status"`
	Location  string        `json:"location"`
	ViewCount uint          `json:"view_count"`
	Thumbnail string        `json:"thumbnail"`
	CreatedAt time.Time     `json:"created_at"`
}

// ListingSummary is embedded in conversations
type ListingSummary struct {
	ID        uint64        `json:"id"`
	Title     string        `json:"title"`
	Price     float64       `json:"price"`
	Status    ListingStatus `json:"status"`
	Thumbnail string        `json:"thumbnail"`
}

// ToResponse converts Listing to ListingResponse
func (l *Listing) ToResponse() *ListingResponse {
	seller := l.Seller.ToSummary()
	if seller == nil {
		seller = &UserSummary{ID: l.SellerID}
	}
	return &ListingResponse{
		ID:          l.ID,
		Seller:      seller,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Category:    l.Category,
		Condition:   l.Condition,
		Images:      l.ImageURLs(),
		Status:      l.Status,
		Location:    l.Location,
		ViewCount:   l.ViewCount,
		SoldAt:      l.SoldAt,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// ToListResponse converts Listing to ListingListResponse
func (l *Listing) ToListResponse() *ListingListResponse {
	return &ListingListResponse{
		ID:        l.ID,
		SellerID:  l.SellerID,
		Title:     l.Title,
		Price:     l.Price,
		Category:  l.Category,
		Condition: l.Condition,
		Status:    l.Status,
		Location:  l.Location,
		ViewCount: l.ViewCount,
		Thumbnail: l.thumbnail(),
		CreatedAt: l.CreatedAt,
	}
}

// ToSummary converts Listing to ListingSummary; nil-safe
func (l *Listing) ToSummary() *ListingSummary {
	if l == nil {
		return nil
	}
	return &ListingSummary{ID: l.ID, Title: l.Title, Price: l.Price, Status: l.Status, Thumbnail: l.thumbnail()}
}

func (l *Listing) thumbnail() string {
	if images := l.ImageURLs(); len(images) > 0 {
		return images[0]
	}
	return ""
}
