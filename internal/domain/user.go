package domain

import "time"

// User is a student account. Users are created on first sign-in and never hard-deleted.
type User struct {
	ID              uint64    `gorm:"primaryKey" json:"id"`
	Email           string    `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	PasswordHash    string    `gorm:"column:password_hash;size:255" json:"-"`
	GoogleSub       *string   `gorm:"column:google_sub;size:64;uniqueIndex" json:"-"`
	DisplayName     string    `gorm:"column:display_name;size:100;not null" json:"display_name"`
	PhotoURL        string    `gorm:"column:photo_url;size:500" json:"photo_url"`
	Major           string    `gorm:"column:major;size:100" json:"major"`
	GraduationYear  *int      `gorm:"column:graduation_year" json:"graduation_year,omitempty"`
	Bio             string    `gorm:"column:bio;type:text" json:"bio"`
	IsAdmin         bool      `gorm:"column:is_admin;default:false" json:"is_admin"`
	ProfileComplete bool      `gorm:"column:profile_complete;default:false" json:"profile_complete"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// RegisterRequest campus email sign-up
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,max=72"`
	DisplayName string `json:"display_name" binding:"required,max=100"`
}

// LoginRequest email/password sign-in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// GoogleSignInRequest carries a Google ID token obtained by the client
type GoogleSignInRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// TokenResponse is returned by every sign-in flow
type TokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int64         `json:"expires_in"`
	User         *UserResponse `json:"user"`
}

// UpdateProfileRequest profile form fields. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	DisplayName    *string `json:"display_name" binding:"omitempty,min=1,max=100"`
	Major          *string `json:"major" binding:"omitempty,max=100"`
	GraduationYear *int    `json:"graduation_year" binding:"omitempty,gte=1950,lte=2100"`
	Bio            *string `json:"bio" binding:"omitempty,max=1000"`
}

// UserResponse is the signed-in user's own view
type UserResponse struct {
	ID              uint64    `json:"id"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"display_name"`
	PhotoURL        string    `json:"photo_url"`
	Major           string    `json:"major"`
	GraduationYear  *int      `json:"graduation_year,omitempty"`
	Bio             string    `json:"bio"`
	IsAdmin         bool      `json:"is_admin"`
	ProfileComplete bool      `json:"profile_complete"`
	CreatedAt       time.Time `json:"created_at"`
}

// UserSummary is embedded in listings and conversations
type UserSummary struct {
	ID          uint64 `json:"id"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
}

// ProfileResponse is the public profile page: profile plus active listings
type ProfileResponse struct {
	ID             uint64                 `json:"id"`
	DisplayName    string                 `json:"display_name"`
	PhotoURL       string                 `json:"photo_url"`
	Major          string                 `json:"major"`
	GraduationYear *int                   `json:"graduation_year,omitempty"`
	Bio            string                 `json:"bio"`
	MemberSince    time.Time              `json:"member_since"`
	ActiveListings []*ListingListResponse `json:"active_listings"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		DisplayName:     u.DisplayName,
		PhotoURL:        u.PhotoURL,
		Major:           u.Major,
		GraduationYear:  u.GraduationYear,
		Bio:             u.Bio,
		IsAdmin:         u.IsAdmin,
		ProfileComplete: u.ProfileComplete,
		CreatedAt:       u.CreatedAt,
	}
}

// ToSummary converts User to UserSummary; nil-safe
func (u *User) ToSummary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, DisplayName: u.DisplayName, PhotoURL: u.PhotoURL}
}

// ApplyProfile copies the non-nil fields of req onto the user
func (u *User) ApplyProfile(req *UpdateProfileRequest) {
	if req.DisplayName != nil {
		u.DisplayName = *req.DisplayName
	}
	if req.Major != nil {
		u.Major = *req.Major
	}
	if req.GraduationYear != nil {
		u.GraduationYear = req.GraduationYear
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
}
