package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/titanmarket/titanmarket-backend/internal/common"
	"github.com/titanmarket/titanmarket-backend/internal/domain"
	"github.com/titanmarket/titanmarket-backend/internal/repository"
	pkgcache "github.com/titanmarket/titanmarket-backend/pkg/cache"
	pkglogger "github.com/titanmarket/titanmarket-backend/pkg/logger"
)

// ProfileService profile business logic
type ProfileService interface {
	GetProfile(ctx context.Context, userID uint64) (*domain.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uint64, req *domain.UpdateProfileRequest) (*domain.UserResponse, error)
	CompleteSetup(ctx context.Context, userID uint64, req *domain.UpdateProfileRequest) (*domain.UserResponse, error)
	UploadPhoto(ctx context.Context, userID uint64, file *UploadFile) (*domain.UserResponse, error)
}

type profileService struct {
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
	cache       pkgcache.Service
	media       MediaService
}

// NewProfileService creates a new ProfileService. cache may be nil.
func NewProfileService(userRepo repository.UserRepository, listingRepo repository.ListingRepository, cache pkgcache.Service, media MediaService) ProfileService {
	if cache == nil {
		cache = pkgcache.NewService(nil)
	}
	return &profileService{
		userRepo:    userRepo,
		listingRepo: listingRepo,
		cache:       cache,
		media:       media,
	}
}

// GetProfile returns the public profile page with the user's active listings
func (s *profileService) GetProfile(ctx context.Context, userID uint64) (*domain.ProfileResponse, error) {
	var cached domain.ProfileResponse
	if err := s.cache.GetProfile(ctx, userID, &cached); err == nil {
		return &cached, nil
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrUserNotFound
	}

	active := domain.ListingStatusActive
	listings, err := s.listingRepo.ListBySeller(ctx, userID, &active)
	if err != nil {
		return nil, err
	}

	resp := &domain.ProfileResponse{
		ID:             user.ID,
		DisplayName:    user.DisplayName,
		PhotoURL:       user.PhotoURL,
		Major:          user.Major,
		GraduationYear: user.GraduationYear,
		Bio:            user.Bio,
		MemberSince:    user.CreatedAt,
		ActiveListings: make([]*domain.ListingListResponse, len(listings)),
	}
	for i, l := range listings {
		resp.ActiveListings[i] = l.ToListResponse()
	}

	if err := s.cache.SetProfile(ctx, userID, resp); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Uint64("user_id", userID).Msg("profile cache write failed")
	}
	return resp, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uint64, req *domain.UpdateProfileRequest) (*domain.UserResponse, error) {
	return s.update(ctx, userID, req, false)
}

// CompleteSetup saves the first-run profile form and marks the profile complete
func (s *profileService) CompleteSetup(ctx context.Context, userID uint64, req *domain.UpdateProfileRequest) (*domain.UserResponse, error) {
	return s.update(ctx, userID, req, true)
}

func (s *profileService) update(ctx context.Context, userID uint64, req *domain.UpdateProfileRequest, completeSetup bool) (*domain.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrUserNotFound
	}

	if req.DisplayName != nil {
		trimmed := strings.TrimSpace(*req.DisplayName)
		req.DisplayName = &trimmed
	}
	user.ApplyProfile(req)
	if user.DisplayName == "" {
		return nil, fmt.Errorf("%w: display name is required", common.ErrInvalidInput)
	}
	if completeSetup {
		user.ProfileComplete = true
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return user.ToResponse(), nil
}

// UploadPhoto stores a new profile photo and points the profile at it
func (s *profileService) UploadPhoto(ctx context.Context, userID uint64, file *UploadFile) (*domain.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrUserNotFound
	}

	result, err := s.media.UploadImage(ctx, PrefixProfilePhotos, userID, file)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdatePhotoURL(ctx, userID, result.URL); err != nil {
		return nil, err
	}
	user.PhotoURL = result.URL
	s.invalidate(ctx, userID)
	return user.ToResponse(), nil
}

func (s *profileService) invalidate(ctx context.Context, userID uint64) {
	if err := s.cache.InvalidateProfile(ctx, userID); err != nil && !errors.Is(err, pkgcache.ErrMiss) {
		pkglogger.GetLogger().Warn().Err(err).Uint64("user_id", userID).Msg("profile cache invalidation failed")
	}
}
