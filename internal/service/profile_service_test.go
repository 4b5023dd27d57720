package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/titanmarket/titanmarket-backend/internal/common"
	"github.com/titanmarket/titanmarket-backend/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestGetProfile_CachesResult(t *testing.T) {
	users := new(mockUserRepo)
	listings := new(mockListingRepo)
	cache := newMemCache()
	svc := NewProfileService(users, listings, cache, nil)

	users.On("FindByID", mock.Anything, uint64(5)).Return(&domain.User{ID: 5, DisplayName: "Tuffy", Major: "CS"}, nil).Once()
	listings.On("ListBySeller", mock.Anything, uint64(5), mock.Anything).
		Return([]*domain.Listing{{ID: 1, SellerID: 5, Title: "Lamp"}}, nil).Once()

	first, err := svc.GetProfile(context.Background(), 5)
	assert.NoError(t, err)
	assert.Len(t, first.ActiveListings, 1)

	second, err := svc.GetProfile(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, "CS", second.Major)
	assert.Equal(t, "Lamp", second.ActiveListings[0].Title)

	users.AssertNumberOfCalls(t, "FindByID", 1)
}

func TestGetProfile_NotFound(t *testing.T) {
	users := new(mockUserRepo)
	svc := NewProfileService(users, new(mockListingRepo), nil, nil)

	users.On("FindByID", mock.Anything, uint64(5)).Return(nil, nil)

	_, err := svc.GetProfile(context.Background(), 5)
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestUpdateProfile_InvalidatesCache(t *testing.T) {
	users := new(mockUserRepo)
	cache := newMemCache()
	cache.entries["profile:5"] = []byte(`{"id":5}`)
	svc := NewProfileService(users, new(mockListingRepo), cache, nil)

	user := &domain.User{ID: 5, DisplayName: "Tuffy"}
	users.On("FindByID", mock.Anything, uint64(5)).Return(user, nil)
	users.On("Update", mock.Anything, user).Return(nil)

	resp, err := svc.UpdateProfile(context.Background(), 5, &domain.UpdateProfileRequest{
		DisplayName: strPtr("  Tuffy Titan "),
		Bio:         strPtr("Selling my dorm stuff"),
	})

	assert.NoError(t, err)
	assert.Equal(t, "Tuffy Titan", resp.DisplayName)
	assert.False(t, resp.ProfileComplete)
	assert.NotContains(t, cache.entries, "profile:5")
}

func TestUpdateProfile_RejectsBlankDisplayName(t *testing.T) {
	users := new(mockUserRepo)
	svc := NewProfileService(users, new(mockListingRepo), nil, nil)

	users.On("FindByID", mock.Anything, uint64(5)).Return(&domain.User{ID: 5, DisplayName: "Tuffy"}, nil)

	_, err := svc.UpdateProfile(context.Background(), 5, &domain.UpdateProfileRequest{DisplayName: strPtr("   ")})

	assert.ErrorIs(t, err, common.ErrInvalidInput)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCompleteSetup_MarksProfileComplete(t *testing.T) {
	users := new(mockUserRepo)
	svc := NewProfileService(users, new(mockListingRepo), nil, nil)

	year := 2027
	users.On("FindByID", mock.Anything, uint64(5)).Return(&domain.User{ID: 5, DisplayName: "Tuffy"}, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.ProfileComplete && u.GraduationYear != nil && *u.GraduationYear == 2027
	})).Return(nil)

	resp, err := svc.CompleteSetup(context.Background(), 5, &domain.UpdateProfileRequest{
		Major:          strPtr("Computer Science"),
		GraduationYear: &year,
	})

	assert.NoError(t, err)
	assert.True(t, resp.ProfileComplete)
	users.AssertExpectations(t)
}

func TestUploadPhoto_SetsPhotoURL(t *testing.T) {
	users := new(mockUserRepo)
	media := new(mockMedia)
	svc := NewProfileService(users, new(mockListingRepo), nil, media)

	file := &UploadFile{Filename: "me.jpg"}
	users.On("FindByID", mock.Anything, uint64(5)).Return(&domain.User{ID: 5, DisplayName: "Tuffy"}, nil)
	media.On("UploadImage", mock.Anything, PrefixProfilePhotos, uint64(5), file).
		Return(&MediaUploadResult{URL: "https://cdn/profiles/5/me.jpg"}, nil)
	users.On("UpdatePhotoURL", mock.Anything, uint64(5), "https://cdn/profiles/5/me.jpg").Return(nil)

	resp, err := svc.UploadPhoto(context.Background(), 5, file)

	assert.NoError(t, err)
	assert.Equal(t, "https://cdn/profiles/5/me.jpg", resp.PhotoURL)
	users.AssertExpectations(t)
}

func TestUploadPhoto_StorageFailureLeavesProfile(t *testing.T) {
	users := new(mockUserRepo)
	media := new(mockMedia)
	svc := NewProfileService(users, new(mockListingRepo), nil, media)

	users.On("FindByID", mock.Anything, uint64(5)).Return(&domain.User{ID: 5}, nil)
	media.On("UploadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, common.ErrFileTooLarge)

	_, err := svc.UploadPhoto(context.Background(), 5, &UploadFile{})

	assert.ErrorIs(t, err, common.ErrFileTooLarge)
	users.AssertNotCalled(t, "UpdatePhotoURL", mock.Anything, mock.Anything, mock.Anything)
}
