package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oursapp/ours/internal/model"
	"github.com/oursapp/ours/internal/repository"
	"github.com/oursapp/ours/internal/storage"
	"github.com/oursapp/ours/internal/validation"
)

type ProfileView struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	ImageKey *string `json:"imageKey"`
	ImageURL *string `json:"imageUrl,omitempty"`
}

// UpdateProfileInput replaces the profile. Image is either the current avatar
// key (keep it), the file name of a new avatar, or nil to remove the avatar.
type UpdateProfileInput struct {
	Name  string
	Email string
	Image *string
}

type ProfileService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	images      *ImageLifecycle
	now         func() time.Time
}

func NewProfileService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository, images *ImageLifecycle) *ProfileService {
	return &ProfileService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		images:      images,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*ProfileView, error) {
	user, err := s.userRepo.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("user")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	profile, err := s.profileRepo.ByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, notFound("profile")
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	view := &ProfileView{Name: profile.Name, Email: user.Email, ImageKey: profile.ImageKey}
	if profile.ImageKey != nil {
		url, err := s.images.ReadURL(ctx, storage.Avatar, *profile.ImageKey)
		if err != nil {
			return nil, err
		}
		view.ImageURL = &url
	}
	return view, nil
}

// Update writes the profile. When the image is unchanged no storage call is
// made. When it changes, the row is committed first, then the new avatar gets
// its upload and read URLs, and only then is the old avatar deleted.
//
// The returned string is the upload URL for a new avatar, or nil.
func (s *ProfileService) Update(ctx context.Context, userID string, in UpdateProfileInput) (*ProfileView, *string, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	v := &validator{}
	v.check("name", validation.ValidateName(name))
	v.check("email", validation.ValidateEmail(email))
	if err := v.err(); err != nil {
		return nil, nil, err
	}

	// The keep-or-replace decision is made against the locked row, so a
	// concurrent replacement cannot be undone by writing back a released key.
	var newKey *string
	var allocation *ImageAllocation
	previous, err := s.profileRepo.Update(ctx, userID, func(current *model.Profile) (repository.ProfileUpdate, error) {
		newKey, allocation = nil, nil
		switch {
		case in.Image == nil:
			// avatar removed
		case current.ImageKey != nil && *in.Image == *current.ImageKey:
			newKey = current.ImageKey
		default:
			allocations, err := s.images.Allocate("image", []string{*in.Image})
			if err != nil {
				return repository.ProfileUpdate{}, err
			}
			allocation = &allocations[0]
			newKey = &allocation.Key
		}
		return repository.ProfileUpdate{
			Name:      name,
			Email:     email,
			ImageKey:  newKey,
			UpdatedAt: s.now(),
		}, nil
	})
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			return nil, nil, err
		case errors.Is(err, repository.ErrProfileNotFound):
			return nil, nil, notFound("profile")
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, nil, invalid("email", "email is already in use")
		}
		return nil, nil, fmt.Errorf("failed to update profile: %w", err)
	}

	view := &ProfileView{Name: name, Email: email, ImageKey: newKey}

	var uploadURL *string
	if allocation != nil {
		uploadURL, view.ImageURL, err = s.avatarURLs(ctx, allocation.Key)
	}

	// The old avatar is unreferenced once the row commits, whether or not
	// signing the new one succeeded.
	if previous != nil && (newKey == nil || *previous != *newKey) {
		s.images.Release(ctx, storage.Avatar, []string{*previous})
	}
	if err != nil {
		return nil, nil, err
	}

	return view, uploadURL, nil
}

func (s *ProfileService) avatarURLs(ctx context.Context, key string) (upload, read *string, err error) {
	urls, err := s.images.UploadURLs(ctx, storage.Avatar, []string{key})
	if err != nil {
		return nil, nil, err
	}

	readURL, err := s.images.ReadURL(ctx, storage.Avatar, key)
	if err != nil {
		return nil, nil, err
	}
	return &urls[0], &readURL, nil
}
