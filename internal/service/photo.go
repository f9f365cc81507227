package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oursapp/ours/internal/model"
	"github.com/oursapp/ours/internal/repository"
	"github.com/oursapp/ours/internal/storage"
)

// maxPhotosPerRequest bounds a single upload batch.
const maxPhotosPerRequest = 10

type PhotoView struct {
	ID        string    `json:"id"`
	ImageKey  string    `json:"imageKey"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type PhotoService struct {
	photoRepo repository.PhotoRepository
	images    *ImageLifecycle
	maxPhotos int
	now       func() time.Time
}

func NewPhotoService(photoRepo repository.PhotoRepository, images *ImageLifecycle, maxPhotos int) *PhotoService {
	if maxPhotos <= 0 {
		maxPhotos = storage.Carousel.MaxImages
	}
	return &PhotoService{
		photoRepo: photoRepo,
		images:    images,
		maxPhotos: maxPhotos,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns the gallery oldest first with read URLs.
func (s *PhotoService) List(ctx context.Context) ([]PhotoView, error) {
	photos, err := s.photoRepo.List(ctx, model.MomentsGalleryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}

	keys := make([]string, len(photos))
	for i, photo := range photos {
		keys[i] = photo.ImageKey
	}
	urls, err := s.images.ReadURLs(ctx, storage.Carousel, keys)
	if err != nil {
		return nil, err
	}

	views := make([]PhotoView, len(photos))
	for i, photo := range photos {
		views[i] = PhotoView{ID: photo.ID, ImageKey: photo.ImageKey, URL: urls[i], CreatedAt: photo.CreatedAt}
	}
	return views, nil
}

// Create adds one photo per name and returns the rows, with their read URLs,
// and one upload URL per name, in request order. The gallery cap is enforced inside the insert
// transaction, so concurrent uploads cannot overshoot it.
func (s *PhotoService) Create(ctx context.Context, names []string) ([]PhotoView, []string, error) {
	if len(names) == 0 || len(names) > maxPhotosPerRequest {
		return nil, nil, invalid("imageNames", fmt.Sprintf("between 1 and %d images required", maxPhotosPerRequest))
	}

	allocations, err := s.images.Allocate("imageNames", names)
	if err != nil {
		return nil, nil, err
	}
	keys := make([]string, len(allocations))
	for i, a := range allocations {
		keys[i] = a.Key
	}

	photos, err := s.photoRepo.CreateMany(ctx, model.MomentsGalleryID, keys, s.maxPhotos, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrPhotoLimitReached) {
			return nil, nil, invalid("imageNames", fmt.Sprintf("the gallery holds at most %d photos", s.maxPhotos))
		}
		return nil, nil, fmt.Errorf("failed to create photos: %w", err)
	}

	uploadURLs, err := s.images.UploadURLs(ctx, storage.Carousel, keys)
	if err != nil {
		return nil, nil, err
	}
	readURLs, err := s.images.ReadURLs(ctx, storage.Carousel, keys)
	if err != nil {
		return nil, nil, err
	}

	views := make([]PhotoView, len(photos))
	for i, photo := range photos {
		views[i] = PhotoView{ID: photo.ID, ImageKey: photo.ImageKey, URL: readURLs[i], CreatedAt: photo.CreatedAt}
	}
	return views, uploadURLs, nil
}

// Delete removes the photo row, then its object. A storage failure after the
// row is gone is logged and does not fail the call.
func (s *PhotoService) Delete(ctx context.Context, id string) error {
	photo, err := s.photoRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPhotoNotFound) {
			return notFound("photo")
		}
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	s.images.Release(ctx, storage.Carousel, []string{photo.ImageKey})
	return nil
}
