package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/oursapp/ours/internal/db"
	"github.com/oursapp/ours/internal/model"
)

var (
	ErrPhotoNotFound     = errors.New("photo not found")
	ErrGalleryNotFound   = errors.New("gallery not found")
	ErrPhotoLimitReached = errors.New("gallery photo limit reached")
)

type PhotoRepository interface {
	List(ctx context.Context, galleryID string) ([]*model.Photo, error)
	Count(ctx context.Context, galleryID string) (int, error)
	// CreateMany inserts one photo per key unless that would take the gallery
	// above maxPhotos, in which case nothing is inserted and
	// ErrPhotoLimitReached is returned.
	CreateMany(ctx context.Context, galleryID string, imageKeys []string, maxPhotos int, now time.Time) ([]*model.Photo, error)
	// Delete removes the photo and returns the deleted row.
	Delete(ctx context.Context, id string) (*model.Photo, error)
}

type photoRepository struct {
	db *sqlx.DB
}

func NewPhotoRepository(db *sqlx.DB) PhotoRepository {
	return &photoRepository{db: db}
}

func (r *photoRepository) List(ctx context.Context, galleryID string) ([]*model.Photo, error) {
	photos := []*model.Photo{}
	err := r.db.SelectContext(ctx, &photos,
		`SELECT * FROM photos WHERE gallery_id = $1 ORDER BY created_at ASC, id ASC`, galleryID)
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *photoRepository) Count(ctx context.Context, galleryID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM photos WHERE gallery_id = $1`, galleryID)
	return count, err
}

func (r *photoRepository) CreateMany(ctx context.Context, galleryID string, imageKeys []string, maxPhotos int, now time.Time) ([]*model.Photo, error) {
	photos := make([]*model.Photo, 0, len(imageKeys))

	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		// Serialize creators on the gallery row. PostgreSQL takes a row lock,
		// SQLite the database write lock. The count below then sees every
		// committed insert.
		result, err := tx.ExecContext(ctx, `UPDATE galleries SET updated_at = $1 WHERE id = $2`, now, galleryID)
		if err != nil {
			return fmt.Errorf("failed to lock gallery: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrGalleryNotFound
		}

		var count int
		err = tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM photos WHERE gallery_id = $1`, galleryID)
		if err != nil {
			return fmt.Errorf("failed to count photos: %w", err)
		}
		if count+len(imageKeys) > maxPhotos {
			return ErrPhotoLimitReached
		}

		for i, key := range imageKeys {
			photo := &model.Photo{
				ID:        uuid.NewString(),
				GalleryID: galleryID,
				ImageKey:  key,
				// Keep request order stable for oldest-first listing.
				CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO photos (id, gallery_id, image_key, created_at) VALUES ($1, $2, $3, $4)`,
				photo.ID, photo.GalleryID, photo.ImageKey, photo.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to insert photo: %w", err)
			}
			photos = append(photos, photo)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *photoRepository) Delete(ctx context.Context, id string) (*model.Photo, error) {
	var photo model.Photo
	err := r.db.GetContext(ctx, &photo, `DELETE FROM photos WHERE id = $1 RETURNING *`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, err
	}
	return &photo, nil
}
