package model

import "time"

// MomentsGalleryID is the single shared gallery created by the first migration.
const MomentsGalleryID = "moments"

type Photo struct {
	ID        string    `db:"id"`
	GalleryID string    `db:"gallery_id"`
	ImageKey  string    `db:"image_key"`
	CreatedAt time.Time `db:"created_at"`
}
