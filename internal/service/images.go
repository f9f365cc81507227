package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/oursapp/ours/internal/metrics"
	"github.com/oursapp/ours/internal/storage"
	"github.com/oursapp/ours/internal/validation"
	"golang.org/x/sync/errgroup"
)

// signConcurrency bounds parallel signing calls per request.
const signConcurrency = 8

// ImageAllocation pairs a client file name with the key it will be stored under.
type ImageAllocation struct {
	Name string
	Key  string
}

// ImageDiff is the outcome of replacing an entity's image list.
type ImageDiff struct {
	Kept    []string          // existing keys that stay, untouched in storage
	Added   []ImageAllocation // new names with freshly allocated keys
	Removed []string          // existing keys to release after commit
	Final   []string          // the key list to persist, in request order
}

// ImageLifecycle owns the storage side of images referenced by rows.
//
// A key is allocated before the row is written, its upload URL is issued only
// after the row commits, and replaced or deleted keys are released only after
// the row change commits. Releases are best effort: a failed delete leaves an
// orphaned object behind and is logged.
type ImageLifecycle struct {
	urls  *storage.SignedURLProvider
	newID func() string
}

func NewImageLifecycle(urls *storage.SignedURLProvider) *ImageLifecycle {
	return &ImageLifecycle{
		urls:  urls,
		newID: uuid.NewString,
	}
}

// Allocate validates names and gives each a unique key of the form name-<id>.
func (l *ImageLifecycle) Allocate(field string, names []string) ([]ImageAllocation, error) {
	v := &validator{}
	allocations := make([]ImageAllocation, 0, len(names))
	for i, name := range names {
		err := validation.ValidateImageName(name)
		if err != nil {
			v.check(fmt.Sprintf("%s[%d]", field, i), err)
			continue
		}
		allocations = append(allocations, ImageAllocation{Name: name, Key: name + "-" + l.newID()})
	}
	if err := v.err(); err != nil {
		return nil, err
	}
	return allocations, nil
}

// Diff compares the stored keys with the names a client sent back. A name equal
// to a stored key keeps that image; any other name is a new upload.
func (l *ImageLifecycle) Diff(field string, oldKeys, requested []string) (ImageDiff, error) {
	existing := make(map[string]bool, len(oldKeys))
	for _, key := range oldKeys {
		existing[key] = true
	}

	var diff ImageDiff
	var newNames []string
	var slots []int
	kept := make(map[string]bool, len(requested))

	for _, name := range requested {
		if existing[name] {
			if kept[name] {
				continue
			}
			kept[name] = true
			diff.Kept = append(diff.Kept, name)
			diff.Final = append(diff.Final, name)
			continue
		}
		newNames = append(newNames, name)
		slots = append(slots, len(diff.Final))
		diff.Final = append(diff.Final, "")
	}

	added, err := l.Allocate(field, newNames)
	if err != nil {
		return ImageDiff{}, err
	}
	for i, allocation := range added {
		diff.Final[slots[i]] = allocation.Key
	}
	diff.Added = added

	for _, key := range oldKeys {
		if !kept[key] {
			diff.Removed = append(diff.Removed, key)
		}
	}
	return diff, nil
}

// UploadURLs issues one fresh upload URL per key, in order.
func (l *ImageLifecycle) UploadURLs(ctx context.Context, category storage.Category, keys []string) ([]string, error) {
	return l.signAll(ctx, keys, func(ctx context.Context, key string) (string, error) {
		return l.urls.UploadURL(ctx, category.ObjectKey(key))
	})
}

// ReadURL returns the cached read URL of one image.
func (l *ImageLifecycle) ReadURL(ctx context.Context, category storage.Category, key string) (string, error) {
	url, err := l.urls.SignedURL(ctx, category.ObjectKey(key))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrImageURL, err)
	}
	return url, nil
}

// ReadURLs returns cached read URLs for keys, in order.
func (l *ImageLifecycle) ReadURLs(ctx context.Context, category storage.Category, keys []string) ([]string, error) {
	return l.signAll(ctx, keys, func(ctx context.Context, key string) (string, error) {
		return l.urls.SignedURL(ctx, category.ObjectKey(key))
	})
}

func (l *ImageLifecycle) signAll(ctx context.Context, keys []string, sign func(context.Context, string) (string, error)) ([]string, error) {
	urls := make([]string, len(keys))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(signConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			url, err := sign(ctx, key)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageURL, err)
	}
	return urls, nil
}

// Release deletes keys from storage. Call it only after the row change that
// dropped the keys has committed. Failures are logged and swallowed.
func (l *ImageLifecycle) Release(ctx context.Context, category storage.Category, keys []string) {
	// A client hanging up must not strand the deletes.
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		objectKey := category.ObjectKey(key)
		err := l.urls.Delete(ctx, objectKey)
		if err != nil {
			metrics.OrphanedObjectsTotal.WithLabelValues(category.Name).Inc()
			slog.Error("failed to delete image from storage", "error", err, "key", objectKey, "category", category.Name)
		}
	}
}
