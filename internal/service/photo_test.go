package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/oursapp/ours/internal/model"
	"github.com/oursapp/ours/internal/repository"
	"github.com/oursapp/ours/internal/testutil"
)

func newTestPhotoService(t *testing.T) (*PhotoService, repository.PhotoRepository, *testutil.FakeObjectStore) {
	t.Helper()
	images, store := newTestImages(t)
	repo := repository.NewPhotoRepository(testutil.NewTestDB(t))
	return NewPhotoService(repo, images, 10), repo, store
}

func TestPhotoService_CreateReturnsUploadURLsInOrder(t *testing.T) {
	svc, _, store := newTestPhotoService(t)

	photos, uploads, err := svc.Create(context.Background(), []string{"b.jpg", "a.jpg"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(photos) != 2 || photos[0].ImageKey != "b.jpg-1" || photos[1].ImageKey != "a.jpg-2" {
		t.Fatalf("photos = %+v", photos)
	}
	want := []string{"https://r2.test/put/carousel/b.jpg-1", "https://r2.test/put/carousel/a.jpg-2"}
	if !equalStrings(uploads, want) {
		t.Errorf("uploads = %v, want %v", uploads, want)
	}
	if !strings.HasPrefix(photos[0].URL, "https://r2.test/get/carousel/b.jpg-1") || !strings.HasPrefix(photos[1].URL, "https://r2.test/get/carousel/a.jpg-2") {
		t.Errorf("created photos should carry read urls, got %+v", photos)
	}
	if len(store.PresignGetCalls) != 2 {
		t.Errorf("PresignGet calls = %d, want 2", len(store.PresignGetCalls))
	}
}

func TestPhotoService_CreateOverCap(t *testing.T) {
	svc, _, store := newTestPhotoService(t)
	ctx := context.Background()

	names := make([]string, 9)
	for i := range names {
		names[i] = "p.jpg"
	}
	if _, _, err := svc.Create(ctx, names); err != nil {
		t.Fatalf("seed: %v", err)
	}
	before := store.Calls()

	_, _, err := svc.Create(ctx, []string{"x.jpg", "y.jpg"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Issues[0].Field != "imageNames" {
		t.Fatalf("got %v, want imageNames validation error", err)
	}
	if store.Calls() != before {
		t.Error("a rejected batch must not issue upload urls")
	}
}

func TestPhotoService_CreateRejectsEmptyBatch(t *testing.T) {
	svc, _, _ := newTestPhotoService(t)

	_, _, err := svc.Create(context.Background(), nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("got %v, want ValidationError", err)
	}
}

func TestPhotoService_DeleteReleasesAfterCommit(t *testing.T) {
	svc, repo, store := newTestPhotoService(t)
	ctx := context.Background()

	photos, _, err := svc.Create(ctx, []string{"a.jpg"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	countAtDelete := -1
	store.OnDelete = func(string) {
		countAtDelete, _ = repo.Count(ctx, model.MomentsGalleryID)
	}

	err = svc.Delete(ctx, photos[0].ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if countAtDelete != 0 {
		t.Errorf("row count when storage was touched = %d, want 0", countAtDelete)
	}
	if got := store.Deleted(); !equalStrings(got, []string{"carousel/a.jpg-1"}) {
		t.Errorf("deleted = %v", got)
	}
}

func TestPhotoService_DeleteSucceedsWhenStorageFails(t *testing.T) {
	svc, repo, store := newTestPhotoService(t)
	ctx := context.Background()

	photos, _, err := svc.Create(ctx, []string{"a.jpg"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	store.DeleteErr = errors.New("r2 down")

	err = svc.Delete(ctx, photos[0].ID)
	if err != nil {
		t.Fatalf("Delete should swallow storage failures, got %v", err)
	}
	if n, _ := repo.Count(ctx, model.MomentsGalleryID); n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestPhotoService_DeleteUnknown(t *testing.T) {
	svc, _, store := newTestPhotoService(t)

	err := svc.Delete(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
	if store.Calls() != 0 {
		t.Error("unknown photo must not touch storage")
	}
}

func TestPhotoService_ListSignsOncePerKey(t *testing.T) {
	svc, _, store := newTestPhotoService(t)
	ctx := context.Background()

	if _, _, err := svc.Create(ctx, []string{"a.jpg", "b.jpg"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	for range 3 {
		photos, err := svc.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(photos) != 2 || photos[0].URL == "" {
			t.Fatalf("photos = %+v", photos)
		}
	}
	if n := len(store.PresignGetCalls); n != 2 {
		t.Errorf("PresignGet calls = %d, want 2", n)
	}
}
