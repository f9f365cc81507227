package service

import (
	"context"
	"errors"
	"testing"

	"github.com/oursapp/ours/internal/storage"
)

func TestImageLifecycle_Allocate(t *testing.T) {
	images, _ := newTestImages(t)

	got, err := images.Allocate("imageNames", []string{"a.jpg", "b.png"})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if got[0].Key != "a.jpg-1" || got[1].Key != "b.png-2" {
		t.Errorf("keys = %q, %q", got[0].Key, got[1].Key)
	}
}

func TestImageLifecycle_AllocateReportsEveryBadName(t *testing.T) {
	images, _ := newTestImages(t)

	_, err := images.Allocate("imageNames", []string{"ok.jpg", "a/b.jpg", "notes.txt"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if len(verr.Issues) != 2 {
		t.Fatalf("issues = %+v, want 2", verr.Issues)
	}
	if verr.Issues[0].Field != "imageNames[1]" || verr.Issues[1].Field != "imageNames[2]" {
		t.Errorf("fields = %q, %q", verr.Issues[0].Field, verr.Issues[1].Field)
	}
}

func TestImageLifecycle_Diff(t *testing.T) {
	images, _ := newTestImages(t)

	diff, err := images.Diff("imageNames", []string{"a.jpg-x", "b.jpg-x", "c.jpg-x"}, []string{"d.jpg", "a.jpg-x"})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}

	if !equalStrings(diff.Kept, []string{"a.jpg-x"}) {
		t.Errorf("kept = %v", diff.Kept)
	}
	if len(diff.Added) != 1 || diff.Added[0].Name != "d.jpg" || diff.Added[0].Key != "d.jpg-1" {
		t.Errorf("added = %+v", diff.Added)
	}
	if !equalStrings(diff.Removed, []string{"b.jpg-x", "c.jpg-x"}) {
		t.Errorf("removed = %v", diff.Removed)
	}
	if !equalStrings(diff.Final, []string{"d.jpg-1", "a.jpg-x"}) {
		t.Errorf("final = %v, want request order", diff.Final)
	}
}

func TestImageLifecycle_DiffUnchanged(t *testing.T) {
	images, _ := newTestImages(t)

	diff, err := images.Diff("imageNames", []string{"a.jpg-x"}, []string{"a.jpg-x", "a.jpg-x"})
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if len(diff.Added) != 0 || len(diff.Removed) != 0 {
		t.Errorf("diff = %+v, want no changes", diff)
	}
	if !equalStrings(diff.Final, []string{"a.jpg-x"}) {
		t.Errorf("final = %v", diff.Final)
	}
}

func TestImageLifecycle_ReleaseSwallowsFailures(t *testing.T) {
	images, store := newTestImages(t)
	store.DeleteErr = errors.New("r2 down")

	images.Release(context.Background(), storage.Carousel, []string{"a", "b"})

	if got := store.Deleted(); !equalStrings(got, []string{"carousel/a", "carousel/b"}) {
		t.Errorf("deleted = %v, want both attempted", got)
	}
}

func TestImageLifecycle_ReleaseOutlivesCanceledContext(t *testing.T) {
	images, store := newTestImages(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	images.Release(ctx, storage.Avatar, []string{"a"})

	if got := store.Deleted(); !equalStrings(got, []string{"avatar/a"}) {
		t.Errorf("deleted = %v, want the release to run after cancel", got)
	}
}

func TestImageLifecycle_SigningFailureWrapsErrImageURL(t *testing.T) {
	images, store := newTestImages(t)
	store.PresignPutErr = errors.New("r2 down")

	_, err := images.UploadURLs(context.Background(), storage.TodoAttachment, []string{"a", "b"})
	if !errors.Is(err, ErrImageURL) {
		t.Errorf("got %v, want ErrImageURL", err)
	}
}
