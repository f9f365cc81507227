package service

import (
	"context"
	"errors"
	"testing"

	"github.com/oursapp/ours/internal/model"
	"github.com/oursapp/ours/internal/repository"
	"github.com/oursapp/ours/internal/testutil"
)

func newTestProfileService(t *testing.T) (*ProfileService, repository.ProfileRepository, *testutil.FakeObjectStore, string) {
	t.Helper()
	images, store := newTestImages(t)
	database := testutil.NewTestDB(t)
	userID := testutil.SeedUser(t, database, "alice1")
	profiles := repository.NewProfileRepository(database)
	return NewProfileService(repository.NewUserRepository(database), profiles, images), profiles, store, userID
}

func TestProfileService_NewAvatar(t *testing.T) {
	svc, _, store, userID := newTestProfileService(t)
	image := "me.png"

	view, upload, err := svc.Update(context.Background(), userID, UpdateProfileInput{
		Name: "Alice", Email: "alice1@example.com", Image: &image,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if view.ImageKey == nil || *view.ImageKey != "me.png-1" {
		t.Fatalf("image key = %v", view.ImageKey)
	}
	if upload == nil || *upload != "https://r2.test/put/avatar/me.png-1" {
		t.Errorf("upload url = %v", upload)
	}
	if view.ImageURL == nil {
		t.Error("a new avatar should come back with its read url")
	}
	if len(store.Deleted()) != 0 {
		t.Errorf("nothing to release, deleted %v", store.Deleted())
	}
}

func TestProfileService_SameAvatarMakesNoStorageCalls(t *testing.T) {
	svc, _, store, userID := newTestProfileService(t)
	ctx := context.Background()
	image := "me.png"

	view, _, err := svc.Update(ctx, userID, UpdateProfileInput{Name: "Alice", Email: "alice1@example.com", Image: &image})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	before := store.Calls()

	view, upload, err := svc.Update(ctx, userID, UpdateProfileInput{Name: "Al", Email: "alice1@example.com", Image: view.ImageKey})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if store.Calls() != before {
		t.Errorf("storage calls went from %d to %d, want none", before, store.Calls())
	}
	if upload != nil {
		t.Error("unchanged avatar must not get an upload url")
	}
	if view.Name != "Al" || view.ImageKey == nil || *view.ImageKey != "me.png-1" {
		t.Errorf("view = %+v", view)
	}
}

func TestProfileService_ReplaceAvatarDeletesOldAfterUpdate(t *testing.T) {
	svc, profiles, store, userID := newTestProfileService(t)
	ctx := context.Background()
	first, second := "me.png", "new.png"

	_, _, err := svc.Update(ctx, userID, UpdateProfileInput{Name: "Alice", Email: "alice1@example.com", Image: &first})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	var keyAtDelete string
	store.OnDelete = func(string) {
		p, err := profiles.ByUserID(ctx, userID)
		if err == nil && p.ImageKey != nil {
			keyAtDelete = *p.ImageKey
		}
	}

	_, _, err = svc.Update(ctx, userID, UpdateProfileInput{Name: "Alice", Email: "alice1@example.com", Image: &second})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if got := store.Deleted(); !equalStrings(got, []string{"avatar/me.png-1"}) {
		t.Errorf("deleted = %v", got)
	}
	if keyAtDelete != "new.png-2" {
		t.Errorf("stored key when the old avatar was deleted = %q, want new.png-2", keyAtDelete)
	}
}

func TestProfileService_ReplaceAvatarReleasesOldWhenSigningFails(t *testing.T) {
	svc, profiles, store, userID := newTestProfileService(t)
	ctx := context.Background()
	first, second := "me.png", "new.png"

	_, _, err := svc.Update(ctx, userID, UpdateProfileInput{Name: "Alice", Email: "alice1@example.com", Image: &first})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	store.Mu.Lock()
	store.PresignPutErr = errors.New("r2 down")
	store.Mu.Unlock()

	_, _, err = svc.Update(ctx, userID, UpdateProfileInput{Name: "Alice", Email: "alice1@example.com", Image: &second})
	if !errors.Is(err, ErrImageURL) {
		t.Fatalf("got %v, want ErrImageURL", err)
	}

	p, err := profiles.ByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("ByUserID: %v", err)
	}
	if p.ImageKey == nil || *p.ImageKey != "new.png-2" {
		t.Fatalf("stored key = %v, want new.png-2", p.ImageKey)
	}
	if got := store.Deleted(); !equalStrings(got, []string{"avatar/me.png-1"}) {
		t.Errorf("deleted = %v, want the replaced avatar released", got)
	}
}

// interleavedProfileRepo runs between once before delegating the next
// Update, standing in for a request that commits in between.
type interleavedProfileRepo struct {
	repository.ProfileRepository
	between func()
}

func (r *interleavedProfileRepo) Update(ctx context.Context, userID string, mutate func(*model.Profile) (repository.ProfileUpdate, error)) (*string, error) {
	if between := r.between; between != nil {
		r.between = nil
		between()
	}
	return r.ProfileRepository.Update(ctx, userID, mutate)
}

func TestProfileService_StaleAvatarKeyIsNotWrittenBack(t *testing.T) {
	images, store := newTestImages(t)
	database := testutil.NewTestDB(t)
	userID := testutil.SeedUser(t, database, "alice1")
	profiles := &interleavedProfileRepo{ProfileRepository: repository.NewProfileRepository(database)}
	svc := NewProfileService(repository.NewUserRepository(database), profiles, images)
	ctx := context.Background()

	first, second := "me.png", "new.png"
	view, _, err := svc.Update(ctx, userID, UpdateProfileInput{Name: "Alice", Email: "alice1@example.com", Image: &first})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	staleKey := *view.ImageKey

	// Another request replaces the avatar after this one read it.
	profiles.between = func() {
		_, _, err := svc.Update(ctx, userID, UpdateProfileInput{Name: "Alice", Email: "alice1@example.com", Image: &second})
		if err != nil {
			t.Errorf("concurrent Update: %v", err)
		}
	}

	_, _, err = svc.Update(ctx, userID, UpdateProfileInput{Name: "Al", Email: "alice1@example.com", Image: &staleKey})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Issues[0].Field != "image[0]" {
		t.Fatalf("got %v, want image validation error for a key that is no longer current", err)
	}

	p, err := profiles.ByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("ByUserID: %v", err)
	}
	if p.ImageKey == nil || *p.ImageKey != "new.png-2" {
		t.Errorf("stored key = %v, want new.png-2", p.ImageKey)
	}
	if got := store.Deleted(); !equalStrings(got, []string{"avatar/me.png-1"}) {
		t.Errorf("deleted = %v, want only the replaced avatar", got)
	}
}

func TestProfileService_RemoveAvatar(t *testing.T) {
	svc, _, store, userID := newTestProfileService(t)
	ctx := context.Background()
	image := "me.png"

	_, _, err := svc.Update(ctx, userID, UpdateProfileInput{Name: "Alice", Email: "alice1@example.com", Image: &image})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	view, _, err := svc.Update(ctx, userID, UpdateProfileInput{Name: "Alice", Email: "alice1@example.com"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if view.ImageKey != nil {
		t.Errorf("image key = %v, want nil", *view.ImageKey)
	}
	if got := store.Deleted(); !equalStrings(got, []string{"avatar/me.png-1"}) {
		t.Errorf("deleted = %v", got)
	}
}

func TestProfileService_DuplicateEmail(t *testing.T) {
	images, _ := newTestImages(t)
	database := testutil.NewTestDB(t)
	userID := testutil.SeedUser(t, database, "alice1")
	testutil.SeedUser(t, database, "bobby1")
	svc := NewProfileService(repository.NewUserRepository(database), repository.NewProfileRepository(database), images)

	_, _, err := svc.Update(context.Background(), userID, UpdateProfileInput{Name: "Alice", Email: "bobby1@example.com"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Issues[0].Field != "email" {
		t.Errorf("got %v, want email validation error", err)
	}
}

func TestProfileService_Get(t *testing.T) {
	svc, _, _, userID := newTestProfileService(t)

	view, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.Name != "alice1" || view.Email != "alice1@example.com" || view.ImageURL != nil {
		t.Errorf("view = %+v", view)
	}
}
