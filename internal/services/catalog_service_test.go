package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/joshua-takyi/fasttrack/internal/events"
	"github.com/joshua-takyi/fasttrack/internal/models"
	"github.com/shopspring/decimal"
)

func TestCatalogListPublicHidesInactive(t *testing.T) {
	store := newMemStore()
	store.addService(models.Service{NameEn: "Exterior", NameAr: "خارجي", Price: decimal.RequireFromString("3.5"), IsActive: true})
	store.addService(models.Service{NameEn: "Retired", NameAr: "متوقف", Price: decimal.NewFromInt(2), IsActive: false})
	cs := NewCatalogService(store, nil, &recordingFeed{}, discardLogger())

	public, err := cs.ListPublic(context.Background(), "ar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(public) != 1 {
		t.Fatalf("expected 1 active service, got %d", len(public))
	}
	if public[0].Name != "خارجي" {
		t.Errorf("expected Arabic name, got %q", public[0].Name)
	}
	if public[0].PriceLabel != "٣٫٥٠٠ د.ك." {
		t.Errorf("unexpected Arabic price label %q", public[0].PriceLabel)
	}

	all, _ := cs.ListAll(context.Background(), "en")
	if len(all) != 2 {
		t.Errorf("admin listing should include inactive services, got %d", len(all))
	}
	if all[0].PriceLabel != "KWD 3.500" {
		t.Errorf("unexpected English price label %q", all[0].PriceLabel)
	}
}

func TestCatalogCreateValidatesPrice(t *testing.T) {
	cs := NewCatalogService(newMemStore(), nil, &recordingFeed{}, discardLogger())
	tests := []struct {
		name  string
		price string
	}{
		{"negative", "-1"},
		{"too precise", "1.2345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cs.Create(context.Background(), &models.ServiceInput{
				NameEn: "Wash", NameAr: "غسيل", Price: decimal.RequireFromString(tt.price),
			})
			var verr *ValidationError
			if !errors.As(err, &verr) || !verr.has("price") {
				t.Errorf("expected price validation error, got %v", err)
			}
		})
	}
}

func TestCatalogCreate(t *testing.T) {
	store := newMemStore()
	feed := &recordingFeed{}
	uploader := &fakeUploader{}
	cs := NewCatalogService(store, uploader, feed, discardLogger())

	created, err := cs.Create(context.Background(), &models.ServiceInput{
		NameEn: " Interior ",
		NameAr: "داخلي",
		Price:  decimal.RequireFromString("7.250"),
		Image:  "data:image/png;base64,iVBORw0KGgo=",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.NameEn != "Interior" || !created.IsActive {
		t.Errorf("unexpected service: %+v", created)
	}
	if created.ImageURL == "" || len(uploader.sources) != 1 {
		t.Errorf("expected image to be uploaded")
	}
	if len(feed.changes) != 1 || feed.changes[0].Table != models.ServicesTable || feed.changes[0].Op != events.OpInsert {
		t.Errorf("expected a services insert change, got %+v", feed.changes)
	}
}

func TestCatalogImageWithoutUploader(t *testing.T) {
	store := newMemStore()
	wash := store.addService(models.Service{NameEn: "Wash", Price: decimal.NewFromInt(1), IsActive: true})
	cs := NewCatalogService(store, nil, &recordingFeed{}, discardLogger())

	var verr *ValidationError
	_, err := cs.Create(context.Background(), &models.ServiceInput{NameEn: "A", NameAr: "ب", Image: "https://example.com/a.png"})
	if !errors.As(err, &verr) || !verr.has("image") {
		t.Errorf("expected image validation error on create, got %v", err)
	}
	_, err = cs.Update(context.Background(), wash.ID, &models.ServicePatch{Image: "https://example.com/a.png"})
	if !errors.As(err, &verr) || !verr.has("image") {
		t.Errorf("expected image validation error on update, got %v", err)
	}
}

func TestCatalogRejectsLocalImagePaths(t *testing.T) {
	secret := filepath.Join(t.TempDir(), ".env.local")
	if err := os.WriteFile(secret, []byte("SUPABASE_SERVICE_ROLE_KEY=super-secret-value\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	store := newMemStore()
	wash := store.addService(models.Service{NameEn: "Wash", Price: decimal.NewFromInt(1), IsActive: true})
	uploader := &fakeUploader{}
	cs := NewCatalogService(store, uploader, &recordingFeed{}, discardLogger())

	sources := []string{
		secret,
		"file://" + secret,
		"http://example.com/a.png",
		"data:text/plain;base64,U0VDUkVU",
	}
	for _, src := range sources {
		var verr *ValidationError
		_, err := cs.Create(context.Background(), &models.ServiceInput{NameEn: "A", NameAr: "ب", Image: src})
		if !errors.As(err, &verr) || !verr.has("image") {
			t.Errorf("create with %q: expected image validation error, got %v", src, err)
		}
		_, err = cs.Update(context.Background(), wash.ID, &models.ServicePatch{Image: src})
		if !errors.As(err, &verr) || !verr.has("image") {
			t.Errorf("update with %q: expected image validation error, got %v", src, err)
		}
	}
	if len(uploader.sources) != 0 {
		t.Errorf("nothing should reach the uploader, got %v", uploader.sources)
	}
}

func TestCatalogUpdateAndDelete(t *testing.T) {
	store := newMemStore()
	feed := &recordingFeed{}
	wash := store.addService(models.Service{NameEn: "Wash", Price: decimal.NewFromInt(1), IsActive: true})
	cs := NewCatalogService(store, nil, feed, discardLogger())

	off := false
	updated, err := cs.Update(context.Background(), wash.ID, &models.ServicePatch{IsActive: &off})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.IsActive {
		t.Errorf("expected service to be deactivated")
	}

	var verr *ValidationError
	if _, err := cs.Update(context.Background(), wash.ID, &models.ServicePatch{}); !errors.As(err, &verr) {
		t.Errorf("expected validation error for empty patch, got %v", err)
	}
	blank := ""
	if _, err := cs.Update(context.Background(), wash.ID, &models.ServicePatch{NameEn: &blank}); !errors.As(err, &verr) {
		t.Errorf("expected validation error for blank name, got %v", err)
	}
	if _, err := cs.Update(context.Background(), 999, &models.ServicePatch{IsActive: &off}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	if err := cs.Delete(context.Background(), wash.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cs.Delete(context.Background(), wash.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
	if last := feed.changes[len(feed.changes)-1]; last.Op != events.OpDelete {
		t.Errorf("expected delete change, got %+v", last)
	}
}

func TestSubscribe(t *testing.T) {
	repo := &memSubs{}
	ss := NewSubscriptionService(repo, discardLogger())
	admin := uuid.New()

	token := json.RawMessage(`{"endpoint":"https://fcm.googleapis.com/fcm/send/abc","keys":{"p256dh":"BNc","auth":"tBH"}}`)
	if _, err := ss.Subscribe(context.Background(), admin, token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	replacement := json.RawMessage(`{"endpoint":"https://updates.push.services.mozilla.com/wpush/v2/x","keys":{"p256dh":"BNd","auth":"tBI"}}`)
	if _, err := ss.Subscribe(context.Background(), admin, replacement); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.subs) != 1 || repo.subs[0].SubscriptionToken != string(replacement) {
		t.Errorf("expected the second subscription to replace the first, got %+v", repo.subs)
	}

	var verr *ValidationError
	for _, bad := range []string{``, `"nope"`, `{"endpoint":"http://insecure","keys":{"p256dh":"a","auth":"b"}}`, `{"endpoint":"https://x"}`} {
		if _, err := ss.Subscribe(context.Background(), admin, json.RawMessage(bad)); !errors.As(err, &verr) {
			t.Errorf("expected validation error for %q, got %v", bad, err)
		}
	}
	if _, err := ss.Subscribe(context.Background(), uuid.Nil, token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected unauthorized for nil user, got %v", err)
	}

	if err := ss.Unsubscribe(context.Background(), admin); err != nil || len(repo.deleted) != 1 {
		t.Errorf("expected unsubscribe to delete, got %v", err)
	}
}
