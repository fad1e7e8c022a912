package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMemoryStoreExpiresRecords(t *testing.T) {
	store := NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	if err := store.Save(ctx, "token", SessionRecord{UserID: "u1", ExpiresAt: now.Add(time.Minute)}); err != nil {
		t.Fatalf("save: %v", err)
	}

	record, ok, err := store.Get(ctx, "token")
	if err != nil || !ok || record.UserID != "u1" {
		t.Fatalf("get = %+v ok=%v err=%v", record, ok, err)
	}

	now = now.Add(time.Minute)
	if _, ok, _ := store.Get(ctx, "token"); ok {
		t.Fatal("record should expire at ExpiresAt")
	}
	if len(store.sessions) != 0 {
		t.Fatal("expired record should be removed on read")
	}
}

func TestMemoryStorePruneExpired(t *testing.T) {
	store := NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	_ = store.Save(ctx, "old", SessionRecord{UserID: "u1", ExpiresAt: now.Add(-time.Second)})
	_ = store.Save(ctx, "live", SessionRecord{UserID: "u2", ExpiresAt: now.Add(time.Hour)})

	store.pruneExpired()

	if _, ok := store.sessions["old"]; ok {
		t.Fatal("expired session should be pruned")
	}
	if _, ok := store.sessions["live"]; !ok {
		t.Fatal("live session should be kept")
	}
}

func TestSessionManagerRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	manager := NewSessionManager(store, 2*time.Hour, true)

	rec := httptest.NewRecorder()
	if err := manager.Create(context.Background(), rec, "user-7"); err != nil {
		t.Fatalf("create: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != sessionCookieName || !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie attributes %+v", cookie)
	}
	if cookie.MaxAge != int((2 * time.Hour).Seconds()) {
		t.Fatalf("max age = %d", cookie.MaxAge)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	userID, ok, err := manager.UserID(httptest.NewRecorder(), req)
	if err != nil || !ok || userID != "user-7" {
		t.Fatalf("UserID = %q ok=%v err=%v", userID, ok, err)
	}
}

func TestSessionManagerTokensAreUnique(t *testing.T) {
	manager := NewSessionManager(NewMemoryStore(), time.Hour, false)

	first := httptest.NewRecorder()
	second := httptest.NewRecorder()
	_ = manager.Create(context.Background(), first, "user-1")
	_ = manager.Create(context.Background(), second, "user-1")

	if first.Result().Cookies()[0].Value == second.Result().Cookies()[0].Value {
		t.Fatal("each login should get a fresh token")
	}
}

func TestSessionManagerClearsUnknownCookie(t *testing.T) {
	manager := NewSessionManager(NewMemoryStore(), time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "forged"})
	rec := httptest.NewRecorder()

	_, ok, err := manager.UserID(rec, req)
	if err != nil || ok {
		t.Fatalf("forged token resolved: ok=%v err=%v", ok, err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Fatalf("expected stale cookie to be cleared, got %+v", cookies)
	}
}

func TestSessionManagerNoCookie(t *testing.T) {
	manager := NewSessionManager(NewMemoryStore(), time.Hour, false)

	_, ok, err := manager.UserID(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil || ok {
		t.Fatalf("expected anonymous request, ok=%v err=%v", ok, err)
	}
}
