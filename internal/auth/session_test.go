package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/campushub/backend/types"
)

func TestSessionManagerIssueCookie(t *testing.T) {
	codec := NewTokenCodec([]byte("test-secret"), fixedClock(testEpoch))
	manager := NewSessionManager(codec, 24*time.Hour, true)

	cookie, err := manager.Issue(types.User{ID: 9, Role: types.RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if cookie.Name != CookieName {
		t.Errorf("name = %q, want %q", cookie.Name, CookieName)
	}
	if !cookie.HttpOnly {
		t.Error("cookie must be HttpOnly")
	}
	if !cookie.Secure {
		t.Error("cookie must be Secure when the manager is secure")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("samesite = %v, want strict", cookie.SameSite)
	}
	if cookie.MaxAge != 86400 {
		t.Errorf("max-age = %d, want 86400", cookie.MaxAge)
	}

	claims, err := codec.Verify(cookie.Value)
	if err != nil {
		t.Fatalf("verify issued cookie: %v", err)
	}
	id, err := claims.UserID()
	if err != nil || id != 9 {
		t.Errorf("subject = %d (%v), want 9", id, err)
	}
	if claims.Role != types.RoleAdmin {
		t.Errorf("role = %q, want admin", claims.Role)
	}
}

func TestSessionManagerInsecureOutsideProduction(t *testing.T) {
	codec := NewTokenCodec([]byte("test-secret"), fixedClock(testEpoch))
	manager := NewSessionManager(codec, time.Hour, false)

	cookie, err := manager.Issue(types.User{ID: 1, Role: types.RoleStudent})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if cookie.Secure {
		t.Error("cookie must not be Secure off production")
	}
}

func TestSessionManagerClearCookie(t *testing.T) {
	codec := NewTokenCodec([]byte("test-secret"), fixedClock(testEpoch))
	manager := NewSessionManager(codec, time.Hour, true)

	cookie := manager.Clear()
	if cookie.Name != CookieName {
		t.Errorf("name = %q, want %q", cookie.Name, CookieName)
	}
	if cookie.Value != "" {
		t.Errorf("value = %q, want empty", cookie.Value)
	}
	if cookie.MaxAge != -1 {
		t.Errorf("max-age = %d, want -1", cookie.MaxAge)
	}
	if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteStrictMode {
		t.Error("clearing cookie must keep the issued attributes")
	}
}
