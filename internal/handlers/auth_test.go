package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/campushub/backend/internal/auth"
	"github.com/campushub/backend/internal/services"
	"github.com/campushub/backend/internal/store"
	"github.com/campushub/backend/types"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

type memoryUserRepo struct {
	mu     sync.Mutex
	users  map[int]types.User
	nextID int
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[int]types.User{}, nextID: 1}
}

func (m *memoryUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memoryUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicateEmail
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryUserRepo) UpdatePassword(_ context.Context, id int, newHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.PasswordHash = newHash
	m.users[id] = user
	return nil
}

func (m *memoryUserRepo) SoftDelete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.IsDeleted = true
	m.users[id] = user
	return nil
}

func (m *memoryUserRepo) List(_ context.Context) ([]types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []types.User
	for _, user := range m.users {
		if !user.IsDeleted {
			users = append(users, user)
		}
	}
	return users, nil
}

type captureNotifier struct {
	mu     sync.Mutex
	bodies []string
}

func (n *captureNotifier) Send(_ context.Context, _, _, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bodies = append(n.bodies, body)
	return nil
}

type testApp struct {
	router   *chi.Mux
	codec    *auth.TokenCodec
	notifier *captureNotifier
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	repo := newMemoryUserRepo()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	codec := auth.NewTokenCodec([]byte("handler-test-secret"), nil)
	sessions := auth.NewSessionManager(codec, 24*time.Hour, false)
	gate := auth.NewAuthenticator(codec, repo)
	notifier := &captureNotifier{}

	users := services.NewUserService(repo, hasher)
	passwords := services.NewPasswordService(repo, hasher, codec, notifier, time.Hour, "http://app.local")

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		AuthRouter(r, NewAuthHandler(users, passwords, sessions), gate)
		UserRouter(r, NewUserHandler(users), gate)
	})

	return &testApp{router: router, codec: codec, notifier: notifier}
}

func (app *testApp) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.CookieName && cookie.Value != "" {
			return cookie
		}
	}
	return nil
}

func TestRegisterLoginAndRoleGating(t *testing.T) {
	app := newTestApp(t)

	// Register alice as a student.
	rec := app.do(t, http.MethodPost, "/api/register", map[string]string{
		"name":             "Alice",
		"email":            "alice@x.com",
		"password":         "pw1",
		"password_confirm": "pw1",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201: %s", rec.Code, rec.Body)
	}
	if sessionCookie(t, rec) == nil {
		t.Fatal("register must set the session cookie")
	}

	// The same email, different case, must conflict.
	rec = app.do(t, http.MethodPost, "/api/register", map[string]string{
		"name":             "Mallory",
		"email":            "ALICE@X.COM",
		"password":         "pw9",
		"password_confirm": "pw9",
	}, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", rec.Code)
	}

	// Wrong password: 401 and no cookie.
	rec = app.do(t, http.MethodPost, "/api/login", map[string]string{
		"email":    "alice@x.com",
		"password": "wrong",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", rec.Code)
	}
	if sessionCookie(t, rec) != nil {
		t.Error("bad login must not set a cookie")
	}

	// Correct login: cookie decodes to alice's id and role.
	rec = app.do(t, http.MethodPost, "/api/login", map[string]string{
		"email":    "alice@x.com",
		"password": "pw1",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200: %s", rec.Code, rec.Body)
	}
	student := sessionCookie(t, rec)
	if student == nil {
		t.Fatal("login must set the session cookie")
	}
	claims, err := app.codec.Verify(student.Value)
	if err != nil {
		t.Fatalf("verify session cookie: %v", err)
	}
	if claims.Role != types.RoleStudent {
		t.Errorf("cookie role = %q, want student", claims.Role)
	}

	// Admin-only route: student 403, no cookie 401, admin 200.
	if rec = app.do(t, http.MethodGet, "/api/users", nil, student); rec.Code != http.StatusForbidden {
		t.Errorf("student on admin route = %d, want 403", rec.Code)
	}
	if rec = app.do(t, http.MethodGet, "/api/users", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("no cookie on admin route = %d, want 401", rec.Code)
	}

	rec = app.do(t, http.MethodPost, "/api/register", map[string]string{
		"name":             "Root",
		"email":            "root@x.com",
		"password":         "rootpw",
		"password_confirm": "rootpw",
		"role":             "admin",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin register status = %d", rec.Code)
	}
	admin := sessionCookie(t, rec)
	if rec = app.do(t, http.MethodGet, "/api/users", nil, admin); rec.Code != http.StatusOK {
		t.Errorf("admin on admin route = %d, want 200: %s", rec.Code, rec.Body)
	}

	// A user listing must never leak password hashes.
	if strings.Contains(rec.Body.String(), "password") {
		t.Errorf("user listing leaks password material: %s", rec.Body)
	}

	// Change password with the wrong current secret: 401, secret unchanged.
	rec = app.do(t, http.MethodPost, "/api/change-password", map[string]string{
		"current_password": "not-pw1",
		"new_password":     "pw2",
		"confirm_password": "pw2",
	}, student)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("change with wrong current = %d, want 401", rec.Code)
	}
	rec = app.do(t, http.MethodPost, "/api/login", map[string]string{
		"email":    "alice@x.com",
		"password": "pw1",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("old password must still log in, got %d", rec.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/register", map[string]string{
		"name":             "Alice",
		"email":            "alice@x.com",
		"password":         "pw1",
		"password_confirm": "pw1",
	}, nil)
	cookie := sessionCookie(t, rec)

	rec = app.do(t, http.MethodPost, "/api/logout", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d, want 200", rec.Code)
	}

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			cleared = c
		}
	}
	if cleared == nil {
		t.Fatal("logout must send a clearing cookie")
	}
	if cleared.Value != "" || cleared.MaxAge != -1 {
		t.Errorf("clearing cookie = value %q max-age %d, want empty and -1", cleared.Value, cleared.MaxAge)
	}

	// Logout without a session is unauthenticated.
	if rec = app.do(t, http.MethodPost, "/api/logout", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("logout without session = %d, want 401", rec.Code)
	}
}

func TestResetRequestResponsesAreIndistinguishable(t *testing.T) {
	app := newTestApp(t)

	app.do(t, http.MethodPost, "/api/register", map[string]string{
		"name":             "Alice",
		"email":            "alice@x.com",
		"password":         "pw1",
		"password_confirm": "pw1",
	}, nil)

	known := app.do(t, http.MethodPost, "/api/reset-password-request", map[string]string{"email": "alice@x.com"}, nil)
	unknown := app.do(t, http.MethodPost, "/api/reset-password-request", map[string]string{"email": "nobody@x.com"}, nil)

	if known.Code != http.StatusOK || unknown.Code != http.StatusOK {
		t.Fatalf("statuses = %d/%d, want 200/200", known.Code, unknown.Code)
	}
	if known.Body.String() != unknown.Body.String() {
		t.Errorf("responses differ:\nknown:   %s\nunknown: %s", known.Body, unknown.Body)
	}
}

func TestResetPasswordFlow(t *testing.T) {
	app := newTestApp(t)

	app.do(t, http.MethodPost, "/api/register", map[string]string{
		"name":             "Alice",
		"email":            "alice@x.com",
		"password":         "pw1",
		"password_confirm": "pw1",
	}, nil)

	rec := app.do(t, http.MethodPost, "/api/reset-password-request", map[string]string{"email": "alice@x.com"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset request status = %d", rec.Code)
	}
	if len(app.notifier.bodies) != 1 {
		t.Fatalf("notifications = %d, want 1", len(app.notifier.bodies))
	}

	// Pull the token out of the emailed link.
	body := app.notifier.bodies[0]
	marker := "/reset-password/"
	idx := strings.Index(body, marker)
	if idx < 0 {
		t.Fatalf("no reset link in %q", body)
	}
	token := body[idx+len(marker):]
	if cut := strings.IndexAny(token, " \n"); cut >= 0 {
		token = token[:cut]
	}

	rec = app.do(t, http.MethodPost, "/api/reset-password/"+token, map[string]string{
		"new_password":     "pw2",
		"confirm_password": "different",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("mismatched reset = %d, want 400", rec.Code)
	}

	rec = app.do(t, http.MethodPost, "/api/reset-password/"+token, map[string]string{
		"new_password":     "pw2",
		"confirm_password": "pw2",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d: %s", rec.Code, rec.Body)
	}

	rec = app.do(t, http.MethodPost, "/api/login", map[string]string{
		"email":    "alice@x.com",
		"password": "pw2",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("login with reset password = %d, want 200", rec.Code)
	}

	rec = app.do(t, http.MethodPost, "/api/reset-password/garbage-token", map[string]string{
		"new_password":     "pw3",
		"confirm_password": "pw3",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid token reset = %d, want 400", rec.Code)
	}
}

func TestProfileRoutes(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/register", map[string]string{
		"name":             "Alice",
		"email":            "alice@x.com",
		"password":         "pw1",
		"password_confirm": "pw1",
	}, nil)
	cookie := sessionCookie(t, rec)

	rec = app.do(t, http.MethodGet, "/api/profile", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile status = %d", rec.Code)
	}
	var profile types.User
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.Email != "alice@x.com" {
		t.Errorf("profile email = %q", profile.Email)
	}

	bio := "I teach Go."
	rec = app.do(t, http.MethodPut, "/api/profile", map[string]any{"bio": bio}, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile update status = %d: %s", rec.Code, rec.Body)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode updated profile: %v", err)
	}
	if profile.Bio != bio {
		t.Errorf("bio = %q, want %q", profile.Bio, bio)
	}

	if rec = app.do(t, http.MethodGet, "/api/profile", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("profile without session = %d, want 401", rec.Code)
	}
}
