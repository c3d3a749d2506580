package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dhkim-dev/markethub-backend/internal/config"
	"github.com/dhkim-dev/markethub-backend/internal/middleware"
	"github.com/dhkim-dev/markethub-backend/internal/models"
	"github.com/dhkim-dev/markethub-backend/internal/oauth"
	"github.com/dhkim-dev/markethub-backend/internal/repository"
	"github.com/dhkim-dev/markethub-backend/internal/services"
	"github.com/dhkim-dev/markethub-backend/internal/token"
	"github.com/gofiber/fiber/v2"
)

// memoryUserRepo backs handler round-trip tests without a database.
type memoryUserRepo struct {
	nextID uint
	users  []*models.User
}

func (m *memoryUserRepo) Create(user *models.User) error {
	for _, u := range m.users {
		if user.Username != nil && u.Username != nil && *u.Username == *user.Username {
			return repository.ErrDuplicate
		}
	}
	m.nextID++
	user.ID = m.nextID
	cp := *user
	m.users = append(m.users, &cp)
	return nil
}

func (m *memoryUserRepo) FindByID(id uint) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryUserRepo) FindByUsername(username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username != nil && *u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryUserRepo) FindByProviderID(provider, providerUserID string) (*models.User, error) {
	for _, u := range m.users {
		if u.Provider == provider && u.ProviderUserID != nil && *u.ProviderUserID == providerUserID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryUserRepo) UpdateFields(id uint, fields map[string]interface{}) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			for k, v := range fields {
				s, _ := v.(string)
				switch k {
				case "nickname":
					u.Nickname = s
				case "email":
					u.Email = &s
				case "location":
					u.Location = &s
				case "profile_image":
					u.ProfileImage = &s
				}
			}
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// fakeProvider stands in for an external identity provider.
type fakeProvider struct {
	info *oauth.UserInfo
	err  error
}

func (f *fakeProvider) Name() string                 { return "kakao" }
func (f *fakeProvider) LoginURL(state string) string { return "https://example.test/authorize" }
func (f *fakeProvider) Exchange(ctx context.Context, code string) (*oauth.UserInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

func newTestApp(provider oauth.Provider) *fiber.App {
	cfg := &config.Config{
		JWTSecret:       "handler-test-secret",
		JWTExpiry:       7 * 24 * time.Hour,
		OAuthSuccessURL: "/oauth/success",
		OAuthErrorURL:   "/oauth/error",
	}
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	svc := services.NewAuthService(&memoryUserRepo{}, issuer)
	providers := map[string]oauth.Provider{}
	if provider != nil {
		providers["kakao"] = provider
	}
	h := NewAuthHandler(svc, providers, cfg)

	app := fiber.New()
	auth := app.Group("/api/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Get("/:provider/callback", h.OAuthCallback)
	app.Get("/api/auth/me", middleware.Protected(cfg), h.Me)
	app.Put("/api/auth/profile", middleware.Protected(cfg), h.UpdateProfile)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body, bearer string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	var envelope map[string]interface{}
	if strings.Contains(resp.Header.Get("Content-Type"), "json") {
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp, envelope
}

func TestRegisterLoginMeScenario(t *testing.T) {
	app := newTestApp(nil)

	// Register alice.
	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/register",
		`{"username":"alice","password":"secret1","nickname":"Alice"}`, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register status = %d, want 200", resp.StatusCode)
	}
	data := body["data"].(map[string]interface{})
	if data["token"] == "" {
		t.Fatal("register returned no token")
	}

	// Wrong password: 401 with the generic message.
	resp, body = doJSON(t, app, http.MethodPost, "/api/auth/login",
		`{"username":"alice","password":"wrong"}`, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", resp.StatusCode)
	}
	wrongMsg := body["message"].(string)

	// Unknown user: same status, same message.
	resp, body = doJSON(t, app, http.MethodPost, "/api/auth/login",
		`{"username":"charlie","password":"secret1"}`, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unknown-user login status = %d, want 401", resp.StatusCode)
	}
	if got := body["message"].(string); got != wrongMsg {
		t.Errorf("login failure messages differ: %q vs %q", got, wrongMsg)
	}

	// Correct login.
	resp, body = doJSON(t, app, http.MethodPost, "/api/auth/login",
		`{"username":"alice","password":"secret1"}`, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	tok := body["data"].(map[string]interface{})["token"].(string)

	// /me with the fresh token.
	resp, body = doJSON(t, app, http.MethodGet, "/api/auth/me", "", tok)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d, want 200", resp.StatusCode)
	}
	user := body["data"].(map[string]interface{})
	if user["username"] != "alice" {
		t.Errorf("me username = %v, want alice", user["username"])
	}
	if user["nickname"] != "Alice" {
		t.Errorf("me nickname = %v, want Alice", user["nickname"])
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Error("password hash leaked in response")
	}
}

func TestRegisterDuplicateConflict(t *testing.T) {
	app := newTestApp(nil)

	body := `{"username":"alice","password":"secret1","nickname":"Alice"}`
	if resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", body, ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("first register status = %d", resp.StatusCode)
	}
	resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/register",
		`{"username":"alice","password":"other66","nickname":"Clone"}`, "")
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", resp.StatusCode)
	}
}

func TestRegisterValidationStatuses(t *testing.T) {
	app := newTestApp(nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing nickname", `{"username":"bob","password":"secret1"}`},
		{"weak password", `{"username":"bob","password":"12345","nickname":"Bob"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", tt.body, "")
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestUpdateProfileCoalesceOverHTTP(t *testing.T) {
	app := newTestApp(nil)

	_, body := doJSON(t, app, http.MethodPost, "/api/auth/register",
		`{"username":"alice","password":"secret1","nickname":"A","location":"Seoul"}`, "")
	tok := body["data"].(map[string]interface{})["token"].(string)

	resp, body := doJSON(t, app, http.MethodPut, "/api/auth/profile", `{"nickname":"X"}`, tok)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile update status = %d, want 200", resp.StatusCode)
	}
	user := body["data"].(map[string]interface{})
	if user["nickname"] != "X" {
		t.Errorf("nickname = %v, want X", user["nickname"])
	}
	if user["location"] != "Seoul" {
		t.Errorf("location = %v, want Seoul (untouched)", user["location"])
	}
}

func TestOAuthCallbackSuccessRedirect(t *testing.T) {
	app := newTestApp(&fakeProvider{info: &oauth.UserInfo{
		Provider:       "kakao",
		ProviderUserID: "12345",
		Nickname:       "홍길동",
	}})

	resp, _ := doJSON(t, app, http.MethodGet, "/api/auth/kakao/callback?code=good-code", "", "")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "/oauth/success?token=") {
		t.Errorf("Location = %q, want success redirect with token", loc)
	}
}

func TestOAuthCallbackFailureRedirects(t *testing.T) {
	tests := []struct {
		name     string
		provider oauth.Provider
		path     string
	}{
		{"missing code", &fakeProvider{}, "/api/auth/kakao/callback"},
		{"exchange failure", &fakeProvider{err: errors.New("upstream said no")}, "/api/auth/kakao/callback?code=bad"},
		{"unknown provider", nil, "/api/auth/naver/callback?code=x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(tt.provider)
			resp, _ := doJSON(t, app, http.MethodGet, tt.path, "", "")
			if resp.StatusCode != http.StatusFound {
				t.Fatalf("status = %d, want 302", resp.StatusCode)
			}
			loc := resp.Header.Get("Location")
			if !strings.HasPrefix(loc, "/oauth/error?message=") {
				t.Errorf("Location = %q, want error redirect with message", loc)
			}
		})
	}
}
