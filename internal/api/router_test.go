package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/isdelr/storefront-be/internal/auth"
	"github.com/isdelr/storefront-be/internal/models"
	"github.com/isdelr/storefront-be/internal/repository"
	"github.com/isdelr/storefront-be/internal/repository/sqlitestore"
	"github.com/isdelr/storefront-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	handler http.Handler
	stores  repository.Stores
	hasher  *auth.Hasher
}

func newTestApp(t *testing.T) testApp {
	t.Helper()

	db, err := sql.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlitestore.Migrate(context.Background(), db))
	stores := sqlitestore.New(db)

	hasher, err := auth.NewHasher(auth.MinBcryptCost)
	require.NoError(t, err)
	tokens, err := auth.NewTokenIssuer("router-test-secret")
	require.NoError(t, err)

	events := services.NewEventService(stores.Events, nil)
	handler := NewRouter(Dependencies{
		Verifier:       tokens,
		AuthService:    services.NewAuthService(stores.Users, hasher, tokens, events),
		ProductService: services.NewProductService(stores.Products, events),
		PostService:    services.NewPostService(stores.Posts, nil, events),
		EventService:   events,
		Ping:           stores.Ping,
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	return testApp{handler: handler, stores: stores, hasher: hasher}
}

func (a testApp) do(t *testing.T, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a testApp) login(t *testing.T, email, password string) (string, *http.Cookie) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/login", `{"email":"`+email+`","password":"`+password+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return body.Token, c
		}
	}
	t.Fatal("login did not set the token cookie")
	return "", nil
}

func (a testApp) createAdmin(t *testing.T, email, password string) {
	t.Helper()
	hash, err := a.hasher.Hash(context.Background(), password)
	require.NoError(t, err)
	_, err = a.stores.Users.Insert(context.Background(), models.User{
		Name: "Admin", Email: email, PasswordHash: hash, Role: models.RoleAdmin,
	})
	require.NoError(t, err)
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestRegisteredUserCannotReachAdmin(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/register",
		`{"name":"Ana","email":"ana@x.com","password":"pw123","password_confirmation":"pw123"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var registered struct {
		User     map[string]any `json:"user"`
		Redirect string         `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	assert.Equal(t, "/login", registered.Redirect)
	assert.Equal(t, "user", registered.User["role"])
	assert.NotContains(t, rec.Body.String(), "pw123")
	assert.NotContains(t, rec.Body.String(), "$2a$")

	token, cookie := app.login(t, "ana@x.com", "pw123")
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, token, cookie.Value)

	rec = app.do(t, http.MethodGet, "/admin", "", bearer(token))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, auth.MsgInsufficientPrivilege, errorOf(t, rec))

	rec = app.do(t, http.MethodGet, "/me", "", bearer(token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"ana@x.com"`)
}

func TestAdminRoutes(t *testing.T) {
	app := newTestApp(t)
	app.createAdmin(t, "root@x.com", "secret")

	rec := app.do(t, http.MethodPost, "/login", `{"email":"root@x.com","password":"secret"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redirect":"/admin"`)
	_, cookie := app.login(t, "root@x.com", "secret")

	withCookie := http.Header{"Cookie": []string{cookie.Name + "=" + cookie.Value}}

	rec = app.do(t, http.MethodPost, "/admin/products",
		`{"image":"/w.png","title":"Widget","description":"d","price":3,"features":["x"]}`, withCookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Widget"`)

	rec = app.do(t, http.MethodGet, "/admin", "", withCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"products":1`)
	assert.Contains(t, rec.Body.String(), `"role":"admin"`)

	rec = app.do(t, http.MethodGet, "/admin/events?limit=5", "", withCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "product.create")
}

func TestProtectedRouteRejections(t *testing.T) {
	app := newTestApp(t)
	app.createAdmin(t, "root@x.com", "secret")
	adminToken, _ := app.login(t, "root@x.com", "secret")

	tests := []struct {
		name   string
		header http.Header
		want   string
	}{
		{"no credential", nil, auth.MsgNoCredential},
		{"garbage token", bearer("not-a-token"), auth.MsgInvalidCredential},
		{"tampered token", bearer(adminToken + "x"), auth.MsgInvalidCredential},
		{"malformed header ignores cookie", http.Header{
			"Authorization": []string{"Basic abc"},
			"Cookie":        []string{auth.CookieName + "=" + adminToken},
		}, auth.MsgInvalidCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, http.MethodGet, "/admin", "", tt.header)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, tt.want, errorOf(t, rec))
		})
	}
}

func TestLoginFailuresShareOneMessage(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodPost, "/register",
		`{"name":"Ana","email":"ana@x.com","password":"pw123","password_confirmation":"pw123"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	wrong := app.do(t, http.MethodPost, "/login", `{"email":"ana@x.com","password":"bad"}`, nil)
	ghost := app.do(t, http.MethodPost, "/login", `{"email":"ghost@x.com","password":"bad"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, ghost.Code)
	assert.Equal(t, errorOf(t, wrong), errorOf(t, ghost))
	assert.Empty(t, wrong.Result().Cookies())
}

func TestRegisterErrors(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/register",
		`{"name":"Ana","email":"ana@x.com","password":"pw1","password_confirmation":"pw2"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, err := app.stores.Users.FindByEmail(context.Background(), "ana@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	rec = app.do(t, http.MethodPost, "/register",
		`{"name":"Ana","email":"A@x.com","password":"pw1","password_confirmation":"pw1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.do(t, http.MethodPost, "/register",
		`{"name":"Ana","email":"a@x.com","password":"pw1","password_confirmation":"pw1"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, services.MsgEmailInUse, errorOf(t, rec))

	rec = app.do(t, http.MethodPost, "/register", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterFormRedirectsToLogin(t *testing.T) {
	app := newTestApp(t)

	form := url.Values{
		"name":                  {"Ana"},
		"email":                 {"ana@x.com"},
		"password":              {"pw123"},
		"password_confirmation": {"pw123"},
	}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestLogoutClearsCookie(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/logout", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestPublicRoutesAndHealth(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/posts?category=news", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/posts/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodGet, "/products/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
