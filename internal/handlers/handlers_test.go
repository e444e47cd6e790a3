package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault-backend/internal/dto"
	"vault-backend/internal/handlers"
	"vault-backend/internal/middleware"
	"vault-backend/internal/services"
	"vault-backend/internal/session"
	"vault-backend/internal/storage/memory"
)

// newRouter wires the full HTTP surface over the memory backend, mirroring
// cmd/api.
func newRouter(t *testing.T) *http.ServeMux {
	t.Helper()

	store := memory.New()
	sessions := session.NewMemoryManager(0)

	authService := services.NewAuthService(store, sessions)
	fileService := services.NewFileService(store, sessions, time.Second)

	authMiddleware := middleware.NewAuthMiddleware(sessions)
	authHandler := handlers.NewAuthHandler(authService)
	fileHandler := handlers.NewFileHandler(fileService, 10*1024*1024)
	pageHandler := handlers.NewPageHandler(authMiddleware, t.TempDir())

	router := http.NewServeMux()
	router.HandleFunc("GET /{$}", pageHandler.Index)
	router.Handle("GET /dashboard", authMiddleware.RequirePage(http.HandlerFunc(pageHandler.Dashboard)))
	router.HandleFunc("POST /register", authHandler.Register)
	router.HandleFunc("POST /login", authHandler.Login)
	router.HandleFunc("GET /logout", authHandler.Logout)
	router.HandleFunc("POST /upload", fileHandler.Upload)
	router.HandleFunc("GET /files", fileHandler.List)
	router.HandleFunc("GET /files/{id}", fileHandler.Download)

	return router
}

func postForm(router *http.ServeMux, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func get(router *http.ServeMux, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func registerAndLogin(t *testing.T, router *http.ServeMux, username, password string) *http.Cookie {
	t.Helper()

	rec := postForm(router, "/register", url.Values{"username": {username}, "password": {password}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)

	rec = postForm(router, "/login", url.Values{"username": {username}, "password": {password}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Result().Header.Get("Location"))

	return sessionCookie(t, rec)
}

func upload(router *http.ServeMux, cookie *http.Cookie, filename, mediaType string, data []byte) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", mediaType)
	part, err := writer.CreatePart(header)
	if err != nil {
		panic(err)
	}
	part.Write(data)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func listFiles(t *testing.T, router *http.ServeMux, cookie *http.Cookie) []dto.FileListItem {
	t.Helper()
	rec := get(router, "/files", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var items []dto.FileListItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	return items
}

func TestRegisterSetsSessionAndRedirects(t *testing.T) {
	router := newRouter(t)

	rec := postForm(router, "/register", url.Values{"username": {"alice"}, "password": {"pw1"}}, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Result().Header.Get("Location"))
	sessionCookie(t, rec)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	router := newRouter(t)

	rec := postForm(router, "/register", url.Values{"username": {"alice"}, "password": {"pw1"}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)

	rec = postForm(router, "/register", url.Values{"username": {"alice"}, "password": {"pw2"}}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Username already taken.", rec.Body.String())
}

func TestLoginInvalidCredentials(t *testing.T) {
	router := newRouter(t)

	postForm(router, "/register", url.Values{"username": {"alice"}, "password": {"pw1"}}, nil)

	rec := postForm(router, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Invalid credentials", rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		assert.NotEqual(t, middleware.SessionCookieName, c.Name)
	}
}

func TestUploadListDownloadRoundTrip(t *testing.T) {
	router := newRouter(t)
	cookie := registerAndLogin(t, router, "alice", "pw1")

	payload := []byte("hello")
	rec := upload(router, cookie, "notes.txt", "text/plain", payload)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	items := listFiles(t, router, cookie)
	require.Len(t, items, 1)
	assert.Equal(t, "notes.txt", items[0].Name)
	assert.Equal(t, "text/plain", items[0].Type)
	assert.Equal(t, int64(5), items[0].Size)
	assert.Equal(t, "alice", items[0].UploadedBy)
	assert.False(t, items[0].UploadedAt.IsZero())

	rec = get(router, "/files/"+items[0].ID.String(), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, rec.Body.Bytes())
	assert.Equal(t, "text/plain", rec.Result().Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="notes.txt"`, rec.Result().Header.Get("Content-Disposition"))
}

// Arbitrary bytes, including NULs and an empty payload, must survive intact.
func TestUploadDownloadBinary(t *testing.T) {
	router := newRouter(t)
	cookie := registerAndLogin(t, router, "alice", "pw1")

	payloads := map[string][]byte{
		"blob.bin":  {0x00, 0xff, 0x10, 0x00, 0x7f},
		"empty.bin": {},
	}
	for name, payload := range payloads {
		rec := upload(router, cookie, name, "application/octet-stream", payload)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	items := listFiles(t, router, cookie)
	require.Len(t, items, 2)
	for _, item := range items {
		rec := get(router, "/files/"+item.ID.String(), cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, payloads[item.Name], rec.Body.Bytes())
		assert.Equal(t, int64(len(payloads[item.Name])), item.Size)
	}
}

func TestUploadWithoutSession(t *testing.T) {
	router := newRouter(t)

	rec := upload(router, nil, "notes.txt", "text/plain", []byte("hello"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Not authenticated"}`, rec.Body.String())

	rec = get(router, "/files", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOwnerIsolation(t *testing.T) {
	router := newRouter(t)
	alice := registerAndLogin(t, router, "alice", "pw1")
	bob := registerAndLogin(t, router, "bob", "pw2")

	rec := upload(router, alice, "secret.txt", "text/plain", []byte("private"))
	require.Equal(t, http.StatusOK, rec.Code)

	items := listFiles(t, router, alice)
	require.Len(t, items, 1)

	// Bob sees nothing, and Alice's file id is a plain 404 for him.
	assert.Empty(t, listFiles(t, router, bob))

	rec = get(router, "/files/"+items[0].ID.String(), bob)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "File not found", rec.Body.String())
}

func TestDownloadUnknownID(t *testing.T) {
	router := newRouter(t)
	cookie := registerAndLogin(t, router, "alice", "pw1")

	rec := get(router, "/files/8c2f9a4e-0000-0000-0000-000000000000", cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(router, "/files/not-a-uuid", cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	router := newRouter(t)
	cookie := registerAndLogin(t, router, "alice", "pw1")

	rec := get(router, "/logout", cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Result().Header.Get("Location"))

	// The old token no longer authenticates anything.
	rec = get(router, "/files", cookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Logging out again is harmless.
	rec = get(router, "/logout", cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestIndexRedirects(t *testing.T) {
	router := newRouter(t)

	rec := get(router, "/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Result().Header.Get("Location"))

	cookie := registerAndLogin(t, router, "alice", "pw1")
	rec = get(router, "/", cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Result().Header.Get("Location"))
}

func TestDashboardRequiresSession(t *testing.T) {
	router := newRouter(t)

	rec := get(router, "/dashboard", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Result().Header.Get("Location"))
}
