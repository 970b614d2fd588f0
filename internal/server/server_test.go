package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/talenthub/internal/config"
)

const (
	testJWTSecret     = "test-secret-at-least-16-chars!!"
	testAdminEmail    = "admin@talenthub.test"
	testAdminPassword = "admin-pair-password"
	testBaseURL       = "http://localhost:8080"
)

// newTestServer stands up the full stack on an in-memory database.
// Exercising real routes against the real wiring is what these tests are
// for; only the listener is skipped.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:            0,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			IdleTimeout:     5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			TrustedOrigins:  []string{"http://localhost:3000"},
		},
		Auth: config.AuthConfig{
			JWTSecret:     testJWTSecret,
			AdminEmail:    testAdminEmail,
			AdminPassword: testAdminPassword,
		},
		DBPath:  ":memory:",
		BaseURL: testBaseURL,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.db.Close() })

	return s
}

// doJSON sends a JSON request through the router and returns the recorder.
// token, when non-empty, goes into the Authorization header.
func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func registerUser(t *testing.T, s *Server, name, email, password string) {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "register %s: %s", email, rec.Body.String())
}

// loginUser returns the token and the user ID from a successful login.
func loginUser(t *testing.T, s *Server, email, password string) (token, userID string) {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, "login %s: %s", email, rec.Body.String())

	body := decodeBody(t, rec)
	token, _ = body["token"].(string)
	require.NotEmpty(t, token)
	if user, ok := body["user"].(map[string]any); ok {
		userID, _ = user["id"].(string)
	}
	return token, userID
}

func loginAdmin(t *testing.T, s *Server) string {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/login", "", map[string]string{
		"email": testAdminEmail, "password": testAdminPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "admin", body["role"])
	assert.NotContains(t, body, "user", "admin login carries no user object")
	return body["token"].(string)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	registerUser(t, s, "Jane", "jane@x.com", "secret1")

	// Same email again is a conflict, not a silent overwrite.
	rec := doJSON(t, s, http.MethodPost, "/register", "", map[string]string{
		"name": "Imposter", "email": "jane@x.com", "password": "other",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/login", "", map[string]string{
		"email": "jane@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "user", body["role"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "Jane", user["name"])
	assert.Equal(t, false, user["resumeUploaded"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")

	rec = doJSON(t, s, http.MethodPost, "/login", "", map[string]string{
		"email": "jane@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/register", "", map[string]string{
		"name": "Jane", "email": "jane@x.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	s := newTestServer(t)
	registerUser(t, s, "Jane", "jane@x.com", "old-password")

	rec := doJSON(t, s, http.MethodPost, "/forgot-password", "", map[string]string{
		"email": "jane@x.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(30), decodeBody(t, rec)["expiresIn"])

	// The code is delivered out of band; read it from the store the way an
	// operator would read it off the server log.
	stored, err := s.db.GetByEmail(context.Background(), "jane@x.com")
	require.NoError(t, err)
	require.Len(t, stored.ResetCode, 6)

	rec = doJSON(t, s, http.MethodPost, "/verify-code", "", map[string]string{
		"email": "jane@x.com", "code": "000000",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "wrong code must not verify")

	rec = doJSON(t, s, http.MethodPost, "/verify-code", "", map[string]string{
		"email": "jane@x.com", "code": stored.ResetCode,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/reset-password", "", map[string]string{
		"email": "jane@x.com", "password": "new-password",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/login", "", map[string]string{
		"email": "jane@x.com", "password": "old-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	loginUser(t, s, "jane@x.com", "new-password")
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/forgot-password", "", map[string]string{
		"email": "ghost@x.com",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// multipartUpload builds a multipart body with the given named files and
// posts it to /api/upload. A nil entry skips that field.
func multipartUpload(t *testing.T, s *Server, token string, resume, photo *filePart) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, fp := range []*filePart{resume, photo} {
		if fp == nil {
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+fp.field+`"; filename="`+fp.filename+`"`)
		h.Set("Content-Type", fp.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(fp.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

type filePart struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

// jpegData starts with the JPEG magic number so the stored base64 begins
// "/9j/" and the profile image comes back as a data URI.
var jpegData = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

func TestUploadAndProfile(t *testing.T) {
	s := newTestServer(t)
	registerUser(t, s, "Jane", "jane@x.com", "secret1")
	token, _ := loginUser(t, s, "jane@x.com", "secret1")

	// Fresh account: no resume, placeholder avatar.
	rec := doJSON(t, s, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decodeBody(t, rec)["user"].(map[string]any)
	assert.Equal(t, false, user["resumeUploaded"])
	assert.Equal(t, "/images/default-avatar.png", user["profileImage"])

	// Missing photo is rejected before anything is written.
	rec = multipartUpload(t, s, token,
		&filePart{"resume", "cv.txt", "text/plain", []byte("resume body")}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = multipartUpload(t, s, token,
		&filePart{"resume", "cv.txt", "text/plain", []byte("resume body")},
		&filePart{"photo", "me.jpg", "image/jpeg", jpegData})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user = decodeBody(t, rec)["user"].(map[string]any)
	assert.Equal(t, true, user["resumeUploaded"])
	assert.Contains(t, user["profileImage"], "data:image/jpeg;base64,")

	rec = doJSON(t, s, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user = decodeBody(t, rec)["user"].(map[string]any)
	assert.Equal(t, true, user["resumeUploaded"])
}

func TestGetUserByID(t *testing.T) {
	s := newTestServer(t)
	registerUser(t, s, "Jane", "jane@x.com", "secret1")
	registerUser(t, s, "Bob", "bob@x.com", "secret2")
	_, janeID := loginUser(t, s, "jane@x.com", "secret1")
	bobToken, _ := loginUser(t, s, "bob@x.com", "secret2")

	// Any authenticated user can read any account's public fields.
	rec := doJSON(t, s, http.MethodGet, "/api/users/"+janeID, bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decodeBody(t, rec)["user"].(map[string]any)
	assert.Equal(t, "jane@x.com", user["email"])

	rec = doJSON(t, s, http.MethodGet, "/api/users/does-not-exist", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthGates(t *testing.T) {
	s := newTestServer(t)
	registerUser(t, s, "Jane", "jane@x.com", "secret1")
	userToken, _ := loginUser(t, s, "jane@x.com", "secret1")

	// No token or a bad token never reaches a protected handler.
	for _, path := range []string{"/api/profile", "/admin/dashboard"} {
		rec := doJSON(t, s, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s without token", path)

		rec = doJSON(t, s, http.MethodGet, path, "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s with garbage token", path)
	}

	// A valid user token passes the first gate but fails the role check.
	rec := doJSON(t, s, http.MethodGet, "/admin/dashboard", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodDelete, "/admin/user/some-id", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	del := httptest.NewRecorder()
	s.Handler().ServeHTTP(del, req)
	assert.Equal(t, http.StatusForbidden, del.Code)
}

func TestAdminDashboardAndDelete(t *testing.T) {
	s := newTestServer(t)
	registerUser(t, s, "Jane", "jane@x.com", "secret1")
	registerUser(t, s, "Bob", "bob@x.com", "secret2")
	janeToken, janeID := loginUser(t, s, "jane@x.com", "secret1")

	rec := multipartUpload(t, s, janeToken,
		&filePart{"resume", "cv.txt", "text/plain", []byte("resume body")},
		&filePart{"photo", "me.jpg", "image/jpeg", jpegData})
	require.Equal(t, http.StatusOK, rec.Code)

	adminToken := loginAdmin(t, s)

	rec = doJSON(t, s, http.MethodGet, "/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decodeBody(t, rec)
	assert.Equal(t, float64(2), dash["totalUsers"])
	assert.Equal(t, float64(1), dash["resumesUploaded"])
	assert.Len(t, dash["users"].([]any), 2)

	rec = doJSON(t, s, http.MethodGet, "/admin/user/"+janeID, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decodeBody(t, rec)["user"].(map[string]any)
	assert.Equal(t, "jane@x.com", user["email"])

	rec = doJSON(t, s, http.MethodDelete, "/admin/user/"+janeID, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/admin/user/"+janeID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/admin/user/"+janeID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["totalUsers"])
}

func TestInvalidJSONBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
