package contacts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	contacts "github.com/goliatone/go-contacts"
	"github.com/goliatone/go-contacts/ratelimit"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app   *fiber.App
	codec contacts.VerificationCodec
}

func setupTestServer(t *testing.T, limitMax int) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	cfg := newMockConfig()

	repo := contacts.NewRepositoryManager(db)
	provider := contacts.NewUserProvider(repo.Users())
	auther := contacts.NewAuthenticator(provider, cfg)
	codec := contacts.NewVerificationCodec([]byte(cfg.GetVerificationKey()), nil)

	ctrl := contacts.NewHTTPController(
		contacts.WithControllerRepo(repo),
		contacts.WithControllerAuther(auther),
		contacts.WithControllerCodec(codec),
		contacts.WithControllerMailer(noopMailer{}),
		contacts.WithControllerUploader(fakeUploader{}),
		contacts.WithVerificationMaxAge(cfg.GetVerificationMaxAge()),
	)

	app := contacts.NewServer(contacts.ServerOptions{
		Config:      cfg,
		Controller:  ctrl,
		Validator:   contacts.AccessTokenValidator(auther.TokenService()),
		Limiter:     ratelimit.NewMemoryStore(),
		LimitMax:    limitMax,
		LimitWindow: time.Minute,
	})

	return &testEnv{app: app, codec: codec}
}

type noopMailer struct{}

func (noopMailer) SendVerificationEmail(ctx context.Context, email, token string) error { return nil }

type fakeUploader struct{}

func (fakeUploader) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	return "https://cdn.example.com/" + key, nil
}

func (e *testEnv) request(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return res
}

func decodeBody(t *testing.T, res *http.Response) map[string]any {
	t.Helper()
	defer res.Body.Close()

	out := map[string]any{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return out
}

func TestRegistrationLoginAndContactsFlow(t *testing.T) {
	env := setupTestServer(t, 100)

	res := env.request(t, http.MethodPost, "/register", map[string]string{
		"email":    "Person@Example.com",
		"password": "correct horse battery staple",
	}, "")
	require.Equal(t, fiber.StatusCreated, res.StatusCode)
	body := decodeBody(t, res)
	assert.Equal(t, "person@example.com", body["email"])
	assert.Equal(t, false, body["confirmed"])

	t.Run("duplicate email conflicts", func(t *testing.T) {
		res := env.request(t, http.MethodPost, "/register", map[string]string{
			"email":    "PERSON@example.com",
			"password": "different password",
		}, "")
		require.Equal(t, fiber.StatusConflict, res.StatusCode)
		body := decodeBody(t, res)
		assert.Equal(t, "DUPLICATE_EMAIL", body["code"])
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		res := env.request(t, http.MethodPost, "/login", map[string]string{
			"email":    "person@example.com",
			"password": "not the password",
		}, "")
		require.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	})

	res = env.request(t, http.MethodPost, "/login", map[string]string{
		"email":    "person@example.com",
		"password": "correct horse battery staple",
	}, "")
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	tokens := decodeBody(t, res)
	access, _ := tokens["access_token"].(string)
	refresh, _ := tokens["refresh_token"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	t.Run("contacts require a token", func(t *testing.T) {
		res := env.request(t, http.MethodGet, "/contacts", nil, "")
		require.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

		res = env.request(t, http.MethodGet, "/contacts", nil, "garbage-token")
		require.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

		// A refresh token is not an access token.
		res = env.request(t, http.MethodGet, "/contacts", nil, refresh)
		require.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	})

	res = env.request(t, http.MethodPost, "/contacts", map[string]string{
		"name":  "Ada",
		"phone": "555-1111",
	}, access)
	require.Equal(t, fiber.StatusCreated, res.StatusCode)
	created := decodeBody(t, res)
	contactID, _ := created["id"].(string)
	require.NotEmpty(t, contactID)
	assert.Equal(t, "555-1111", created["phone"])

	res = env.request(t, http.MethodGet, "/contacts", nil, access)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	listing := decodeBody(t, res)
	records, _ := listing["contacts"].([]any)
	require.Len(t, records, 1)

	t.Run("refresh mints a new pair", func(t *testing.T) {
		res := env.request(t, http.MethodPost, "/refresh", map[string]string{
			"refresh_token": refresh,
		}, "")
		require.Equal(t, fiber.StatusOK, res.StatusCode)
		pair := decodeBody(t, res)
		assert.NotEmpty(t, pair["access_token"])
	})

	res = env.request(t, http.MethodDelete, "/contacts/"+contactID, nil, access)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	t.Run("deleting again is not found", func(t *testing.T) {
		res := env.request(t, http.MethodDelete, "/contacts/"+contactID, nil, access)
		require.Equal(t, fiber.StatusNotFound, res.StatusCode)
	})
}

func TestOwnershipIsolationOverHTTP(t *testing.T) {
	env := setupTestServer(t, 100)

	tokenFor := func(email string) string {
		res := env.request(t, http.MethodPost, "/register", map[string]string{
			"email":    email,
			"password": "a shared test password",
		}, "")
		require.Equal(t, fiber.StatusCreated, res.StatusCode)
		res.Body.Close()

		res = env.request(t, http.MethodPost, "/login", map[string]string{
			"email":    email,
			"password": "a shared test password",
		}, "")
		require.Equal(t, fiber.StatusOK, res.StatusCode)
		body := decodeBody(t, res)
		token, _ := body["access_token"].(string)
		require.NotEmpty(t, token)
		return token
	}

	alice := tokenFor("alice@example.com")
	bob := tokenFor("bob@example.com")

	res := env.request(t, http.MethodPost, "/contacts", map[string]string{
		"name":  "Ada",
		"phone": "555-1111",
	}, alice)
	require.Equal(t, fiber.StatusCreated, res.StatusCode)
	created := decodeBody(t, res)
	contactID, _ := created["id"].(string)

	res = env.request(t, http.MethodGet, "/contacts", nil, bob)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	listing := decodeBody(t, res)
	records, _ := listing["contacts"].([]any)
	assert.Empty(t, records)

	res = env.request(t, http.MethodDelete, "/contacts/"+contactID, nil, bob)
	require.Equal(t, fiber.StatusNotFound, res.StatusCode)

	res = env.request(t, http.MethodGet, "/contacts", nil, alice)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	listing = decodeBody(t, res)
	records, _ = listing["contacts"].([]any)
	assert.Len(t, records, 1)
}

func TestConfirmationOverHTTP(t *testing.T) {
	env := setupTestServer(t, 100)

	res := env.request(t, http.MethodPost, "/register", map[string]string{
		"email":    "person@example.com",
		"password": "correct horse battery staple",
	}, "")
	require.Equal(t, fiber.StatusCreated, res.StatusCode)
	res.Body.Close()

	token, err := env.codec.Issue("person@example.com")
	require.NoError(t, err)

	res = env.request(t, http.MethodGet, "/confirm/"+token, nil, "")
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	body := decodeBody(t, res)
	assert.Equal(t, true, body["confirmed"])

	t.Run("confirming twice succeeds", func(t *testing.T) {
		res := env.request(t, http.MethodGet, "/confirm/"+token, nil, "")
		require.Equal(t, fiber.StatusOK, res.StatusCode)
	})

	t.Run("tampered token rejected", func(t *testing.T) {
		res := env.request(t, http.MethodGet, "/confirm/"+token+"x", nil, "")
		require.Equal(t, fiber.StatusBadRequest, res.StatusCode)
		body := decodeBody(t, res)
		assert.Equal(t, "INVALID_OR_EXPIRED_TOKEN", body["code"])
	})
}

func TestMutationRateLimit(t *testing.T) {
	env := setupTestServer(t, 3)

	var last int
	for i := 0; i < 4; i++ {
		res := env.request(t, http.MethodPost, "/login", map[string]string{
			"email":    "nobody@example.com",
			"password": "whatever",
		}, "")
		last = res.StatusCode
		res.Body.Close()
	}

	require.Equal(t, fiber.StatusTooManyRequests, last)
}

func TestAvatarUploadOverHTTP(t *testing.T) {
	env := setupTestServer(t, 100)

	res := env.request(t, http.MethodPost, "/register", map[string]string{
		"email":    "person@example.com",
		"password": "correct horse battery staple",
	}, "")
	require.Equal(t, fiber.StatusCreated, res.StatusCode)
	res.Body.Close()

	res = env.request(t, http.MethodPost, "/login", map[string]string{
		"email":    "person@example.com",
		"password": "correct horse battery staple",
	}, "")
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	tokens := decodeBody(t, res)
	access, _ := tokens["access_token"].(string)

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("file", "me.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\nfakeimagedata"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload_avatar", buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+access)

	uploadRes, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, uploadRes.StatusCode)

	body := decodeBody(t, uploadRes)
	url, _ := body["avatar_url"].(string)
	assert.True(t, len(url) > 0)
	assert.Contains(t, url, "https://cdn.example.com/")

	t.Run("upload requires authentication", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload_avatar", bytes.NewReader([]byte{}))
		res, err := env.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	})
}
