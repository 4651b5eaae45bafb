package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/attrmeta/pkg/api/auth"
	"github.com/marmos91/attrmeta/pkg/attrmeta"
	"github.com/marmos91/attrmeta/pkg/events"
	"github.com/marmos91/attrmeta/pkg/hooks"
	"github.com/marmos91/attrmeta/pkg/options/memory"
)

const (
	testJWTSecret   = "test-secret-0123456789-0123456789-abc"
	testAdminSecret = "admin-bootstrap-secret"
)

type apiFixture struct {
	server *httptest.Server
	store  *attrmeta.Store
	jwt    *auth.JWTService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	provider := memory.New()
	t.Cleanup(func() { _ = provider.Close() })

	store := attrmeta.New(provider, "")
	bus := events.NewBus()
	nonces := hooks.NewNonceService(testJWTSecret, time.Hour)
	hooks.NewSubscriber(store, hooks.RoleAuthorizer{}, nonces).Register(bus)

	config := APIConfig{
		JWT: JWTConfig{
			Secret:      testJWTSecret,
			AdminSecret: testAdminSecret,
		},
	}
	config.ApplyDefaults()

	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: testJWTSecret})
	require.NoError(t, err)

	router := NewRouter(config, jwtService, Deps{
		Store:    store,
		Bus:      bus,
		Provider: provider,
		Nonces:   nonces,
		Version:  "test",
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &apiFixture{server: srv, store: store, jwt: jwtService}
}

func (f *apiFixture) token(t *testing.T, role string) string {
	t.Helper()
	token, err := f.jwt.GenerateToken("tester", role)
	require.NoError(t, err)
	return token.AccessToken
}

func (f *apiFixture) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthEndpointsAreUnauthenticated(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])

	resp = f.request(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody[map[string]string](t, resp)
	assert.Equal(t, "ready", body["status"])
}

func TestTokenExchange(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.request(t, http.MethodPost, "/api/v1/auth/token", "",
		map[string]string{"secret": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = f.request(t, http.MethodPost, "/api/v1/auth/token", "",
		map[string]string{"secret": testAdminSecret})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := decodeBody[auth.Token](t, resp)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)

	// The issued token must work against a protected endpoint.
	resp = f.request(t, http.MethodGet, "/api/v1/attributes/1/meta", token.AccessToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.request(t, http.MethodGet, "/api/v1/attributes/1/meta", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	resp.Body.Close()

	resp = f.request(t, http.MethodGet, "/api/v1/attributes/1/meta", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestMutationsRequireAdminRole(t *testing.T) {
	f := newAPIFixture(t)
	viewer := f.token(t, auth.RoleViewer)

	resp := f.request(t, http.MethodGet, "/api/v1/attributes/1/meta", viewer, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.request(t, http.MethodPut, "/api/v1/attributes/1/meta/use_in_filter", viewer,
		map[string]any{"value": true})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = f.request(t, http.MethodDelete, "/api/v1/attributes/1/meta", viewer, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestMetaCRUD(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.token(t, auth.RoleAdmin)

	// Missing value is distinguishable from stored false.
	resp := f.request(t, http.MethodGet, "/api/v1/attributes/42/meta/use_in_filter", admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = f.request(t, http.MethodPut, "/api/v1/attributes/42/meta/use_in_filter", admin,
		map[string]any{"value": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.request(t, http.MethodGet, "/api/v1/attributes/42/meta/use_in_filter", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	single := decodeBody[map[string]any](t, resp)
	assert.Equal(t, true, single["value"])

	resp = f.request(t, http.MethodGet, "/api/v1/attributes/42/meta", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decodeBody[struct {
		AttributeID int64               `json:"attribute_id"`
		Meta        attrmeta.EntityMeta `json:"meta"`
	}](t, resp)
	assert.Equal(t, int64(42), all.AttributeID)
	assert.Equal(t, true, all.Meta["use_in_filter"])

	resp = f.request(t, http.MethodDelete, "/api/v1/attributes/42/meta/use_in_filter", admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = f.request(t, http.MethodGet, "/api/v1/attributes/42/meta/use_in_filter", admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestDeleteAllMeta(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.token(t, auth.RoleAdmin)

	ctx := context.Background()
	require.NoError(t, f.store.Update(ctx, 7, "use_in_filter", true))
	require.NoError(t, f.store.Update(ctx, 7, "display_type", "dropdown"))

	resp := f.request(t, http.MethodDelete, "/api/v1/attributes/7/meta", admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	assert.Empty(t, f.store.GetAll(ctx, 7))
}

func TestInvalidAttributeID(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.token(t, auth.RoleAdmin)

	for _, id := range []string{"abc", "0", "-5"} {
		resp := f.request(t, http.MethodGet, fmt.Sprintf("/api/v1/attributes/%s/meta", id), admin, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "id %q", id)
		resp.Body.Close()
	}
}

func TestFieldEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	viewer := f.token(t, auth.RoleViewer)

	require.NoError(t, f.store.Update(context.Background(), 3, "use_in_filter", true))

	resp := f.request(t, http.MethodGet, "/api/v1/attributes/3/field", viewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	field := decodeBody[struct {
		AttributeID int64  `json:"attribute_id"`
		Enabled     bool   `json:"enabled"`
		HTML        string `json:"html"`
		Nonce       string `json:"nonce"`
	}](t, resp)

	assert.Equal(t, int64(3), field.AttributeID)
	assert.True(t, field.Enabled)
	assert.Contains(t, field.HTML, `type="checkbox"`)
	assert.Contains(t, field.HTML, " checked")
	assert.NotEmpty(t, field.Nonce)
}

func TestLifecycleEvents(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.token(t, auth.RoleAdmin)
	ctx := context.Background()

	// Fetch a form token first, then submit an update carrying it.
	resp := f.request(t, http.MethodGet, "/api/v1/attributes/9/field", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	field := decodeBody[map[string]any](t, resp)
	nonce, _ := field["nonce"].(string)
	require.NotEmpty(t, nonce)

	resp = f.request(t, http.MethodPost, "/api/v1/attributes/9/lifecycle", admin,
		map[string]any{
			"event": "updated",
			"fields": map[string]string{
				"use_in_filter":   "1",
				"_attrmeta_nonce": nonce,
			},
		})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.True(t, f.store.Enabled(ctx, 9, "use_in_filter"))

	// Deleting through the lifecycle clears the whole bag.
	resp = f.request(t, http.MethodPost, "/api/v1/attributes/9/lifecycle", admin,
		map[string]any{"event": "deleted"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Empty(t, f.store.GetAll(ctx, 9))
}

func TestLifecycleRejectsBadNonce(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.token(t, auth.RoleAdmin)

	resp := f.request(t, http.MethodPost, "/api/v1/attributes/5/lifecycle", admin,
		map[string]any{
			"event": "updated",
			"fields": map[string]string{
				"use_in_filter":   "1",
				"_attrmeta_nonce": "forged",
			},
		})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	_, ok := f.store.Lookup(context.Background(), 5, "use_in_filter")
	assert.False(t, ok)
}

func TestLifecycleRejectsUnknownEvent(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.token(t, auth.RoleAdmin)

	resp := f.request(t, http.MethodPost, "/api/v1/attributes/5/lifecycle", admin,
		map[string]any{"event": "renamed"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestNewServerRejectsShortSecret(t *testing.T) {
	_, err := NewServer(APIConfig{
		JWT: JWTConfig{Secret: "too-short"},
	}, Deps{})
	require.Error(t, err)
}
