package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type corsResult struct {
	rec    *httptest.ResponseRecorder
	called bool
}

func serveCORS(policy CORSPolicy, method, origin string, preflight bool) corsResult {
	var res corsResult
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res.called = true
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(method, "/chat", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	res.rec = httptest.NewRecorder()
	CORS(policy)(next).ServeHTTP(res.rec, req)
	return res
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	res := serveCORS(CORSPolicy{Origins: []string{"https://fortis-steel.ru/"}}, http.MethodPost, "https://fortis-steel.ru", false)

	assert.True(t, res.called)
	assert.Equal(t, http.StatusOK, res.rec.Code)
	assert.Equal(t, "https://fortis-steel.ru", res.rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", res.rec.Header().Get("Vary"))
}

func TestCORSDeniesUnknownOrigin(t *testing.T) {
	policy := CORSPolicy{Origins: []string{"https://fortis-steel.ru"}}

	res := serveCORS(policy, http.MethodPost, "https://unknown.example", false)
	assert.True(t, res.called)
	assert.Empty(t, res.rec.Header().Get("Access-Control-Allow-Origin"))

	res = serveCORS(policy, http.MethodOptions, "https://unknown.example", true)
	assert.False(t, res.called)
	assert.Equal(t, http.StatusForbidden, res.rec.Code)
	assert.Empty(t, res.rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	res := serveCORS(CORSPolicy{Origins: []string{"*"}}, http.MethodGet, "https://random.example", false)
	assert.Equal(t, "https://random.example", res.rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSSubdomainPattern(t *testing.T) {
	policy := CORSPolicy{Origins: []string{"https://*.fortis-steel.ru"}}

	for origin, want := range map[string]bool{
		"https://shop.fortis-steel.ru":         true,
		"https://SPB.Fortis-Steel.ru":          true,
		"https://fortis-steel.ru":              false,
		"http://shop.fortis-steel.ru":          false,
		"https://evilfortis-steel.ru":          false,
		"https://shop.fortis-steel.ru.example": false,
	} {
		res := serveCORS(policy, http.MethodGet, origin, false)
		assert.Equal(t, want, res.rec.Header().Get("Access-Control-Allow-Origin") != "", origin)
	}
}

func TestCORSHandlesPreflight(t *testing.T) {
	policy := CORSPolicy{Origins: []string{"https://fortis-steel.ru"}, MaxAge: 10 * time.Minute}
	res := serveCORS(policy, http.MethodOptions, "https://fortis-steel.ru", true)

	assert.False(t, res.called)
	require.Equal(t, http.StatusNoContent, res.rec.Code)
	assert.Equal(t, "Content-Type, X-Session-ID, X-Request-ID", res.rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Contains(t, res.rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Equal(t, "600", res.rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORSConfiguredHeaders(t *testing.T) {
	policy := CORSPolicy{Origins: []string{"*"}, Headers: []string{"Content-Type", "X-Widget-Version"}}
	res := serveCORS(policy, http.MethodOptions, "https://fortis-steel.ru", true)

	assert.Equal(t, "Content-Type, X-Widget-Version", res.rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Empty(t, res.rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORSPassesRequestsWithoutOrigin(t *testing.T) {
	res := serveCORS(CORSPolicy{}, http.MethodOptions, "", true)

	assert.True(t, res.called)
	assert.Empty(t, res.rec.Header().Get("Vary"))
}
