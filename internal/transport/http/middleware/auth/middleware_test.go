package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractKey(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"bearer", map[string]string{"Authorization": "Bearer sk_a"}, "sk_a"},
		{"x-api-key", map[string]string{"X-API-Key": "sk_b"}, "sk_b"},
		{"bearer wins", map[string]string{"Authorization": "Bearer sk_a", "X-API-Key": "sk_b"}, "sk_a"},
		{"basic ignored", map[string]string{"Authorization": "Basic abc"}, ""},
		{"empty bearer falls back", map[string]string{"Authorization": "Bearer ", "X-API-Key": "sk_b"}, "sk_b"},
		{"none", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/chat", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ExtractKey(r))
		})
	}
}

func TestGate(t *testing.T) {
	s := newTestStore(t, testPublic)

	tests := []struct {
		name       string
		required   bool
		key        string
		wantStatus int
		wantError  string
		wantKey    string
	}{
		{"disabled passes anonymous", false, "", http.StatusOK, "", ""},
		{"disabled ignores unknown key", false, "sk_unknown", http.StatusOK, "", ""},
		{"disabled ignores valid key", false, testPublic, http.StatusOK, "", ""},
		{"missing key", true, "", http.StatusUnauthorized, msgKeyRequired, ""},
		{"invalid key", true, "sk_unknown", http.StatusForbidden, msgInvalidKey, ""},
		{"master key is not a client key", true, testMaster, http.StatusForbidden, msgInvalidKey, ""},
		{"valid key", true, testPublic, http.StatusOK, "", testPublic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := Gate(s, tt.required, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = KeyFromContext(r.Context())
			}))

			r := httptest.NewRequest(http.MethodPost, "/chat", nil)
			if tt.key != "" {
				r.Header.Set("Authorization", "Bearer "+tt.key)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, gjson.Get(rec.Body.String(), "error").String())
				assert.Equal(t, int64(tt.wantStatus), gjson.Get(rec.Body.String(), "status").Int())
				return
			}
			assert.Equal(t, tt.wantKey, seen)
		})
	}
}

func TestMaster(t *testing.T) {
	s := newTestStore(t, testPublic)
	h := Master(s)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		key        string
		wantStatus int
		wantError  string
	}{
		{"", http.StatusUnauthorized, msgMasterRequired},
		{testPublic, http.StatusForbidden, msgInvalidMaster},
		{testMaster, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/admin/keys", nil)
		if tt.key != "" {
			r.Header.Set("X-API-Key", tt.key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)

		assert.Equal(t, tt.wantStatus, rec.Code)
		assert.Equal(t, tt.wantError, gjson.Get(rec.Body.String(), "error").String())
	}
}

func TestMasterQuiet(t *testing.T) {
	s := newTestStore(t)
	h := MasterQuiet(s)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for key, want := range map[string]int{"": http.StatusUnauthorized, "sk_wrong": http.StatusUnauthorized, testMaster: http.StatusOK} {
		r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		if key != "" {
			r.Header.Set("Authorization", "Bearer "+key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, want, rec.Code, "key %q", key)
	}
}
