package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"machinehub/statusboard/pkg/config"
	"machinehub/statusboard/pkg/telemetry/logging"
)

var testKeys = []config.APIKeyConfig{
	{Name: "rack-1", Key: "k-rack-1"},
	{Name: "rack-2", Key: "k-rack-2"},
	{Name: "retired", Key: "k-retired", Disabled: true},
}

func TestValidator(t *testing.T) {
	v := NewValidator(testKeys)
	assert.Equal(t, 3, v.Len())

	tests := []struct {
		name    string
		key     string
		want    string
		wantErr error
	}{
		{name: "first key", key: "k-rack-1", want: "rack-1"},
		{name: "second key", key: "k-rack-2", want: "rack-2"},
		{name: "missing", key: "", wantErr: ErrMissingKey},
		{name: "unknown", key: "k-rack-3", wantErr: ErrInvalidKey},
		{name: "prefix of a key", key: "k-rack", wantErr: ErrInvalidKey},
		{name: "disabled", key: "k-retired", wantErr: ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.key)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMiddleware(t *testing.T) {
	m := NewMiddleware(NewValidator(testKeys), "X-API-Key", logging.Discard(), nil)
	h := m.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(Client(r.Context())))
	}))

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
		wantBody   string
	}{
		{name: "header key", header: "X-API-Key", value: "k-rack-1", wantStatus: http.StatusOK, wantBody: "rack-1"},
		{name: "bearer key", header: "Authorization", value: "Bearer k-rack-2", wantStatus: http.StatusOK, wantBody: "rack-2"},
		{name: "no key", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Authorization", value: "Basic k-rack-1", wantStatus: http.StatusUnauthorized},
		{name: "bad key", header: "X-API-Key", value: "nope", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/heartbeat", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			} else {
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestMiddleware_CustomReject(t *testing.T) {
	var rejected error
	m := NewMiddleware(NewValidator(testKeys), "", logging.Discard(), func(w http.ResponseWriter, err error) {
		rejected = err
		w.WriteHeader(http.StatusForbidden)
	})
	h := m.Handle(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/devices", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.ErrorIs(t, rejected, ErrMissingKey)
}

func TestClient_Absent(t *testing.T) {
	assert.Empty(t, Client(context.Background()))
	assert.Equal(t, "rack-9", Client(WithClient(context.Background(), "rack-9")))
}
