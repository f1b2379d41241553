package transport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogsync/internal/transport"
	"github.com/agentstation/catalogsync/pkg/errors"
)

func TestGetJSON(t *testing.T) {
	var gotAuth, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Header().Add("Link", `<https://org.example.com/api/v1/users?limit=2>; rel="self"`)
		w.Header().Add("Link", `<https://org.example.com/api/v1/users?after=00u2&limit=2>; rel="next"`)
		_, _ = w.Write([]byte(`[{"id":"00u1"},{"id":"00u2"}]`))
	}))
	defer server.Close()

	client := transport.New("okta", transport.SSWS(), "secret")

	var users []struct {
		ID string `json:"id"`
	}
	next, err := client.GetJSON(context.Background(), server.URL+"/api/v1/users", &users)
	require.NoError(t, err)

	assert.Equal(t, "SSWS secret", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
	assert.Len(t, users, 2)
	assert.Equal(t, "https://org.example.com/api/v1/users?after=00u2&limit=2", next)
}

func TestGetJSONStatusErrors(t *testing.T) {
	tests := []struct {
		status   int
		sentinel error
	}{
		{http.StatusTooManyRequests, errors.ErrRateLimited},
		{http.StatusUnauthorized, errors.ErrUnauthorized},
		{http.StatusBadGateway, errors.ErrProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"errorSummary":"nope"}`, tt.status)
			}))
			defer server.Close()

			client := transport.New("okta", transport.SSWS(), "secret")
			var out any
			_, err := client.GetJSON(context.Background(), server.URL+"/api/v1/groups", &out)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var apiErr *errors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "okta", apiErr.Provider)
			assert.Equal(t, "/api/v1/groups", apiErr.Endpoint)
			assert.Contains(t, apiErr.Message, "nope")
		})
	}
}

func TestGetJSONMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":`))
	}))
	defer server.Close()

	var out []map[string]any
	_, err := transport.New("okta", nil, "").GetJSON(context.Background(), server.URL, &out)
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestNextLink(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"none", nil, ""},
		{"self only", []string{`<https://a/x>; rel="self"`}, ""},
		{"combined header", []string{`<https://a/x>; rel="self", <https://a/y?after=1>; rel="next"`}, "https://a/y?after=1"},
		{"separate headers", []string{`<https://a/x>; rel="self"`, `<https://a/z>; rel="next"`}, "https://a/z"},
		{"unquoted rel", []string{`<https://a/n>; rel=next`}, "https://a/n"},
		{"multiple rels", []string{`<https://a/m>; rel="prev next"`}, "https://a/m"},
		{"malformed target", []string{`https://a/x; rel="next"`}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for _, v := range tt.values {
				h.Add("Link", v)
			}
			assert.Equal(t, tt.want, transport.NextLink(h))
		})
	}
}

func TestClientOptions(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := transport.New("okta", transport.SSWS(), "secret",
		transport.WithHTTPClient(&http.Client{Timeout: time.Second}),
		transport.WithHTTPClient(nil), // ignored
	)

	var out map[string]any
	_, err := client.GetJSON(context.Background(), server.URL, &out)
	require.NoError(t, err)
	assert.Equal(t, "catalogsync", gotUA)
	assert.Equal(t, "okta", client.Provider())
}
