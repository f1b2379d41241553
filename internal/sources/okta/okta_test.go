package okta_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogsync/internal/sources/okta"
	"github.com/agentstation/catalogsync/pkg/catalog"
	pkgerrors "github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/provenance"
	"github.com/agentstation/catalogsync/pkg/provider"
)

// fakeOrg is a minimal Okta org serving users, groups and group members.
type fakeOrg struct {
	*httptest.Server

	mu       sync.Mutex
	users    []okta.User
	groups   []okta.Group
	members  map[string][]okta.User
	pageSize int
	auth     string
	fail     map[string]int
	requests []*http.Request
}

func newFakeOrg(t *testing.T) *fakeOrg {
	t.Helper()
	org := &fakeOrg{members: map[string][]okta.User{}, pageSize: 2, auth: "SSWS test-token", fail: map[string]int{}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/users", func(w http.ResponseWriter, r *http.Request) {
		serve(org, w, r, org.users)
	})
	mux.HandleFunc("GET /api/v1/groups", func(w http.ResponseWriter, r *http.Request) {
		serve(org, w, r, org.groups)
	})
	mux.HandleFunc("GET /api/v1/groups/{id}/users", func(w http.ResponseWriter, r *http.Request) {
		serve(org, w, r, org.members[r.PathValue("id")])
	})
	org.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		org.mu.Lock()
		org.requests = append(org.requests, r.Clone(context.Background()))
		status := org.fail[r.URL.Path]
		auth := org.auth
		org.mu.Unlock()

		if r.Header.Get("Authorization") != auth {
			http.Error(w, `{"errorCode":"E0000011"}`, http.StatusUnauthorized)
			return
		}
		if status != 0 {
			http.Error(w, `{"errorCode":"E0000047"}`, status)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(org.Close)
	return org
}

func serve[T any](org *fakeOrg, w http.ResponseWriter, r *http.Request, items []T) {
	start, _ := strconv.Atoi(r.URL.Query().Get("after"))
	end := min(start+org.pageSize, len(items))
	if end < len(items) {
		next := *r.URL
		q := next.Query()
		q.Set("after", strconv.Itoa(end))
		next.RawQuery = q.Encode()
		w.Header().Add("Link", fmt.Sprintf(`<%s%s>; rel="self"`, org.URL, r.URL.RequestURI()))
		w.Header().Add("Link", fmt.Sprintf(`<%s%s>; rel="next"`, org.URL, next.RequestURI()))
	}
	page := items[start:end]
	if page == nil {
		page = []T{}
	}
	_ = json.NewEncoder(w).Encode(page)
}

func user(id, login string) okta.User {
	return okta.User{
		ID:     id,
		Status: "ACTIVE",
		Profile: okta.UserProfile{
			Login:       login,
			Email:       login,
			DisplayName: "User " + id,
		},
	}
}

func group(id, name string) okta.Group {
	return okta.Group{ID: id, Type: "OKTA_GROUP", Profile: okta.GroupProfile{Name: name}}
}

func config(org *fakeOrg) provider.Config {
	return provider.Config{
		ID:          "prod",
		Kind:        okta.Kind,
		Endpoint:    org.URL + "/",
		Credentials: &provider.Credentials{APIToken: "test-token"},
	}
}

func run(t *testing.T, cfg provider.Config, opts okta.Options) (catalog.Mutation, error) {
	t.Helper()
	engine, err := okta.NewEngine(context.Background(), cfg, opts)
	require.NoError(t, err)
	return engine.Preview(context.Background())
}

func TestEngineUsersAndGroups(t *testing.T) {
	org := newFakeOrg(t)
	org.users = []okta.User{
		user("00u1", "alice@example.com"),
		user("00u2", "bob@example.com"),
		user("00u3", "carol@example.com"),
	}
	org.groups = []okta.Group{group("00g1", "Platform")}

	mutation, err := run(t, config(org), okta.Options{})
	require.NoError(t, err)
	require.Len(t, mutation.Entities, 4, "all pages of users plus the group")

	for _, d := range mutation.Entities {
		assert.Equal(t, "OktaOrgDiscoveryEntityProvider:prod", d.LocationKey)
	}

	alice := mutation.Entities[0].Entity
	assert.Equal(t, "User", alice.Kind)
	assert.Equal(t, "alice-example.com", alice.Metadata.Name)
	assert.Equal(t, "00u1", alice.Annotation(okta.AnnotationID))
	assert.Equal(t, "alice@example.com", alice.Annotation(okta.AnnotationEmail))
	assert.Equal(t, "url:"+org.URL+"/api/v1/users/00u1", alice.Annotation(provenance.AnnotationLocation))
	assert.Equal(t, "url:"+org.URL+"/api/v1/users/00u1", alice.Annotation(provenance.AnnotationOriginLocation))

	platform := mutation.Entities[3].Entity
	assert.Equal(t, "Group", platform.Kind)
	assert.Equal(t, "platform", platform.Metadata.Name)
	assert.Equal(t, "url:"+org.URL+"/api/v1/groups/00g1", platform.Annotation(provenance.AnnotationLocation))
	assert.Equal(t, "okta_group", platform.Spec["type"])
}

func TestEngineFiltersAndRequestParams(t *testing.T) {
	org := newFakeOrg(t)
	org.users = []okta.User{user("00u1", "alice@example.com"), user("00u2", "svc-bot@example.com")}
	org.groups = []okta.Group{group("00g1", "Platform"), group("00g2", "Everyone")}

	mutation, err := run(t, config(org), okta.Options{
		ListUsers:   okta.ListRequest{Search: `status eq "ACTIVE"`},
		ListGroups:  okta.ListRequest{Filter: `type eq "OKTA_GROUP"`},
		UserFilter:  func(u okta.User) bool { return u.Profile.Login != "svc-bot@example.com" },
		GroupFilter: func(g okta.Group) bool { return g.Profile.Name != "Everyone" },
	})
	require.NoError(t, err)

	var names []string
	for _, d := range mutation.Entities {
		names = append(names, d.Entity.Metadata.Name)
	}
	assert.Equal(t, []string{"alice-example.com", "platform"}, names)

	org.mu.Lock()
	defer org.mu.Unlock()
	for _, r := range org.requests {
		q := r.URL.Query()
		assert.NotEmpty(t, q.Get("limit"), "limit is always sent")
		switch r.URL.Path {
		case "/api/v1/users":
			assert.Equal(t, `status eq "ACTIVE"`, q.Get("search"))
			assert.Equal(t, "200", q.Get("limit"))
		case "/api/v1/groups":
			assert.Equal(t, `type eq "OKTA_GROUP"`, q.Get("filter"))
		}
	}
}

func TestEngineMembershipHook(t *testing.T) {
	org := newFakeOrg(t)
	alice, bob := user("00u1", "alice@example.com"), user("00u2", "bob@example.com")
	org.users = []okta.User{alice, bob}
	org.groups = []okta.Group{group("00g1", "Platform"), group("00g2", "Data")}
	org.members["00g1"] = []okta.User{alice, bob}
	org.members["00g2"] = []okta.User{alice}

	cfg := config(org)
	cfg.Settings = map[string]any{"includemembers": true}

	mutation, err := run(t, cfg, okta.Options{})
	require.NoError(t, err)
	require.Len(t, mutation.Entities, 4)

	byName := map[string]catalog.Entity{}
	for _, d := range mutation.Entities {
		byName[d.Entity.Metadata.Name] = d.Entity
	}
	assert.Equal(t, []any{"data", "platform"}, byName["alice-example.com"].Spec["memberOf"])
	assert.Equal(t, []any{"platform"}, byName["bob-example.com"].Spec["memberOf"])
	assert.Equal(t, []any{"alice-example.com", "bob-example.com"}, byName["platform"].Spec["members"])
}

func TestEngineFetchFailure(t *testing.T) {
	org := newFakeOrg(t)
	org.users = []okta.User{user("00u1", "alice@example.com")}
	org.fail["/api/v1/groups"] = http.StatusTooManyRequests

	_, err := run(t, config(org), okta.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrFetch)
	assert.True(t, pkgerrors.IsRateLimited(err))

	var fetchErr *pkgerrors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "groups", fetchErr.Collection)
	assert.Equal(t, "OktaOrgDiscoveryEntityProvider:prod", fetchErr.Provider)
}

func TestEngineBadToken(t *testing.T) {
	org := newFakeOrg(t)
	cfg := config(org)
	cfg.Credentials.APIToken = "wrong"

	_, err := run(t, cfg, okta.Options{})
	assert.ErrorIs(t, err, pkgerrors.ErrUnauthorized)
}

func TestEngineAuthScheme(t *testing.T) {
	t.Run("bearer access token", func(t *testing.T) {
		org := newFakeOrg(t)
		org.auth = "Bearer test-token"
		org.users = []okta.User{user("00u1", "alice@example.com")}
		cfg := config(org)
		cfg.Settings = map[string]any{"authscheme": "Bearer"}

		mutation, err := run(t, cfg, okta.Options{})
		require.NoError(t, err)
		assert.Len(t, mutation.Entities, 1)
	})

	t.Run("ssws is the default", func(t *testing.T) {
		org := newFakeOrg(t)
		org.auth = "Bearer test-token"

		_, err := run(t, config(org), okta.Options{})
		assert.ErrorIs(t, err, pkgerrors.ErrUnauthorized)
	})

	t.Run("unknown scheme", func(t *testing.T) {
		org := newFakeOrg(t)
		cfg := config(org)
		cfg.Settings = map[string]any{"authscheme": "basic"}

		_, err := okta.NewEngine(context.Background(), cfg, okta.Options{})
		var cfgErr *pkgerrors.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "catalog.providers.okta.prod.authScheme", cfgErr.Path)
	})
}

func TestEngineGroupNamesCollide(t *testing.T) {
	org := newFakeOrg(t)
	org.groups = []okta.Group{group("00g1", "Engineering"), group("00g2", "engineering")}

	_, err := run(t, config(org), okta.Options{})
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
	assert.ErrorContains(t, err, "duplicate ref Group:default/engineering")
}
