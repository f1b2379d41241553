package okta_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogsync/internal/sources/okta"
	"github.com/agentstation/catalogsync/pkg/catalog"
	"github.com/agentstation/catalogsync/pkg/reconciler"
)

func TestMembershipHookKeepsExistingMemberships(t *testing.T) {
	snapshot := reconciler.Snapshot{
		okta.CollectionUsers: {
			{Kind: "User", Metadata: catalog.Metadata{Name: "alice"}, Spec: map[string]any{"memberOf": []string{"legacy", "platform"}}},
			{Kind: "User", Metadata: catalog.Metadata{Name: "dave"}},
		},
		okta.CollectionGroups: {
			{Kind: "Group", Metadata: catalog.Metadata{Name: "platform"}, Spec: map[string]any{"members": []any{"alice"}}},
			{Kind: "Group", Metadata: catalog.Metadata{Name: "empty"}},
		},
	}

	out, err := okta.MembershipHook(context.Background(), snapshot)
	require.NoError(t, err)

	users := out[okta.CollectionUsers]
	assert.Equal(t, []any{"legacy", "platform"}, users[0].Spec["memberOf"])
	assert.Equal(t, []any{}, users[1].Spec["memberOf"])
}

func TestDefaultTransformers(t *testing.T) {
	u := okta.User{ID: "00u1", Profile: okta.UserProfile{Login: "alice@example.com", FirstName: "Alice", LastName: "Smith", Title: "Engineer"}}
	e, err := okta.DefaultUserTransformer(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "alice-example.com", e.Metadata.Name)
	assert.Equal(t, "Engineer", e.Metadata.Description)
	assert.Equal(t, map[string]any{"displayName": "Alice Smith"}, e.Spec["profile"])

	g := okta.Group{ID: "00g1", Profile: okta.GroupProfile{Name: "Data Platform", Description: "Data folks"}, Members: []string{"bob@example.com"}}
	e, err = okta.DefaultGroupTransformer(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, "data-platform", e.Metadata.Name)
	assert.Equal(t, "Data Platform", e.Metadata.Title)
	assert.Equal(t, "team", e.Spec["type"])
	assert.Equal(t, []any{"bob-example.com"}, e.Spec["members"])
}
