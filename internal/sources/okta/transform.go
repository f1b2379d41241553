package okta

import (
	"context"
	"strings"

	"github.com/agentstation/catalogsync/pkg/catalog"
)

// UserName returns the entity name for an Okta login.
func UserName(login string) string {
	return catalog.SanitizeName(login)
}

// GroupName returns the entity name for an Okta group name.
func GroupName(name string) string {
	return catalog.SanitizeName(strings.ToLower(name))
}

// DefaultUserTransformer maps a user to a User entity named after its login.
func DefaultUserTransformer(_ context.Context, u User) (catalog.Entity, error) {
	displayName := u.Profile.DisplayName
	if displayName == "" {
		displayName = strings.TrimSpace(u.Profile.FirstName + " " + u.Profile.LastName)
	}

	profile := map[string]any{}
	if displayName != "" {
		profile["displayName"] = displayName
	}
	if u.Profile.Email != "" {
		profile["email"] = u.Profile.Email
	}

	return catalog.Entity{
		APIVersion: catalog.DefaultAPIVersion,
		Kind:       "User",
		Metadata: catalog.Metadata{
			Name:        UserName(u.Profile.Login),
			Description: u.Profile.Title,
		},
		Spec: map[string]any{
			"profile":  profile,
			"memberOf": []any{},
		},
	}, nil
}

// DefaultGroupTransformer maps a group to a Group entity. Member logins, when
// fetched, become spec.members.
func DefaultGroupTransformer(_ context.Context, g Group) (catalog.Entity, error) {
	members := make([]any, len(g.Members))
	for i, login := range g.Members {
		members[i] = UserName(login)
	}

	groupType := strings.ToLower(g.Type)
	if groupType == "" {
		groupType = "team"
	}

	return catalog.Entity{
		APIVersion: catalog.DefaultAPIVersion,
		Kind:       "Group",
		Metadata: catalog.Metadata{
			Name:        GroupName(g.Profile.Name),
			Title:       g.Profile.Name,
			Description: g.Profile.Description,
		},
		Spec: map[string]any{
			"type":     groupType,
			"children": []any{},
			"members":  members,
		},
	}, nil
}
