package okta

import (
	"context"
	"slices"

	"github.com/agentstation/catalogsync/pkg/reconciler"
)

// MembershipHook stamps spec.memberOf on every user entity from the
// spec.members lists of the group entities in the same cycle. Users keep any
// memberOf entries their transformer already set.
func MembershipHook(_ context.Context, snapshot reconciler.Snapshot) (reconciler.Snapshot, error) {
	memberOf := make(map[string][]string)
	for _, g := range snapshot[CollectionGroups] {
		for _, m := range stringList(g.Spec["members"]) {
			memberOf[m] = append(memberOf[m], g.Metadata.Name)
		}
	}

	users := snapshot[CollectionUsers]
	for i := range users {
		groups := append(stringList(users[i].Spec["memberOf"]), memberOf[users[i].Metadata.Name]...)
		slices.Sort(groups)
		groups = slices.Compact(groups)

		if users[i].Spec == nil {
			users[i].Spec = map[string]any{}
		}
		values := make([]any, len(groups))
		for j, g := range groups {
			values[j] = g
		}
		users[i].Spec["memberOf"] = values
	}
	return snapshot, nil
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return slices.Clone(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
