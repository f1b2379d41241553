package okta

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/agentstation/catalogsync/internal/transport"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/provider"
	"github.com/agentstation/catalogsync/pkg/reconciler"
)

// Provider constants.
const (
	Kind             = "OktaOrgDiscoveryEntityProvider"
	ConfigKey        = "okta"
	AnnotationID     = "okta.com/id"
	CollectionUsers  = "users"
	CollectionGroups = "groups"

	// SettingIncludeMembers enables group member fetching and the membership hook.
	SettingIncludeMembers = "includeMembers"

	// SettingAuthScheme selects how apiToken is sent: "ssws" (default) for
	// API tokens or "bearer" for OAuth 2.0 access tokens.
	SettingAuthScheme = "authScheme"
)

// Schema locates Okta providers under catalog.providers.okta.<id>.{url,apiToken}.
var Schema = provider.Schema{
	Kind:          Kind,
	Key:           ConfigKey,
	EndpointField: "url",
	Required:      []string{provider.FieldAPIToken},
}

// Options customizes the engines built for Okta providers.
type Options struct {
	ListUsers        ListRequest
	ListGroups       ListRequest
	UserFilter       reconciler.Filter[User]
	GroupFilter      reconciler.Filter[Group]
	UserTransformer  reconciler.Transformer[User]  // defaults to DefaultUserTransformer
	GroupTransformer reconciler.Transformer[Group] // defaults to DefaultGroupTransformer

	// IncludeMembers fetches group members and installs MembershipHook
	// unless Hook is set. The includeMembers config setting also enables it.
	IncludeMembers bool
	Hook           reconciler.Hook

	HTTPOptions []transport.Option
}

// NewEngine builds the reconciliation engine for one configured Okta org.
// Users and groups are two collections combined into one mutation.
func NewEngine(_ context.Context, cfg provider.Config, opts Options) (*reconciler.Engine, error) {
	var token string
	if cfg.Credentials != nil {
		token = cfg.Credentials.APIToken
	}
	auth, err := authenticator(cfg)
	if err != nil {
		return nil, err
	}
	client := NewClient(cfg.Endpoint, auth, token, opts.HTTPOptions...)

	includeMembers := opts.IncludeMembers || cast.ToBool(cfg.Setting(SettingIncludeMembers))

	userTransform := opts.UserTransformer
	if userTransform == nil {
		userTransform = DefaultUserTransformer
	}
	groupTransform := opts.GroupTransformer
	if groupTransform == nil {
		groupTransform = DefaultGroupTransformer
	}

	hook := opts.Hook
	if hook == nil && includeMembers {
		hook = MembershipHook
	}

	return reconciler.New(cfg.Identity(),
		reconciler.WithCollection(&reconciler.Collection[User]{
			Name:             CollectionUsers,
			Source:           NewUserSource(client, opts.ListUsers),
			VendorAnnotation: AnnotationID,
			Filter:           opts.UserFilter,
			Transform:        userTransform,
		}),
		reconciler.WithCollection(&reconciler.Collection[Group]{
			Name:             CollectionGroups,
			Source:           NewGroupSource(client, opts.ListGroups, includeMembers),
			VendorAnnotation: AnnotationID,
			Filter:           opts.GroupFilter,
			Transform:        groupTransform,
		}),
		reconciler.WithHook(hook),
	)
}

func authenticator(cfg provider.Config) (transport.Authenticator, error) {
	scheme := strings.ToLower(cast.ToString(cfg.Setting(SettingAuthScheme)))
	switch scheme {
	case "", "ssws":
		return transport.SSWS(), nil
	case "bearer":
		return &transport.BearerAuth{}, nil
	default:
		path := Schema.Root() + "." + cfg.ID + "." + SettingAuthScheme
		return nil, errors.NewConfigError(path, fmt.Sprintf("unsupported auth scheme %q (want ssws or bearer)", scheme), nil)
	}
}
