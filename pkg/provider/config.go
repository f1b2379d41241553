package provider

import (
	"context"
	"slices"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/agentstation/catalogsync/pkg/constants"
	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
)

// Credential field names accepted under each instance.
const (
	FieldAccessKeyID     = "accessKeyId"
	FieldSecretAccessKey = "secretAccessKey"
	FieldSessionToken    = "sessionToken"
	FieldAPIToken        = "apiToken"
)

// Config is one resolved tenant, account, region or org.
type Config struct {
	ID          string
	Kind        string
	Endpoint    string       // region for AWS, org url for Okta
	Credentials *Credentials // nil means use ambient credentials

	// Settings holds the raw instance map for source-specific options.
	// Keys are lower-cased by the configuration loader.
	Settings map[string]any
}

// Setting returns the raw value of a source-specific option, or nil.
func (c Config) Setting(key string) any {
	if v, ok := c.Settings[key]; ok {
		return v
	}
	return c.Settings[strings.ToLower(key)]
}

// Identity returns the provider identity for this configuration.
func (c Config) Identity() Identity {
	return NewIdentity(c.Kind, c.ID)
}

// Credentials holds optional static credentials for one instance.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	APIToken        string
}

// HasStaticKeys reports whether an access key pair is configured.
func (c *Credentials) HasStaticKeys() bool {
	return c != nil && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// Schema describes how one source kind is laid out in the configuration tree.
type Schema struct {
	// Kind is the concrete provider kind name, e.g. RDSEntityProvider.
	Kind string

	// Key is the child of catalog.providers holding this kind's instances.
	Key string

	// EndpointField is the required field carrying the region or url.
	EndpointField string

	// Required lists additional fields that must be present on every instance.
	Required []string
}

// Root returns the dotted configuration path of the schema's instance map.
func (s Schema) Root() string {
	return constants.ProvidersConfigKey + "." + s.Key
}

// Resolve returns one Config per child of the schema root, in sorted key order.
// An absent root disables the provider kind and is not an error.
func Resolve(ctx context.Context, v *viper.Viper, schema Schema) ([]Config, error) {
	logger := logging.FromContext(ctx).With().
		Str("kind", schema.Kind).
		Str("path", schema.Root()).
		Logger()

	if v == nil || !v.IsSet(schema.Root()) {
		logger.Warn().Msg("No providers configured, feature disabled")
		return nil, nil
	}

	instances, err := cast.ToStringMapE(v.Get(schema.Root()))
	if err != nil {
		return nil, errors.NewConfigError(schema.Root(), "expected a map of provider instances", err)
	}

	ids := make([]string, 0, len(instances))
	for id := range instances {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	configs := make([]Config, 0, len(ids))
	for _, id := range ids {
		cfg, err := resolveInstance(v, schema, id, instances[id])
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}

	logger.Debug().Int("instances", len(configs)).Msg("Resolved provider configuration")
	return configs, nil
}

func resolveInstance(v *viper.Viper, schema Schema, id string, raw any) (Config, error) {
	path := schema.Root() + "." + id

	settings, err := cast.ToStringMapE(raw)
	if err != nil {
		return Config{}, errors.NewConfigError(path, "expected an object", err)
	}

	get := func(field string) string {
		return strings.TrimSpace(v.GetString(path + "." + field))
	}

	endpoint := get(schema.EndpointField)
	if endpoint == "" {
		return Config{}, errors.MissingConfig(path + "." + schema.EndpointField)
	}
	for _, field := range schema.Required {
		if get(field) == "" {
			return Config{}, errors.MissingConfig(path + "." + field)
		}
	}

	creds := &Credentials{
		AccessKeyID:     get(FieldAccessKeyID),
		SecretAccessKey: get(FieldSecretAccessKey),
		SessionToken:    get(FieldSessionToken),
		APIToken:        get(FieldAPIToken),
	}
	if *creds == (Credentials{}) {
		creds = nil
	}

	return Config{
		ID:          id,
		Kind:        schema.Kind,
		Endpoint:    endpoint,
		Credentials: creds,
		Settings:    settings,
	}, nil
}
