package provider_test

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/provider"
)

var awsSchema = provider.Schema{
	Kind:          "RDSEntityProvider",
	Key:           "aws",
	EndpointField: "region",
}

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	return v
}

func TestResolve(t *testing.T) {
	t.Run("absent root disables the feature", func(t *testing.T) {
		logs := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), logs.Logger)

		configs, err := provider.Resolve(ctx, newViper(t, "catalog:\n  other: true\n"), awsSchema)
		require.NoError(t, err)
		assert.Empty(t, configs)
		assert.True(t, logs.ContainsAll("No providers configured", "catalog.providers.aws"))
	})

	t.Run("nil viper disables the feature", func(t *testing.T) {
		configs, err := provider.Resolve(context.Background(), nil, awsSchema)
		require.NoError(t, err)
		assert.Nil(t, configs)
	})

	t.Run("sibling instances in sorted order", func(t *testing.T) {
		v := newViper(t, `
catalog:
  providers:
    aws:
      west:
        region: us-west-2
      east:
        region: us-east-1
        accessKeyId: AKIA
        secretAccessKey: secret
        sessionToken: token
`)
		configs, err := provider.Resolve(context.Background(), v, awsSchema)
		require.NoError(t, err)
		require.Len(t, configs, 2)

		assert.Equal(t, "east", configs[0].ID)
		assert.Equal(t, "us-east-1", configs[0].Endpoint)
		require.NotNil(t, configs[0].Credentials)
		assert.True(t, configs[0].Credentials.HasStaticKeys())
		assert.Equal(t, "token", configs[0].Credentials.SessionToken)

		assert.Equal(t, "west", configs[1].ID)
		assert.Nil(t, configs[1].Credentials, "absent credentials fall back to ambient")
		assert.False(t, configs[1].Credentials.HasStaticKeys())

		assert.Equal(t, "RDSEntityProvider:east", configs[0].Identity().Name())
		assert.Equal(t, "RDSEntityProvider:west:refresh", configs[1].Identity().TaskID())
	})

	t.Run("missing endpoint names the exact path", func(t *testing.T) {
		v := newViper(t, `
catalog:
  providers:
    aws:
      east:
        accessKeyId: AKIA
`)
		_, err := provider.Resolve(context.Background(), v, awsSchema)
		require.Error(t, err)
		assert.True(t, errors.IsConfigError(err))

		var cfgErr *errors.ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "catalog.providers.aws.east.region", cfgErr.Path)
	})

	t.Run("missing required field", func(t *testing.T) {
		schema := provider.Schema{
			Kind:          "OktaOrgDiscoveryEntityProvider",
			Key:           "okta",
			EndpointField: "url",
			Required:      []string{provider.FieldAPIToken},
		}
		v := newViper(t, `
catalog:
  providers:
    okta:
      prod:
        url: https://example.okta.com
`)
		_, err := provider.Resolve(context.Background(), v, schema)
		var cfgErr *errors.ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "catalog.providers.okta.prod.apiToken", cfgErr.Path)
	})

	t.Run("instance that is not an object", func(t *testing.T) {
		v := newViper(t, `
catalog:
  providers:
    aws:
      east: us-east-1
`)
		_, err := provider.Resolve(context.Background(), v, awsSchema)
		var cfgErr *errors.ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "catalog.providers.aws.east", cfgErr.Path)
	})
}

func TestIdentity(t *testing.T) {
	tests := []struct {
		identity provider.Identity
		name     string
		taskID   string
	}{
		{provider.NewIdentity("RDSEntityProvider", ""), "RDSEntityProvider", "RDSEntityProvider:refresh"},
		{provider.NewIdentity("RDSEntityProvider", "east"), "RDSEntityProvider:east", "RDSEntityProvider:east:refresh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.identity.Name())
			assert.Equal(t, tt.name, tt.identity.String())
			assert.Equal(t, tt.taskID, tt.identity.TaskID())
		})
	}
}

func TestConfigSetting(t *testing.T) {
	v := newViper(t, `
catalog:
  providers:
    okta:
      prod:
        url: https://example.okta.com
        apiToken: token
        includeMembers: true
`)
	configs, err := provider.Resolve(context.Background(), v, provider.Schema{
		Kind: "OktaOrgDiscoveryEntityProvider", Key: "okta", EndpointField: "url",
	})
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, true, configs[0].Setting("includeMembers"))
	assert.Nil(t, configs[0].Setting("missing"))
	assert.Equal(t, "token", configs[0].Credentials.APIToken)
}
