// Package providers provides the providers command, which lists the provider
// instances resolved from configuration.
package providers

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/catalogsync/internal/appcontext"
	"github.com/agentstation/catalogsync/internal/cmd/output"
	"github.com/agentstation/catalogsync/internal/sources/registry"
	"github.com/agentstation/catalogsync/pkg/logging"
	"github.com/agentstation/catalogsync/pkg/provider"
)

// NewCommand creates the providers command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var supported bool

	cmd := &cobra.Command{
		Use:     "providers",
		GroupID: "core",
		Short:   "List configured provider instances",
		Long: `List every provider instance resolved from catalog.providers.

Each instance becomes its own provider, named <Kind>:<instance>, with its own
refresh schedule and location key.`,
		Example: `  catalogsync providers              # List configured instances
  catalogsync providers --supported  # List supported provider kinds
  catalogsync providers -o json      # Output as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}
			formatter := output.NewFormatter(output.DetectFormat(string(format)))

			if supported {
				return formatter.Format(cmd.OutOrStdout(), supportedKinds())
			}

			list, err := listInstances(cmd, app)
			if err != nil {
				return err
			}
			return formatter.Format(cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().BoolVar(&supported, "supported", false, "list supported provider kinds instead of configured instances")

	return cmd
}

// listInstances resolves every registered kind against the configuration.
func listInstances(cmd *cobra.Command, app appcontext.Interface) (instances, error) {
	v, err := app.Viper()
	if err != nil {
		return nil, err
	}
	ctx := logging.WithLogger(cmd.Context(), app.Logger())

	var list instances
	for _, name := range registry.List() {
		factory, err := registry.Get(name)
		if err != nil {
			return nil, err
		}
		configs, err := provider.Resolve(ctx, v, factory.Schema)
		if err != nil {
			return nil, err
		}
		for _, cfg := range configs {
			list = append(list, newInstance(cfg))
		}
	}
	return list, nil
}
