// Package refresh provides the refresh command, which runs one
// reconciliation cycle per provider and prints the resulting entities.
package refresh

import (
	"context"
	"errors"
	"slices"

	"github.com/spf13/cobra"

	"github.com/agentstation/catalogsync"
	"github.com/agentstation/catalogsync/internal/appcontext"
	"github.com/agentstation/catalogsync/internal/catalogs"
	"github.com/agentstation/catalogsync/internal/catalogs/files"
	"github.com/agentstation/catalogsync/internal/catalogs/memory"
	"github.com/agentstation/catalogsync/internal/cmd/output"
	"github.com/agentstation/catalogsync/pkg/catalog"
	pkgerrors "github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/logging"
	pkgrefresh "github.com/agentstation/catalogsync/pkg/refresh"
)

// Flags holds the refresh command flags.
type Flags struct {
	DryRun bool
	Out    string
}

// NewCommand creates the refresh command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "refresh [provider...]",
		GroupID: "core",
		Short:   "Run one refresh cycle and print the entities",
		Long: `Refresh runs a single reconciliation cycle for the named providers, or for
every configured provider when none are named, and prints the entities
each one produced.

Providers refresh independently. Entities from providers that succeeded are
printed even when others fail; the command then exits with an error.`,
		Example: `  catalogsync refresh                                   # Refresh every provider
  catalogsync refresh RDSEntityProvider:east            # Refresh one provider
  catalogsync refresh --dry-run -o yaml                 # Build entities without applying them
  catalogsync refresh --out ./catalog                   # Also write catalog-info snapshots`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, flags, args)
		},
	}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "build mutations without applying them to any catalog")
	cmd.Flags().StringVar(&flags.Out, "out", "", "directory to write per-provider snapshot files")

	return cmd
}

// manual is a scheduler that registers nothing; the command drives cycles itself.
var manual = pkgrefresh.SchedulerFunc(func(context.Context, pkgrefresh.Task) error { return nil })

func run(cmd *cobra.Command, app appcontext.Interface, flags *Flags, args []string) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	if flags.DryRun && flags.Out != "" {
		return pkgerrors.NewValidationError("out", flags.Out, "cannot be combined with --dry-run")
	}

	ctx := logging.WithLogger(cmd.Context(), app.Logger())

	client, err := app.NewClient(ctx, catalogsync.WithScheduler(manual))
	if err != nil {
		return err
	}
	defer client.Close()

	names, err := selectProviders(client.Providers(), args)
	if err != nil {
		return err
	}

	var (
		list   entities
		runErr error
	)
	if flags.DryRun {
		list, runErr = preview(ctx, client, names)
	} else {
		list, runErr = apply(ctx, client, names, flags.Out)
	}
	if list == nil && runErr != nil {
		return runErr
	}

	formatter := output.NewFormatter(output.DetectFormat(string(format)))
	if err := formatter.Format(cmd.OutOrStdout(), list); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// selectProviders returns args validated against the configured names, or
// every configured name when args is empty.
func selectProviders(configured, args []string) ([]string, error) {
	if len(args) == 0 {
		return configured, nil
	}
	for _, name := range args {
		if !slices.Contains(configured, name) {
			return nil, &pkgerrors.ValidationError{
				Field:   "provider",
				Value:   name,
				Message: "not configured; run 'catalogsync providers' to list providers",
			}
		}
	}
	return args, nil
}

// preview builds each provider's mutation without applying it.
func preview(ctx context.Context, client catalogsync.Client, names []string) (entities, error) {
	list := entities{}
	var errs []error
	for _, name := range names {
		mutation, err := client.Preview(ctx, name)
		if err != nil {
			errs = append(errs, pkgerrors.WrapResource("preview", "provider", name, err))
			continue
		}
		for _, d := range mutation.Entities {
			list = append(list, newEntity(d.LocationKey, d.Entity))
		}
	}
	list.sort()
	return list, errors.Join(errs...)
}

// apply connects the providers to an in-memory catalog, optionally teed to
// snapshot files, and runs one cycle for each.
func apply(ctx context.Context, client catalogsync.Client, names []string, out string) (entities, error) {
	store := memory.NewCatalog()
	var connector catalog.Connector = store
	if out != "" {
		snapshots, err := files.NewCatalog(out)
		if err != nil {
			return nil, err
		}
		connector = catalogs.Tee(store, snapshots)
	}

	if err := client.Connect(ctx, connector); err != nil {
		return nil, err
	}

	var errs []error
	for _, name := range names {
		if _, err := client.Refresh(ctx, name); err != nil {
			errs = append(errs, pkgerrors.WrapResource("refresh", "provider", name, err))
		}
	}

	list := entities{}
	for _, name := range names {
		for _, e := range store.EntitiesFor(name) {
			list = append(list, newEntity(name, e))
		}
	}
	list.sort()
	return list, errors.Join(errs...)
}
