package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/catalogsync/cmd/catalogsync/cmd/providers"
	"github.com/agentstation/catalogsync/cmd/catalogsync/cmd/refresh"
	"github.com/agentstation/catalogsync/cmd/catalogsync/cmd/run"
)

// CreateRunCommand creates the run command with app dependencies.
func (a *App) CreateRunCommand() *cobra.Command {
	return run.NewCommand(a)
}

// CreateRefreshCommand creates the refresh command with app dependencies.
func (a *App) CreateRefreshCommand() *cobra.Command {
	return refresh.NewCommand(a)
}

// CreateProvidersCommand creates the providers command with app dependencies.
func (a *App) CreateProvidersCommand() *cobra.Command {
	return providers.NewCommand(a)
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show version information for the catalogsync CLI.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "catalogsync version %s\n", a.version)
			_, _ = fmt.Fprintf(out, "commit: %s\n", a.commit)
			_, _ = fmt.Fprintf(out, "built: %s\n", a.date)
			_, _ = fmt.Fprintf(out, "built by: %s\n", a.builtBy)
			_, _ = fmt.Fprintf(out, "go version: %s\n", runtime.Version())
			_, _ = fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
