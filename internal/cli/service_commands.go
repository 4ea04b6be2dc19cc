package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/temirov/treetext/internal/api"
	"github.com/temirov/treetext/internal/config"
	"github.com/temirov/treetext/internal/services/watch"
	"github.com/temirov/treetext/internal/utils"
)

const (
	watchUse              = "watch [paths...]"
	watchAlias            = "w"
	watchShortDescription = "keep documents normalized while they are edited (" + watchAlias + ")"
	watchLongDescription  = `Watch tree and markdown documents and re-render their trees after an edit removes lines.
Directories are watched for new documents too. Stop with Ctrl+C.`
	watchUsageExample = `  # Keep every document below docs/ tidy
  treetext watch docs`
	debounceFlagName        = "debounce"
	debounceFlagDescription = "quiet period before a changed document is normalized (default from configuration)"

	serveUse              = "serve"
	serveShortDescription = "serve the editor operations over HTTP"
	serveLongDescription  = `Start an HTTP server exposing format, indent, outdent, insert and structure as JSON endpoints
under /api, plus GET /health. Stop with Ctrl+C.`
	addressFlagName        = "address"
	addressFlagDescription = "listen address (default from configuration)"

	initUse               = "init"
	initShortDescription  = "write a default configuration file"
	initLongDescription   = "Write the default configuration to ./" + utils.ConfigFileName + " or, with --global, to ~/" +
		utils.GlobalConfigDirectoryName + "/" + utils.GlobalConfigFileName + "."
	globalFlagName        = "global"
	globalFlagDescription = "write the user-wide configuration"
	forceFlagName         = "force"
	forceFlagDescription  = "overwrite an existing configuration file"
	configWrittenFormat   = "configuration written to %s\n"
	defaultWatchPath      = "."
)

// createWatchCommand returns the watch subcommand.
func createWatchCommand(app *application) *cobra.Command {
	var style string
	var debounce time.Duration

	watchCommand := &cobra.Command{
		Use:     watchUse,
		Aliases: []string{watchAlias},
		Short:   watchShortDescription,
		Long:    watchLongDescription,
		Example: watchUsageExample,
		Args:    cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			if len(arguments) == 0 {
				arguments = []string{defaultWatchPath}
			}
			resolvedStyle, err := app.resolveStyle(style)
			if err != nil {
				return err
			}
			if !command.Flags().Changed(debounceFlagName) {
				debounce = app.configuration.WatchDebounce()
			}
			watcher, err := watch.New(watch.Options{
				Paths:    arguments,
				Style:    resolvedStyle,
				Debounce: debounce,
				Logger:   app.logger,
			})
			if err != nil {
				return err
			}
			defer watcher.Close()
			return watcher.Run(command.Context())
		},
	}

	watchCommand.Flags().StringVar(&style, styleFlagName, "", styleFlagDescription)
	watchCommand.Flags().DurationVar(&debounce, debounceFlagName, config.DefaultWatchDebounce, debounceFlagDescription)
	return watchCommand
}

// createServeCommand returns the serve subcommand.
func createServeCommand(app *application) *cobra.Command {
	var address string
	var style string

	serveCommand := &cobra.Command{
		Use:   serveUse,
		Short: serveShortDescription,
		Long:  serveLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			resolvedStyle, err := app.resolveStyle(style)
			if err != nil {
				return err
			}
			defaults := app.configuration.EditorOptions("")
			defaults.Style = resolvedStyle
			listenAddress := address
			if listenAddress == "" {
				listenAddress = app.configuration.ServeAddress()
			}
			return api.NewServer(defaults, app.logger).ListenAndServe(command.Context(), listenAddress)
		},
	}

	serveCommand.Flags().StringVar(&address, addressFlagName, "", addressFlagDescription)
	serveCommand.Flags().StringVar(&style, styleFlagName, "", styleFlagDescription)
	return serveCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand(app *application) *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		// init must work even when the existing configuration does not load.
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return nil
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			path, err := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: app.workingDirectory,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(command.OutOrStdout(), configWrittenFormat, path)
			return err
		},
	}

	initCommand.Flags().BoolVar(&global, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&force, forceFlagName, false, forceFlagDescription)
	return initCommand
}
