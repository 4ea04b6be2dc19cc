// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/treetext/internal/config"
	"github.com/temirov/treetext/internal/output"
	"github.com/temirov/treetext/internal/services/clipboard"
	"github.com/temirov/treetext/internal/types"
	"github.com/temirov/treetext/internal/utils"
)

const (
	versionFlagName      = "version"
	configFlagName       = "config"
	logLevelFlagName     = "log-level"
	versionTemplate      = "treetext version: %s\n"
	rootUse              = "treetext"
	rootShortDescription = "treetext command line interface"
	rootLongDescription  = `treetext keeps box-drawing file trees tidy.
It re-renders tree blocks in .tree files and in markdown fences tagged "tree", indents and outdents
nodes without breaking the branch glyphs, and reports folding ranges and decorations.
Use --config to point at a configuration file and --version to print the application version.`

	versionFlagDescription  = "display application version"
	configFlagDescription   = "configuration file to use instead of ./" + utils.ConfigFileName
	logLevelFlagDescription = "log level (debug, info, warn, error)"

	styleFlagName          = "style"
	styleFlagDescription   = "glyph set: unicode or ascii (default from configuration)"
	formatFlagName         = "format"
	kindFlagName           = "kind"
	kindFlagDescription    = "document kind of standard input: tree or markdown"
	writeFlagName          = "write"
	writeFlagDescription   = "write the result back to the file"
	invalidFormatMessage   = "invalid format value '%s'"
	invalidStyleMessage    = "invalid style value '%s'"
	invalidKindMessage     = "invalid kind value '%s'"
	stdinDocumentName      = "<stdin>"
	writeNeedsPathMessage  = "--write needs a file argument"
	loadConfigurationError = "load configuration: %w"
	buildLoggerErrorFormat = "build logger: %w"
)

// application carries what every command needs once the root command has resolved its flags.
type application struct {
	logger           *zap.Logger
	configuration    config.ApplicationConfiguration
	configPath       string
	logLevel         string
	workingDirectory string
	copier           clipboard.Copier
}

// Execute runs the treetext application.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &application{copier: clipboard.NewService()}
	rootCommand := createRootCommand(app)
	rootCommand.SetArgs(normalizeToggleArguments(rootCommand, os.Args[1:]))
	executeErr := rootCommand.ExecuteContext(ctx)
	if app.logger != nil {
		_ = app.logger.Sync()
	}
	return executeErr
}

// createRootCommand builds the root Cobra command.
func createRootCommand(app *application) *cobra.Command {
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				_, err := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.GetApplicationVersion())
				return err
			}
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return app.prepare()
		},
	}
	rootCommand.Flags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&app.configPath, configFlagName, "", configFlagDescription)
	rootCommand.PersistentFlags().StringVar(&app.logLevel, logLevelFlagName, "", logLevelFlagDescription)
	rootCommand.AddCommand(
		createFormatCommand(app),
		createShiftCommand(app, types.CommandIndent),
		createShiftCommand(app, types.CommandOutdent),
		createInsertCommand(app),
		createStructureCommand(app),
		createHighlightCommand(app),
		createWatchCommand(app),
		createServeCommand(app),
		createInitCommand(app),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// prepare loads the configuration and builds the logger. Flags win over configuration.
func (app *application) prepare() error {
	loaded, err := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: app.workingDirectory,
		ExplicitFilePath: app.configPath,
	})
	if err != nil {
		return fmt.Errorf(loadConfigurationError, err)
	}
	app.configuration = loaded
	if app.logger != nil {
		return nil
	}
	level := loaded.LogLevel
	if app.logLevel != "" {
		level = app.logLevel
	}
	logger, err := utils.NewApplicationLogger(level)
	if err != nil {
		return fmt.Errorf(buildLoggerErrorFormat, err)
	}
	app.logger = logger
	return nil
}

// resolveStyle prefers the flag, then the configuration, then unicode.
func (app *application) resolveStyle(flagValue string) (string, error) {
	style := flagValue
	if style == "" {
		style = app.configuration.EditorOptions("").Style
	}
	if !output.IsSupportedStyle(style) {
		return "", fmt.Errorf(invalidStyleMessage, style)
	}
	return style, nil
}

func isSupportedKind(kind string) bool {
	return kind == types.KindTree || kind == types.KindMarkdown
}
