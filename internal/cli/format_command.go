package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/treetext/internal/output"
	"github.com/temirov/treetext/internal/services/stream"
	"github.com/temirov/treetext/internal/types"
)

const (
	formatUse              = "format [paths...]"
	formatAlias            = "f"
	formatShortDescription = "re-render tree blocks (" + formatAlias + ")"
	formatLongDescription  = `Re-render every tree block of the given documents with canonical glyphs.
Directories are searched for .tree and markdown files. Without arguments the document is read
from standard input. Use --write to store the result and --format to select raw, json, or xml output.`
	formatUsageExample = `  # Normalize a tree from standard input
  cat layout.tree | treetext format

  # Rewrite every document below docs/ with ASCII glyphs
  treetext format --style ascii --write docs

  # Report what would change as JSON
  treetext format --format json layout.tree README.md`

	copyFlagName             = "copy"
	copyFlagDescription      = "copy the rendered output to the clipboard"
	formatFlagDescription    = "output format: raw, json, or xml"
	summaryFlagName          = "summary"
	summaryFlagDescription   = "print a totals line to stderr (raw format)"
	concurrencyFlagName      = "concurrency"
	concurrencyFlagDesc      = "documents processed at once"
	copiedToClipboardMessage = "copied output to clipboard"
	bytesField               = "bytes"
)

type formatCommandOptions struct {
	style        string
	kind         string
	outputFormat string
	write        bool
	copy         bool
	summary      bool
	concurrency  int
}

// createFormatCommand returns the format subcommand.
func createFormatCommand(app *application) *cobra.Command {
	var options formatCommandOptions

	formatCommand := &cobra.Command{
		Use:     formatUse,
		Aliases: []string{formatAlias},
		Short:   formatShortDescription,
		Long:    formatLongDescription,
		Example: formatUsageExample,
		Args:    cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			if !command.Flags().Changed(copyFlagName) {
				options.copy = app.configuration.CopyEnabled()
			}
			return app.runFormat(command, arguments, options)
		},
	}

	formatCommand.Flags().StringVar(&options.style, styleFlagName, "", styleFlagDescription)
	formatCommand.Flags().StringVar(&options.kind, kindFlagName, types.KindTree, kindFlagDescription)
	formatCommand.Flags().StringVar(&options.outputFormat, formatFlagName, types.FormatRaw, formatFlagDescription)
	formatCommand.Flags().IntVar(&options.concurrency, concurrencyFlagName, stream.DefaultConcurrency, concurrencyFlagDesc)
	registerToggleFlag(formatCommand.Flags(), &options.write, writeFlagName, false, writeFlagDescription)
	registerToggleFlag(formatCommand.Flags(), &options.copy, copyFlagName, false, copyFlagDescription)
	registerToggleFlag(formatCommand.Flags(), &options.summary, summaryFlagName, false, summaryFlagDescription)
	return formatCommand
}

func (app *application) runFormat(command *cobra.Command, arguments []string, options formatCommandOptions) (err error) {
	outputFormat := strings.ToLower(options.outputFormat)
	if !output.IsSupportedFormat(outputFormat) {
		return fmt.Errorf(invalidFormatMessage, outputFormat)
	}
	style, err := app.resolveStyle(options.style)
	if err != nil {
		return err
	}
	fromStandardInput := len(arguments) == 0 || (len(arguments) == 1 && arguments[0] == standardInputArgument)
	if fromStandardInput && options.write {
		return errors.New(writeNeedsPathMessage)
	}

	var captured bytes.Buffer
	stdout := command.OutOrStdout()
	if options.copy {
		stdout = io.MultiWriter(stdout, &captured)
	}
	renderer, err := output.NewStreamRenderer(outputFormat, stdout, command.ErrOrStderr(), output.RawStreamOptions{
		ShowHeaders:    len(arguments) > 1 && !options.write,
		ListOnly:       options.write,
		IncludeSummary: options.summary,
	})
	if err != nil {
		return err
	}
	defer func() {
		if flushErr := renderer.Flush(); flushErr != nil && err == nil {
			err = flushErr
		}
		if err == nil && options.copy {
			err = app.copyOutput(captured.String())
		}
	}()

	if fromStandardInput {
		return app.formatStandardInput(command, renderer, style, options.kind)
	}

	producer := func(streamCtx context.Context, events chan<- types.Event) error {
		return stream.StreamFormat(streamCtx, stream.FormatOptions{
			Paths:       arguments,
			Style:       style,
			Write:       options.write,
			Concurrency: options.concurrency,
		}, events)
	}
	return dispatchStream(command.Context(), producer, renderer.Handle)
}

// formatStandardInput feeds the renderer the same events a one-document batch would produce.
func (app *application) formatStandardInput(command *cobra.Command, renderer output.StreamRenderer, style string, kind string) error {
	source, err := loadDocument(command, "", kind)
	if err != nil {
		return err
	}
	options := app.configuration.EditorOptions(source.kind)
	options.Style = style
	file := stream.FormatText(source.name(), source.document, options)
	summary := types.SummaryEvent{Files: 1}
	if file.Changed() {
		summary.ChangedFiles = 1
		summary.ChangedLines = len(file.Changes)
	}
	events := []types.Event{
		{Version: types.StreamSchemaVersion, Kind: types.EventKindStart, Command: types.CommandFormat},
		{Version: types.StreamSchemaVersion, Kind: types.EventKindFile, Command: types.CommandFormat, Path: file.Path, File: &file},
		{Version: types.StreamSchemaVersion, Kind: types.EventKindSummary, Command: types.CommandFormat, Summary: &summary},
		{Version: types.StreamSchemaVersion, Kind: types.EventKindDone, Command: types.CommandFormat},
	}
	for _, event := range events {
		if err := renderer.Handle(event); err != nil {
			return err
		}
	}
	return nil
}

func (app *application) copyOutput(text string) error {
	if app.copier == nil {
		return nil
	}
	if err := app.copier.Copy(text); err != nil {
		return err
	}
	app.logger.Debug(copiedToClipboardMessage, zap.Int(bytesField, len(text)))
	return nil
}

func dispatchStream(
	ctx context.Context,
	produce func(context.Context, chan<- types.Event) error,
	consume func(types.Event) error,
) error {
	if ctx == nil {
		ctx = context.Background()
	}
	group, streamCtx := errgroup.WithContext(ctx)
	events := make(chan types.Event)

	group.Go(func() error {
		defer close(events)
		return produce(streamCtx, events)
	})

	group.Go(func() error {
		for {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := consume(event); err != nil {
					return err
				}
			}
		}
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
