package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/treetext/internal/output"
	"github.com/temirov/treetext/internal/structure"
	"github.com/temirov/treetext/internal/types"
)

const (
	structureUse              = "structure [paths...]"
	structureAlias            = "s"
	structureShortDescription = "report folding ranges and decorations (" + structureAlias + ")"
	structureLongDescription  = `Report the tree blocks, folding ranges and decoration spans of each document.
Lines are zero-based. Use --format to select raw, json, or xml output (default from configuration).`
	structureUsageExample = `  # Folding ranges of a markdown file as JSON
  treetext structure --format json README.md`

	highlightUse              = "highlight [path]"
	highlightShortDescription = "print a document with its trees coloured"
	highlightLongDescription  = `Print the document with tree prefixes, folders, files and comments painted.
Colours are dropped automatically when standard output is not a terminal.`

	lineBreak = "\n"
)

// createStructureCommand returns the structure subcommand.
func createStructureCommand(app *application) *cobra.Command {
	var outputFormat string
	var kind string

	structureCommand := &cobra.Command{
		Use:     structureUse,
		Aliases: []string{structureAlias},
		Short:   structureShortDescription,
		Long:    structureLongDescription,
		Example: structureUsageExample,
		Args:    cobra.ArbitraryArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			format := strings.ToLower(outputFormat)
			if format == "" {
				format = app.configuration.StructureFormat()
			}
			if !output.IsSupportedFormat(format) {
				return fmt.Errorf(invalidFormatMessage, format)
			}
			if len(arguments) == 0 {
				arguments = []string{standardInputArgument}
			}
			results := make([]types.StructureOutput, 0, len(arguments))
			for _, path := range arguments {
				source, err := loadDocument(command, path, kind)
				if err != nil {
					return err
				}
				result := structure.Query(source.document.Lines, source.kind)
				result.Path = source.path
				results = append(results, result)
			}
			rendered, err := output.RenderStructure(format, results)
			if err != nil {
				return err
			}
			return writeLine(command.OutOrStdout(), rendered)
		},
	}

	structureCommand.Flags().StringVar(&outputFormat, formatFlagName, "", formatFlagDescription)
	structureCommand.Flags().StringVar(&kind, kindFlagName, types.KindTree, kindFlagDescription)
	return structureCommand
}

// createHighlightCommand returns the highlight subcommand.
func createHighlightCommand(app *application) *cobra.Command {
	var kind string

	highlightCommand := &cobra.Command{
		Use:   highlightUse,
		Short: highlightShortDescription,
		Long:  highlightLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			source, err := loadDocument(command, firstArgument(arguments), kind)
			if err != nil {
				return err
			}
			lines := source.document.Lines
			decorations := structure.Query(lines, source.kind).Decorations
			painted := output.Highlight(lines, decorations, output.DefaultPalette())
			return writeLine(command.OutOrStdout(), strings.Join(painted, lineBreak))
		},
	}

	highlightCommand.Flags().StringVar(&kind, kindFlagName, types.KindTree, kindFlagDescription)
	return highlightCommand
}

func writeLine(writer io.Writer, text string) error {
	if text != "" && !strings.HasSuffix(text, lineBreak) {
		text += lineBreak
	}
	_, err := io.WriteString(writer, text)
	return err
}
