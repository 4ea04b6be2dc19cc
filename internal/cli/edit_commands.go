package cli

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/treetext/internal/document"
	"github.com/temirov/treetext/internal/editor"
	"github.com/temirov/treetext/internal/types"
)

const (
	indentUse              = "indent [path]"
	outdentUse             = "outdent [path]"
	insertUse              = "insert [path]"
	indentShortDescription = "move the nodes under a selection one level deeper"
	outdentShortDesc       = "move the nodes under a selection one level up"
	insertShortDescription = "add an empty sibling next to the node under the cursor"
	shiftLongDescription   = `Shift the tree nodes addressed by --line (and --end-line for a range) and re-render the block.
A single line carries its children along unless --node-only is given or the configuration turns
indent_subtree_on_single_cursor off. A range always moves whole subtrees.
The document is read from the path argument or standard input and printed to standard output.`
	insertLongDescription = `Insert an empty node at the depth of the node on --line.
The new node goes after the whole subtree, or before the node when --before is given or the
cursor sits between the branch marker and the text.`
	editUsageExample = `  # Indent the node on line 4 together with its children
  treetext indent --line 4 layout.tree

  # Outdent lines 3 to 6 and store the result
  treetext outdent --line 3 --end-line 6 --write layout.tree

  # Add a sibling before the node on line 2
  treetext insert --line 2 --before layout.tree`

	lineFlagName                = "line"
	lineFlagDescription         = "1-based line of the cursor"
	characterFlagName           = "character"
	characterFlagDescription    = "1-based column of the cursor"
	endLineFlagName             = "end-line"
	endLineFlagDescription      = "1-based last line of the selection (default: --line)"
	endCharacterFlagName        = "end-character"
	endCharacterFlagDescription = "1-based column on --end-line (default: end of line)"
	nodeOnlyFlagName            = "node-only"
	nodeOnlyFlagDescription     = "leave the children of a single node in place"
	beforeFlagName              = "before"
	beforeFlagDescription       = "insert before the node instead of after its subtree"

	lineRequiredMessage       = "--line must be 1 or greater"
	lineOutOfRangeFormat      = "line %d is outside a document of %d lines"
	selectionOrderFormat      = "--end-line %d is before --line %d"
	notTreeLineMessage        = "cursor is not on a tree line; document left unchanged"
	documentUpdatedMessage    = "document updated"
	nodeInsertedMessage       = "node inserted"
	pathField                 = "path"
	lineField                 = "line"
	characterField            = "character"
	replacedLinesField        = "replaced_lines"
	commandField              = "command"
	oneBasedOffset            = 1
	defaultOneBasedCoordinate = 1
)

type cursorOptions struct {
	line         int
	character    int
	endLine      int
	endCharacter int
	write        bool
}

func (options cursorOptions) position(lineCount int) (types.Position, error) {
	if options.line < defaultOneBasedCoordinate {
		return types.Position{}, fmt.Errorf(lineRequiredMessage)
	}
	if options.line > lineCount {
		return types.Position{}, fmt.Errorf(lineOutOfRangeFormat, options.line, lineCount)
	}
	return types.Position{Line: options.line - oneBasedOffset, Character: oneBased(options.character)}, nil
}

func (options cursorOptions) selection(lines []string) (types.Selection, error) {
	start, err := options.position(len(lines))
	if err != nil {
		return types.Selection{}, err
	}
	if options.endLine == 0 {
		return types.Selection{Start: start, End: start}, nil
	}
	if options.endLine < options.line {
		return types.Selection{}, fmt.Errorf(selectionOrderFormat, options.endLine, options.line)
	}
	if options.endLine > len(lines) {
		return types.Selection{}, fmt.Errorf(lineOutOfRangeFormat, options.endLine, len(lines))
	}
	end := types.Position{Line: options.endLine - oneBasedOffset}
	if options.endCharacter < defaultOneBasedCoordinate {
		end.Character = utf8.RuneCountInString(lines[end.Line])
	} else {
		end.Character = options.endCharacter - oneBasedOffset
	}
	return types.Selection{Start: start, End: end}, nil
}

func oneBased(coordinate int) int {
	if coordinate < defaultOneBasedCoordinate {
		return 0
	}
	return coordinate - oneBasedOffset
}

func addCursorFlags(command *cobra.Command, options *cursorOptions) {
	command.Flags().IntVar(&options.line, lineFlagName, 0, lineFlagDescription)
	command.Flags().IntVar(&options.character, characterFlagName, defaultOneBasedCoordinate, characterFlagDescription)
	registerToggleFlag(command.Flags(), &options.write, writeFlagName, false, writeFlagDescription)
}

// createShiftCommand returns the indent or outdent subcommand.
func createShiftCommand(app *application, commandName string) *cobra.Command {
	var cursor cursorOptions
	var nodeOnly bool
	var style string
	var kind string

	use, short, delta := indentUse, indentShortDescription, 1
	if commandName == types.CommandOutdent {
		use, short, delta = outdentUse, outdentShortDesc, -1
	}

	shiftCommand := &cobra.Command{
		Use:     use,
		Short:   short,
		Long:    shiftLongDescription,
		Example: editUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			source, err := app.loadEditableDocument(command, arguments, kind, cursor.write)
			if err != nil {
				return err
			}
			options, err := app.editOptions(source, style)
			if err != nil {
				return err
			}
			if nodeOnly {
				options.IndentSubtreeOnSingleCursor = false
			}
			selection, err := cursor.selection(source.document.Lines)
			if err != nil {
				return err
			}
			replacement, handled := editor.ShiftSelection(source.document.Lines, selection, delta, options)
			if !handled {
				return app.passThrough(command, source, cursor.write, commandName)
			}
			return app.applyEdit(command, source, replacement, cursor.write, commandName)
		},
	}

	addCursorFlags(shiftCommand, &cursor)
	shiftCommand.Flags().IntVar(&cursor.endLine, endLineFlagName, 0, endLineFlagDescription)
	shiftCommand.Flags().IntVar(&cursor.endCharacter, endCharacterFlagName, 0, endCharacterFlagDescription)
	shiftCommand.Flags().BoolVar(&nodeOnly, nodeOnlyFlagName, false, nodeOnlyFlagDescription)
	shiftCommand.Flags().StringVar(&style, styleFlagName, "", styleFlagDescription)
	shiftCommand.Flags().StringVar(&kind, kindFlagName, types.KindTree, kindFlagDescription)
	return shiftCommand
}

// createInsertCommand returns the insert subcommand.
func createInsertCommand(app *application) *cobra.Command {
	var cursor cursorOptions
	var before bool
	var style string
	var kind string

	insertCommand := &cobra.Command{
		Use:     insertUse,
		Short:   insertShortDescription,
		Long:    insertLongDescription,
		Example: editUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			source, err := app.loadEditableDocument(command, arguments, kind, cursor.write)
			if err != nil {
				return err
			}
			options, err := app.editOptions(source, style)
			if err != nil {
				return err
			}
			position, err := cursor.position(len(source.document.Lines))
			if err != nil {
				return err
			}
			var replacement types.Replacement
			var inserted types.Position
			var handled bool
			if before {
				replacement, inserted, handled = editor.InsertAt(source.document.Lines, position.Line, true, options)
			} else {
				replacement, inserted, handled = editor.Insert(source.document.Lines, position, options)
			}
			if !handled {
				return app.passThrough(command, source, cursor.write, types.CommandInsert)
			}
			app.logger.Info(nodeInsertedMessage,
				zap.String(pathField, source.name()),
				zap.Int(lineField, inserted.Line+oneBasedOffset),
				zap.Int(characterField, inserted.Character+oneBasedOffset),
			)
			return app.applyEdit(command, source, replacement, cursor.write, types.CommandInsert)
		},
	}

	addCursorFlags(insertCommand, &cursor)
	insertCommand.Flags().BoolVar(&before, beforeFlagName, false, beforeFlagDescription)
	insertCommand.Flags().StringVar(&style, styleFlagName, "", styleFlagDescription)
	insertCommand.Flags().StringVar(&kind, kindFlagName, types.KindTree, kindFlagDescription)
	return insertCommand
}

func (app *application) loadEditableDocument(command *cobra.Command, arguments []string, stdinKind string, write bool) (documentSource, error) {
	source, err := loadDocument(command, firstArgument(arguments), stdinKind)
	if err != nil {
		return documentSource{}, err
	}
	if write && source.fromStandardInput() {
		return documentSource{}, fmt.Errorf(writeNeedsPathMessage)
	}
	return source, nil
}

func (app *application) editOptions(source documentSource, styleFlag string) (editor.Options, error) {
	style, err := app.resolveStyle(styleFlag)
	if err != nil {
		return editor.Options{}, err
	}
	options := app.configuration.EditorOptions(source.kind)
	options.Style = style
	return options, nil
}

// applyEdit splices replacement into the document and either stores it or prints it.
func (app *application) applyEdit(command *cobra.Command, source documentSource, replacement types.Replacement, write bool, commandName string) error {
	updated, err := source.document.ApplyReplacement(replacement)
	if err != nil {
		return err
	}
	if !write {
		_, err = io.WriteString(command.OutOrStdout(), updated.String())
		return err
	}
	if err := document.WriteFile(source.path, updated); err != nil {
		return err
	}
	app.logger.Info(documentUpdatedMessage,
		zap.String(commandField, commandName),
		zap.String(pathField, source.path),
		zap.Int(replacedLinesField, replacement.Block.Len()),
	)
	return nil
}

// passThrough leaves the document alone. Printing it keeps "treetext indent" usable as a filter.
func (app *application) passThrough(command *cobra.Command, source documentSource, write bool, commandName string) error {
	app.logger.Warn(notTreeLineMessage, zap.String(commandField, commandName), zap.String(pathField, source.name()))
	if write {
		return nil
	}
	_, err := io.WriteString(command.OutOrStdout(), source.document.String())
	return err
}
