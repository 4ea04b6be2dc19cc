package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/temirov/treetext/internal/types"
	"github.com/temirov/treetext/internal/utils"
)

type configTestCase struct {
	name                string
	globalContent       string
	localContent        string
	explicitPath        string
	explicitContent     string
	expectStyle         string
	expectIndentSubtree *bool
	expectStructure     string
	expectDebounce      time.Duration
	expectAddress       string
	expectCopy          bool
	expectError         bool
}

func boolPointer(value bool) *bool {
	pointer := value
	return &pointer
}

func TestLoadApplicationConfigurationMergesSources(t *testing.T) {
	testCases := []configTestCase{
		{
			name:                "local_overrides_global",
			globalContent:       "style: ascii\nindent_subtree_on_single_cursor: false\nformat:\n  copy: true\n",
			localContent:        "style: unicode\nstructure:\n  format: json\nwatch:\n  debounce: 2s\n",
			expectStyle:         types.StyleUnicode,
			expectIndentSubtree: boolPointer(false),
			expectStructure:     types.FormatJSON,
			expectDebounce:      2 * time.Second,
			expectAddress:       DefaultServeAddress,
			expectCopy:          true,
		},
		{
			name:            "explicit_path_replaces_local",
			globalContent:   "serve:\n  address: 0.0.0.0:9000\n",
			localContent:    "style: unicode\n",
			explicitPath:    "custom.yaml",
			explicitContent: "style: ascii\n",
			expectStyle:     types.StyleASCII,
			expectStructure: types.FormatRaw,
			expectDebounce:  DefaultWatchDebounce,
			expectAddress:   "0.0.0.0:9000",
		},
		{
			name:            "no_files",
			expectStructure: types.FormatRaw,
			expectDebounce:  DefaultWatchDebounce,
			expectAddress:   DefaultServeAddress,
		},
		{
			name:         "unknown_style_rejected",
			localContent: "style: fancy\n",
			expectError:  true,
		},
		{
			name:          "unknown_structure_format_rejected",
			globalContent: "structure:\n  format: toml\n",
			expectError:   true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			homeDirectory := t.TempDir()
			workingDirectory := t.TempDir()
			configDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
			if err := os.MkdirAll(configDirectory, 0o755); err != nil {
				t.Fatalf("create config dir: %v", err)
			}
			if testCase.globalContent != "" {
				globalPath := filepath.Join(configDirectory, utils.GlobalConfigFileName)
				if err := os.WriteFile(globalPath, []byte(testCase.globalContent), 0o600); err != nil {
					t.Fatalf("write global config: %v", err)
				}
			}
			if testCase.localContent != "" {
				localPath := filepath.Join(workingDirectory, utils.ConfigFileName)
				if err := os.WriteFile(localPath, []byte(testCase.localContent), 0o600); err != nil {
					t.Fatalf("write local config: %v", err)
				}
			}
			if testCase.explicitPath != "" {
				target := filepath.Join(workingDirectory, testCase.explicitPath)
				if err := os.WriteFile(target, []byte(testCase.explicitContent), 0o600); err != nil {
					t.Fatalf("write explicit config: %v", err)
				}
			}

			t.Setenv("HOME", homeDirectory)
			t.Setenv("USERPROFILE", homeDirectory)

			loadedConfig, err := LoadApplicationConfiguration(LoadOptions{
				WorkingDirectory: workingDirectory,
				ExplicitFilePath: testCase.explicitPath,
			})
			if testCase.expectError {
				if err == nil {
					t.Fatalf("expected validation error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadApplicationConfiguration error: %v", err)
			}

			if loadedConfig.Style != testCase.expectStyle {
				t.Fatalf("expected style %q, got %q", testCase.expectStyle, loadedConfig.Style)
			}
			if testCase.expectIndentSubtree == nil {
				if loadedConfig.IndentSubtreeOnSingleCursor != nil {
					t.Fatalf("expected no indent_subtree_on_single_cursor override")
				}
			} else if loadedConfig.IndentSubtreeOnSingleCursor == nil || *loadedConfig.IndentSubtreeOnSingleCursor != *testCase.expectIndentSubtree {
				t.Fatalf("unexpected indent_subtree_on_single_cursor value")
			}
			if actual := loadedConfig.StructureFormat(); actual != testCase.expectStructure {
				t.Fatalf("expected structure format %q, got %q", testCase.expectStructure, actual)
			}
			if actual := loadedConfig.WatchDebounce(); actual != testCase.expectDebounce {
				t.Fatalf("expected debounce %s, got %s", testCase.expectDebounce, actual)
			}
			if actual := loadedConfig.ServeAddress(); actual != testCase.expectAddress {
				t.Fatalf("expected address %q, got %q", testCase.expectAddress, actual)
			}
			if actual := loadedConfig.CopyEnabled(); actual != testCase.expectCopy {
				t.Fatalf("expected copy %v, got %v", testCase.expectCopy, actual)
			}
		})
	}
}

func TestEditorOptionsResolvesDefaults(t *testing.T) {
	t.Parallel()

	defaults := ApplicationConfiguration{}.EditorOptions("")
	if defaults.Style != types.StyleUnicode || defaults.Kind != types.KindTree || !defaults.IndentSubtreeOnSingleCursor {
		t.Fatalf("unexpected defaults: %+v", defaults)
	}

	configured := ApplicationConfiguration{
		Style:                       types.StyleASCII,
		IndentSubtreeOnSingleCursor: boolPointer(false),
	}.EditorOptions(types.KindMarkdown)
	if configured.Style != types.StyleASCII || configured.Kind != types.KindMarkdown || configured.IndentSubtreeOnSingleCursor {
		t.Fatalf("unexpected configured options: %+v", configured)
	}
}

func TestMergeClonesPointers(t *testing.T) {
	t.Parallel()

	override := ApplicationConfiguration{Format: FormatConfiguration{Copy: boolPointer(true)}}
	merged := ApplicationConfiguration{}.Merge(override)
	*override.Format.Copy = false
	if !merged.CopyEnabled() {
		t.Fatalf("merged configuration shares pointer with override")
	}
}
