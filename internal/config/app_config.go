// Package config loads treetext settings from the global and project YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/temirov/treetext/internal/editor"
	"github.com/temirov/treetext/internal/output"
	"github.com/temirov/treetext/internal/types"
	"github.com/temirov/treetext/internal/utils"
)

const (
	// DefaultWatchDebounce is the quiet period the watcher waits for before normalizing.
	DefaultWatchDebounce = 150 * time.Millisecond
	// DefaultServeAddress is where the HTTP API listens when nothing is configured.
	DefaultServeAddress  = "127.0.0.1:8765"

	workingDirectoryErrorFormat    = "determine working directory: %w"
	resolvePathErrorFormat         = "resolve configuration path %s: %w"
	statConfigurationErrorFormat   = "stat configuration %s: %w"
	directoryConfigurationFormat   = "configuration path %s is a directory"
	readConfigurationErrorFormat   = "read configuration from %s: %w"
	decodeConfigurationErrorFormat = "decode configuration from %s: %w"
	unsupportedStyleFormat         = "unsupported style %q (expected %s or %s)"
	unsupportedStructureFormat     = "unsupported structure format %q (expected %s, %s or %s)"
	negativeDebounceFormat         = "watch debounce must not be negative, got %s"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds every setting the commands read. Unset pointers and empty
// strings mean "not configured" so that merging can tell them apart from explicit values.
type ApplicationConfiguration struct {
	Style                       string                 `mapstructure:"style"`
	IndentSubtreeOnSingleCursor *bool                  `mapstructure:"indent_subtree_on_single_cursor"`
	LogLevel                    string                 `mapstructure:"log_level"`
	Format                      FormatConfiguration    `mapstructure:"format"`
	Structure                   StructureConfiguration `mapstructure:"structure"`
	Watch                       WatchConfiguration     `mapstructure:"watch"`
	Serve                       ServeConfiguration     `mapstructure:"serve"`
}

// FormatConfiguration holds defaults of the format command.
type FormatConfiguration struct {
	Copy *bool `mapstructure:"copy"`
}

// StructureConfiguration holds defaults of the structure command.
type StructureConfiguration struct {
	Format string `mapstructure:"format"`
}

// WatchConfiguration holds defaults of the watch command.
type WatchConfiguration struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// ServeConfiguration holds defaults of the serve command.
type ServeConfiguration struct {
	Address string `mapstructure:"address"`
}

// LoadApplicationConfiguration reads the global file, then the local or explicit file on top of it.
// Missing files are not an error.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf(workingDirectoryErrorFormat, err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	localConfig, loadErr := loadConfigurationFromPath(localPath)
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	if validationErr := merged.Validate(); validationErr != nil {
		return ApplicationConfiguration{}, validationErr
	}
	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.ConfigFileName), nil
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath, nil
	}
	if workingDirectory == "" {
		absolute, err := filepath.Abs(explicitPath)
		if err != nil {
			return "", fmt.Errorf(resolvePathErrorFormat, explicitPath, err)
		}
		return absolute, nil
	}
	return filepath.Join(workingDirectory, explicitPath), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf(statConfigurationErrorFormat, path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf(directoryConfigurationFormat, path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(readConfigurationErrorFormat, path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(decodeConfigurationErrorFormat, path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if override.Style != "" {
		result.Style = override.Style
	}
	if override.IndentSubtreeOnSingleCursor != nil {
		result.IndentSubtreeOnSingleCursor = cloneBool(override.IndentSubtreeOnSingleCursor)
	}
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.Format.Copy != nil {
		result.Format.Copy = cloneBool(override.Format.Copy)
	}
	if override.Structure.Format != "" {
		result.Structure.Format = override.Structure.Format
	}
	if override.Watch.Debounce != 0 {
		result.Watch.Debounce = override.Watch.Debounce
	}
	if override.Serve.Address != "" {
		result.Serve.Address = override.Serve.Address
	}
	return result
}

// Validate rejects values no command could act on.
func (config ApplicationConfiguration) Validate() error {
	if config.Style != "" && !output.IsSupportedStyle(config.Style) {
		return fmt.Errorf(unsupportedStyleFormat, config.Style, types.StyleUnicode, types.StyleASCII)
	}
	if config.Structure.Format != "" && !output.IsSupportedFormat(config.Structure.Format) {
		return fmt.Errorf(unsupportedStructureFormat, config.Structure.Format, types.FormatRaw, types.FormatJSON, types.FormatXML)
	}
	if config.Watch.Debounce < 0 {
		return fmt.Errorf(negativeDebounceFormat, config.Watch.Debounce)
	}
	return nil
}

// EditorOptions resolves the editor settings for a document of the given kind.
func (config ApplicationConfiguration) EditorOptions(kind string) editor.Options {
	options := editor.DefaultOptions()
	if config.Style != "" {
		options.Style = config.Style
	}
	if config.IndentSubtreeOnSingleCursor != nil {
		options.IndentSubtreeOnSingleCursor = *config.IndentSubtreeOnSingleCursor
	}
	if kind != "" {
		options.Kind = kind
	}
	return options
}

// StructureFormat returns the configured structure format or raw.
func (config ApplicationConfiguration) StructureFormat() string {
	if config.Structure.Format == "" {
		return types.FormatRaw
	}
	return config.Structure.Format
}

// WatchDebounce returns the configured debounce or DefaultWatchDebounce.
func (config ApplicationConfiguration) WatchDebounce() time.Duration {
	if config.Watch.Debounce == 0 {
		return DefaultWatchDebounce
	}
	return config.Watch.Debounce
}

// ServeAddress returns the configured listen address or DefaultServeAddress.
func (config ApplicationConfiguration) ServeAddress() string {
	if config.Serve.Address == "" {
		return DefaultServeAddress
	}
	return config.Serve.Address
}

// CopyEnabled reports whether formatted output should also go to the clipboard.
func (config ApplicationConfiguration) CopyEnabled() bool {
	return config.Format.Copy != nil && *config.Format.Copy
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
