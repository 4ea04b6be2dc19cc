package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/treetext/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes .treetext.yaml into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes config.yaml into ~/.treetext.
	InitTargetGlobal InitTarget = "global"

	defaultConfigurationTemplate = `# Glyph set used when trees are rendered: unicode or ascii.
style: unicode
# Indent and outdent a single node together with its children.
indent_subtree_on_single_cursor: true
log_level: info
format:
  copy: false
structure:
  format: raw
watch:
  debounce: 150ms
serve:
  address: 127.0.0.1:8765
`

	initWorkingDirectoryErrorFormat = "determine working directory for configuration: %w"
	initHomeDirectoryErrorFormat    = "resolve home directory for configuration: %w"
	initCreateDirectoryErrorFormat  = "create configuration directory %s: %w"
	initUnsupportedTargetFormat     = "unsupported init target %q"
	initExistingFileFormat          = "configuration file already exists at %s"
	initInspectErrorFormat          = "inspect configuration path %s: %w"
	initWriteErrorFormat            = "write configuration to %s: %w"
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// DefaultTemplate returns the YAML written by InitializeConfiguration.
func DefaultTemplate() string {
	return defaultConfigurationTemplate
}

// InitializeConfiguration writes the default configuration to the requested target and returns its path.
func InitializeConfiguration(options InitOptions) (string, error) {
	destinationPath, err := initDestination(options)
	if err != nil {
		return "", err
	}

	if _, statErr := os.Stat(destinationPath); statErr == nil {
		if !options.Force {
			return "", fmt.Errorf(initExistingFileFormat, destinationPath)
		}
	} else if !os.IsNotExist(statErr) {
		return "", fmt.Errorf(initInspectErrorFormat, destinationPath, statErr)
	}

	if writeErr := os.WriteFile(destinationPath, []byte(defaultConfigurationTemplate), 0o600); writeErr != nil {
		return "", fmt.Errorf(initWriteErrorFormat, destinationPath, writeErr)
	}
	return destinationPath, nil
}

func initDestination(options InitOptions) (string, error) {
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf(initWorkingDirectoryErrorFormat, err)
			}
			workingDirectory = current
		}
		return filepath.Join(workingDirectory, utils.ConfigFileName), nil
	case InitTargetGlobal:
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf(initHomeDirectoryErrorFormat, err)
		}
		configurationDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if err := os.MkdirAll(configurationDirectory, 0o755); err != nil {
			return "", fmt.Errorf(initCreateDirectoryErrorFormat, configurationDirectory, err)
		}
		return filepath.Join(configurationDirectory, utils.GlobalConfigFileName), nil
	default:
		return "", fmt.Errorf(initUnsupportedTargetFormat, target)
	}
}
