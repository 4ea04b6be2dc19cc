// Package utils holds the process-level helpers shared by the treetext binary: logger construction,
// version lookup and the names of configuration files.
package utils

const (
	// ConfigFileName is the name of the project-local configuration file.
	ConfigFileName = ".treetext.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = ".treetext"
	// GlobalConfigFileName is the file name inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"

	// LoggerInitializationFailedMessageFormat reports a logger that could not be built.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes the fatal error printed by main.
	ApplicationExecutionFailedMessage = "treetext execution failed"
)
