package utils

// LoggerInitializationFailedMessageFormat reports a logger that could not be built.
const LoggerInitializationFailedMessageFormat = "failed to initialize logger: %v"

// ApplicationExecutionFailedMessage prefixes fatal errors reported by main.
const ApplicationExecutionFailedMessage = "docsnap failed"

// Configuration file locations.
const (
	// ConfigFileName is the name of the local configuration file.
	ConfigFileName = ".docsnap.yaml"
	// GlobalConfigDirectoryName is the directory under the user home holding the global configuration.
	GlobalConfigDirectoryName = ".docsnap"
	// GlobalConfigFileName is the name of the global configuration file.
	GlobalConfigFileName = "config.yaml"
)
