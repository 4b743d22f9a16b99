package constants

import "time"

const (
	AppName            = "tracklit"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/tracklit"
	DefaultConfigPath  = "~/.config/tracklit/tracklit.db"
	ConfigFileName     = "config.yaml"
	MemoryStorePath    = ":memory:"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// InstantFormat is the wire format for due times and timestamps
	InstantFormat = time.RFC3339

	// Defaults
	DefaultUserID         = "local"
	DefaultTimezone       = "Local" // Use system local timezone by default
	DefaultNotifyWindow   = 5 * time.Minute
	DefaultStorageDriver  = "sqlite"
	DefaultListTimeLayout = "Mon Jan 2 15:04"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "tracklit-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.tracklit"

	// Storage drivers
	DriverSQLite   = "sqlite"
	DriverJSON     = "json"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)
