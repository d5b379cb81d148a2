package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Import    ImportConfig    `mapstructure:"import"    validate:"required"`
	Notify    NotifyConfig    `mapstructure:"notify"    validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error fatal"`
	// LogFile enables a daily rotated copy of the log output when non-empty.
	LogFile            string   `mapstructure:"log_file"`
	LogMaxAgeHours     int      `mapstructure:"log_max_age_hours"    validate:"gte=0"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins" validate:"required,min=1"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	ClockSkewSeconds     int    `mapstructure:"clock_skew_seconds"     validate:"gte=0"`
	BcryptCost           int    `mapstructure:"bcrypt_cost"            validate:"gte=4,lte=31"`
	// AdminEmails is the allow-list of administrator accounts. It is read once
	// at startup and never changes while the process runs.
	AdminEmails []string `mapstructure:"admin_emails" validate:"dive,email"`
}

// SchedulerConfig controls the periodic deadline scan.
type SchedulerConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	IntervalSeconds  int  `mapstructure:"interval_seconds"  validate:"required,gt=0"`
	LookaheadMinutes int  `mapstructure:"lookahead_minutes" validate:"required,gt=0"`
	// ReportOverdue also reports open tasks whose deadline has already passed.
	ReportOverdue bool `mapstructure:"report_overdue"`
}

// ImportConfig points the spreadsheet importer at its source file.
type ImportConfig struct {
	SpreadsheetPath string `mapstructure:"spreadsheet_path" validate:"required"`
	// Sheet defaults to the first sheet when empty.
	Sheet string `mapstructure:"sheet"`
}

// NotifyConfig contains settings for deadline notifications.
type NotifyConfig struct {
	// NodeID identifies this process in generated notification IDs.
	NodeID int64 `mapstructure:"node_id" validate:"gte=0,lte=1023"`
}
