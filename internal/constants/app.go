package constants

// Application Information
const (
	AppName    = "Flatmarket API"
	AppVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Default Application Settings
const (
	DefaultPort        = "8080"
	DefaultEnvironment = EnvDevelopment
)

// Cache Key Prefixes
const (
	CacheKeyPrefix = "flatmarket:"
	CacheKeyFlats  = CacheKeyPrefix + "flats:"
	CacheKeyUser   = CacheKeyPrefix + "user:"
)

// Session cookie settings
const (
	SessionCookieName = "token"
	SessionCookiePath = "/"
)

// Log Levels
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
	LogLevelFatal = "fatal"
)
