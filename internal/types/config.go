package types

type RunMode string

const (
	// ModeLocal runs the API server with startup credential loading and premise registration
	ModeLocal RunMode = "local"
	// ModeAPI runs just the API server, premises are registered on demand
	ModeAPI RunMode = "api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
