package env

var (
	// LogLevel controls the verbosity of diagnostic logging on stderr.
	// Accepts debug, info, warn and error.
	LogLevel = RegisterSetting("ADAPTERMIGRATE_LOG_LEVEL", WithDefault("info"), StripAnyWhitespace())

	// LogEncoding selects the zap encoder, either "console" or "json".
	LogEncoding = RegisterSetting("ADAPTERMIGRATE_LOG_ENCODING", WithDefault("console"), StripAnyWhitespace())

	// NoColor disables colored status output on the console.
	NoColor = RegisterBooleanSetting("ADAPTERMIGRATE_NO_COLOR", false)
)
