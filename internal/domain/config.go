package domain

// KeyPrefix is the default storage namespace for every key the service writes.
const KeyPrefix = "similar:"

// Default similarity settings, used when neither the config file nor the caller overrides them.
const (
	DefaultField           = "tags"
	DefaultThreshold       = 0.1
	DefaultDelimiter       = ","
	DefaultCacheTTLMinutes = 60 * 24 * 7
)
