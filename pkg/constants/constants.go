// Package constants provides shared constants for the project-appraisal application.
package constants

import "time"

// Project parameter bounds
const (
	// MinLifespanYears is the shortest accepted project life.
	MinLifespanYears = 1

	// MaxLifespanYears is the longest accepted project life.
	MaxLifespanYears = 100

	// MaxAmount caps investment, revenue and cost so every cash flow and
	// discounted sum over MaxLifespanYears stays finite.
	MaxAmount = 1e15

	// MaxPercentage is the upper bound for WACC and tax rate inputs.
	MaxPercentage = 100.0

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Solver constants
const (
	// IRRGuess is the starting rate for the IRR solver (10%).
	IRRGuess = 0.1

	// IRRTolerance is the rate step below which the solver has converged.
	IRRTolerance = 1e-12

	// IRRMaxIterations caps Newton and bisection steps.
	IRRMaxIterations = 200

	// IRRUpperBound is the largest rate scanned when bracketing roots.
	IRRUpperBound = 1e6
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Display defaults
const (
	// DefaultCurrency is the unit appended to monetary amounts.
	DefaultCurrency = "VND"

	// DefaultLocale is the language used for labels and number grouping.
	DefaultLocale = "en"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment overrides of config keys.
	EnvPrefix = "APPRAISAL"
)

// AI defaults
const (
	// DefaultAIProvider is the only provider wired today.
	DefaultAIProvider = "gemini"

	// DefaultAIModel is the Gemini model used for extraction and analysis.
	DefaultAIModel = "gemini-2.5-flash"

	// CachePingTimeout bounds the startup connectivity check of the cache.
	CachePingTimeout = 3 * time.Second

	// DefaultAITimeout bounds a single AI call.
	DefaultAITimeout = 60 * time.Second

	// DefaultAPIKeyEnv is the environment variable holding the provider key.
	DefaultAPIKeyEnv = "GEMINI_API_KEY"

	// MinAPIKeyLength is the shortest key accepted as plausibly valid.
	MinAPIKeyLength = 20
)

// Cache defaults
const (
	// CacheBackendMemory keeps results in process.
	CacheBackendMemory = "memory"

	// CacheBackendRedis keeps results in Redis.
	CacheBackendRedis = "redis"

	// CacheBackendNone disables memoization.
	CacheBackendNone = "none"

	// DefaultCacheTTL matches the lifetime of cached extraction responses.
	DefaultCacheTTL = time.Hour
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for business plans (1 MB)
	DefaultMaxUploadSizeBytes int64 = 1024 * 1024
)
