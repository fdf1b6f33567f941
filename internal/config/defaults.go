package config

const (
	defaultDataDir        = "~/.local/share/storyreel"
	defaultLogDir         = "~/.local/share/storyreel/logs"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultLLMProvider    = "openrouter"
	defaultLLMBaseURL     = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel       = "google/gemini-3-flash-preview"
	defaultLLMTimeoutSecs = 60

	defaultMinSimilarity         = 0.35
	defaultFastPathMinSimilarity = 0.90
	defaultFastPathMargin        = 0.15
	defaultSkipEdgePercent       = 0.07
	defaultSearchLimit           = 8
	defaultGranularity           = "segments"
	defaultWorkers               = 4
	defaultRetryMaxAttempts      = 3
	defaultRetryBaseDelayMS      = 500

	defaultFuzzyThreshold   = 0.5
	defaultReviewConfidence = 0.8

	defaultMaxGapSeconds    = 2.0
	defaultMinPeopleOverlap = 0.3
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		LLM: LLM{
			Provider:       defaultLLMProvider,
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSecs,
		},
		Search: Search{
			TimeoutSeconds: 30,
		},
		Match: Match{
			MinSimilarity:         defaultMinSimilarity,
			FastPathMinSimilarity: defaultFastPathMinSimilarity,
			FastPathMargin:        defaultFastPathMargin,
			SkipEdgePercent:       defaultSkipEdgePercent,
			SearchLimit:           defaultSearchLimit,
			Granularity:           defaultGranularity,
			Workers:               defaultWorkers,
			RetryMaxAttempts:      defaultRetryMaxAttempts,
			RetryBaseDelayMS:      defaultRetryBaseDelayMS,
		},
		Align: Align{
			FuzzyThreshold:   defaultFuzzyThreshold,
			ReviewConfidence: defaultReviewConfidence,
		},
		Cluster: Cluster{
			MaxGapSeconds:    defaultMaxGapSeconds,
			MinPeopleOverlap: defaultMinPeopleOverlap,
			LLMRefinement:    false,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
