package config

const (
	defaultDataDir = "~/.local/share/earmark"

	defaultOpenAIBaseURL    = "https://api.openai.com/v1"
	defaultEmbeddingModel   = "text-embedding-3-small"
	defaultOpenAITimeout    = 30
	defaultEmbedBatchSize   = 100
	defaultRetryMaxAttempts = 3

	defaultMaxSegmentLength = 500
	defaultMinChunkSize     = 50
	defaultMaxChunkSize     = 1000
	defaultOverlapSize      = 200

	defaultTopK               = 5
	defaultMinSimilarity      = 0.70
	defaultCertaintyBar       = 0.95
	defaultStitchingTolerance = 0.5
	defaultMinSupportCount    = 1
	defaultDegradedTolerance  = 0.2
	defaultShortQueryChars    = 100
	defaultShortQueryFloor    = 0.5
	defaultLexicalOverlapMin  = 0.7

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		OpenAI: OpenAI{
			BaseURL:          defaultOpenAIBaseURL,
			Model:            defaultEmbeddingModel,
			TimeoutSeconds:   defaultOpenAITimeout,
			BatchSize:        defaultEmbedBatchSize,
			RetryMaxAttempts: defaultRetryMaxAttempts,
		},
		Chunking: Chunking{
			MaxSegmentLength: defaultMaxSegmentLength,
			MinChunkSize:     defaultMinChunkSize,
			MaxChunkSize:     defaultMaxChunkSize,
			OverlapSize:      defaultOverlapSize,
		},
		Matching: Matching{
			TopK:                      defaultTopK,
			MinSimilarity:             defaultMinSimilarity,
			CertaintyBar:              defaultCertaintyBar,
			StitchingToleranceSeconds: defaultStitchingTolerance,
			MinSupportCount:           defaultMinSupportCount,
			DegradedTolerance:         defaultDegradedTolerance,
			ShortQueryChars:           defaultShortQueryChars,
			ShortQueryFloor:           defaultShortQueryFloor,
			LexicalOverlapMin:         defaultLexicalOverlapMin,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
