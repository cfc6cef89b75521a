package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateChunking(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateOpenAI(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateChunking() error {
	if c.Chunking.MaxSegmentLength <= 0 {
		return errors.New("chunking.max_segment_length must be positive")
	}
	if c.Chunking.MinChunkSize <= 0 {
		return errors.New("chunking.min_chunk_size must be positive")
	}
	if c.Chunking.MaxChunkSize <= 0 {
		return errors.New("chunking.max_chunk_size must be positive")
	}
	if c.Chunking.OverlapSize < 0 {
		return errors.New("chunking.overlap_size must be non-negative")
	}
	if c.Chunking.OverlapSize >= c.Chunking.MaxChunkSize {
		return errors.New("chunking.overlap_size must be smaller than chunking.max_chunk_size")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.TopK <= 0 {
		return errors.New("matching.top_k must be positive")
	}
	for name, value := range map[string]float64{
		"matching.min_similarity":      c.Matching.MinSimilarity,
		"matching.certainty_bar":       c.Matching.CertaintyBar,
		"matching.degraded_tolerance":  c.Matching.DegradedTolerance,
		"matching.short_query_floor":   c.Matching.ShortQueryFloor,
		"matching.lexical_overlap_min": c.Matching.LexicalOverlapMin,
	} {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	if c.Matching.StitchingToleranceSeconds < 0 {
		return errors.New("matching.stitching_tolerance_seconds must be non-negative")
	}
	if c.Matching.MinSupportCount < 1 {
		return errors.New("matching.min_support_count must be >= 1")
	}
	if c.Matching.ShortQueryChars < 0 {
		return errors.New("matching.short_query_chars must be non-negative")
	}
	return nil
}

func (c *Config) validateOpenAI() error {
	if c.OpenAI.TimeoutSeconds <= 0 {
		return errors.New("openai.timeout_seconds must be positive")
	}
	if c.OpenAI.BatchSize <= 0 {
		return errors.New("openai.batch_size must be positive")
	}
	if c.OpenAI.RetryMaxAttempts <= 0 {
		return errors.New("openai.retry_max_attempts must be positive")
	}
	return nil
}
