// Package openaiembed implements the embedding provider on the OpenAI
// embeddings API. It sub-batches inputs, retries transient failures with
// backoff, and reports per-item outcomes so partial batch failures degrade
// results instead of aborting them.
package openaiembed
