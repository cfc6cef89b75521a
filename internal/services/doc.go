// Package services defines the shared error taxonomy and retry helper
// used by components that talk to external capabilities: the embedding
// provider and the backing vector index.
package services
