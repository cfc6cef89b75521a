// Package embedding defines the contract consumed from the external
// embedding provider and the vector math shared by the index and matcher.
package embedding
