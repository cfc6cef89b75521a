// Package corpus manages the lifecycle of the indexed reference corpus:
// replacement, clearing, and snapshot-consistent queries over the vector
// store's generations.
package corpus
