// Package textutil provides the lexical text comparison used to verify
// semantic matches: tokenization and word-overlap scoring. Embedding
// similarity alone accepts paraphrases; the overlap gate requires the
// matched reference text to actually contain the query's words.
package textutil
