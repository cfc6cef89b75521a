// Package vectorstore persists chunk embeddings in SQLite and answers
// brute-force cosine similarity queries. Rows are partitioned by generation:
// a corpus replacement writes a complete new generation, flips the durable
// current-generation pointer, and only then retires older rows, so readers
// never observe a partially written corpus.
package vectorstore
