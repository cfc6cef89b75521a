// Package chunking turns ordered transcript segments into the timestamped
// text chunks that are embedded, indexed, and matched. Chunking is a pure
// function of its inputs: the same segments and config always produce the
// same chunk list, including chunk IDs.
package chunking
