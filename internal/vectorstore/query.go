package vectorstore

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"earmark/internal/embedding"
)

// Match pairs an indexed chunk with its similarity to a query vector.
type Match struct {
	Item       Item
	Similarity float64
}

// Query scans one generation and returns up to topK matches with similarity
// of at least minSimilarity, ordered by descending similarity with ties
// broken by ascending start time. The query vector must be unit-normalized.
func (s *Store) Query(ctx context.Context, generation int64, vector []float32, topK int, minSimilarity float64) ([]Match, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("query: empty vector")
	}
	if topK <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chunk_type, text, start_time, end_time, timed,
                segment_index, language, source_name, source_confidence, embedding
         FROM indexed_chunks WHERE generation = ?`, generation)
	if err != nil {
		return nil, fmt.Errorf("query generation %d: %w", generation, err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			item  Item
			timed int
			blob  []byte
		)
		if err := rows.Scan(&item.ID, &item.ChunkType, &item.Text, &item.Start, &item.End,
			&timed, &item.SegmentIndex, &item.Language, &item.SourceName,
			&item.SourceConfidence, &blob); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		item.Timed = timed != 0

		stored, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", item.ID, err)
		}
		item.Vector = stored

		similarity := embedding.Dot(vector, stored)
		if similarity < minSimilarity {
			continue
		}
		matches = append(matches, Match{Item: item, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		if matches[i].Item.Start != matches[j].Item.Start {
			return matches[i].Item.Start < matches[j].Item.Start
		}
		return matches[i].Item.ID < matches[j].Item.ID
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// encodeVector packs a vector as little-endian float32s.
func encodeVector(vector []float32) []byte {
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil, fmt.Errorf("malformed embedding blob of %d bytes", len(blob))
	}
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vector, nil
}
