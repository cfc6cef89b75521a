package vectorstore

import (
	"context"
	"math"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func unitVector(x, y, z float64) []float32 {
	norm := math.Sqrt(x*x + y*y + z*z)
	return []float32{float32(x / norm), float32(y / norm), float32(z / norm)}
}

func testItem(id string, start, end float64, vector []float32) Item {
	return Item{
		ID:        id,
		ChunkType: "segment",
		Text:      "text for " + id,
		Start:     start,
		End:       end,
		Timed:     true,
		Vector:    vector,
	}
}

func TestAllocateGenerationMonotonic(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	ctx := context.Background()
	first, err := store.AllocateGeneration(ctx)
	if err != nil {
		t.Fatalf("AllocateGeneration: %v", err)
	}
	second, err := store.AllocateGeneration(ctx)
	if err != nil {
		t.Fatalf("AllocateGeneration: %v", err)
	}
	if second <= first {
		t.Errorf("generations not increasing: %d then %d", first, second)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// The counter survives reopening so generations are never reused.
	reopened, err := Open(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	third, err := reopened.AllocateGeneration(ctx)
	if err != nil {
		t.Fatalf("AllocateGeneration after reopen: %v", err)
	}
	if third <= second {
		t.Errorf("generation reused after reopen: %d then %d", second, third)
	}
}

func TestQueryOrderingAndLimits(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	generation, err := store.AllocateGeneration(ctx)
	if err != nil {
		t.Fatalf("AllocateGeneration: %v", err)
	}
	items := []Item{
		testItem("far", 0, 1, unitVector(0, 1, 0)),
		testItem("close-late", 20, 21, unitVector(1, 0.2, 0)),
		testItem("close-early", 5, 6, unitVector(1, 0.2, 0)),
		testItem("exact", 10, 11, unitVector(1, 0, 0)),
	}
	if err := store.Upsert(ctx, generation, items); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	matches, err := store.Query(ctx, generation, unitVector(1, 0, 0), 10, 0.5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	wantOrder := []string{"exact", "close-early", "close-late"}
	if len(matches) != len(wantOrder) {
		t.Fatalf("len(matches) = %d, want %d", len(matches), len(wantOrder))
	}
	for i, want := range wantOrder {
		if matches[i].Item.ID != want {
			t.Errorf("matches[%d].ID = %q, want %q", i, matches[i].Item.ID, want)
		}
	}
	if matches[0].Similarity < 0.999 {
		t.Errorf("exact match similarity = %v, want ~1", matches[0].Similarity)
	}

	// top_k caps the result count after ordering.
	capped, err := store.Query(ctx, generation, unitVector(1, 0, 0), 2, 0.5)
	if err != nil {
		t.Fatalf("Query with topK: %v", err)
	}
	if len(capped) != 2 || capped[0].Item.ID != "exact" || capped[1].Item.ID != "close-early" {
		t.Errorf("capped matches = %v", capped)
	}

	// A floor above every similarity yields no matches, not an error.
	none, err := store.Query(ctx, generation, unitVector(0, 0, 1), 10, 0.5)
	if err != nil {
		t.Fatalf("Query above floor: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("matches above floor = %v, want none", none)
	}
}

func TestQuerySeesOnlyItsGeneration(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	oldGen, _ := store.AllocateGeneration(ctx)
	newGen, _ := store.AllocateGeneration(ctx)
	if err := store.Upsert(ctx, oldGen, []Item{testItem("old", 0, 1, unitVector(1, 0, 0))}); err != nil {
		t.Fatalf("Upsert old: %v", err)
	}
	if err := store.Upsert(ctx, newGen, []Item{testItem("new", 0, 1, unitVector(1, 0, 0))}); err != nil {
		t.Fatalf("Upsert new: %v", err)
	}

	matches, err := store.Query(ctx, newGen, unitVector(1, 0, 0), 10, 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 1 || matches[0].Item.ID != "new" {
		t.Errorf("matches = %v, want only the new generation", matches)
	}
}

func TestGenerationPointerLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.CurrentGeneration(ctx); err != nil || ok {
		t.Fatalf("CurrentGeneration on empty store = ok=%v err=%v, want no pointer", ok, err)
	}

	generation, _ := store.AllocateGeneration(ctx)
	if err := store.SetCurrentGeneration(ctx, generation); err != nil {
		t.Fatalf("SetCurrentGeneration: %v", err)
	}
	got, ok, err := store.CurrentGeneration(ctx)
	if err != nil || !ok || got != generation {
		t.Fatalf("CurrentGeneration = %d ok=%v err=%v, want %d", got, ok, err, generation)
	}

	if err := store.ClearCurrentGeneration(ctx); err != nil {
		t.Fatalf("ClearCurrentGeneration: %v", err)
	}
	if _, ok, _ := store.CurrentGeneration(ctx); ok {
		t.Error("pointer still present after clear")
	}
}

func TestRetireExceptAndDeleteAll(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	oldGen, _ := store.AllocateGeneration(ctx)
	newGen, _ := store.AllocateGeneration(ctx)
	_ = store.Upsert(ctx, oldGen, []Item{testItem("old", 0, 1, unitVector(1, 0, 0))})
	_ = store.Upsert(ctx, newGen, []Item{testItem("new", 0, 1, unitVector(1, 0, 0))})
	_ = store.SetCurrentGeneration(ctx, newGen)

	if err := store.RetireExcept(ctx, newGen); err != nil {
		t.Fatalf("RetireExcept: %v", err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalRows != 1 || stats.CurrentChunks != 1 || !stats.HasCurrent {
		t.Errorf("stats after retire = %+v", stats)
	}

	if err := store.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	stats, err = store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats after clear: %v", err)
	}
	if stats.TotalRows != 0 || stats.HasCurrent {
		t.Errorf("stats after clear = %+v", stats)
	}
}

func TestDeleteGenerationDiscardsPartialWrite(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	keepGen, _ := store.AllocateGeneration(ctx)
	partialGen, _ := store.AllocateGeneration(ctx)
	_ = store.Upsert(ctx, keepGen, []Item{testItem("keep", 0, 1, unitVector(1, 0, 0))})
	_ = store.Upsert(ctx, partialGen, []Item{testItem("partial", 0, 1, unitVector(1, 0, 0))})
	_ = store.SetCurrentGeneration(ctx, keepGen)

	if err := store.DeleteGeneration(ctx, partialGen); err != nil {
		t.Fatalf("DeleteGeneration: %v", err)
	}

	matches, err := store.Query(ctx, keepGen, unitVector(1, 0, 0), 10, 0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(matches) != 1 || matches[0].Item.ID != "keep" {
		t.Errorf("matches = %v, want the kept generation untouched", matches)
	}
}

func TestUpsertRejectsInvalidItems(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	generation, _ := store.AllocateGeneration(ctx)

	if err := store.Upsert(ctx, generation, []Item{{ID: "", Vector: unitVector(1, 0, 0)}}); err == nil {
		t.Error("Upsert without id succeeded, want error")
	}
	if err := store.Upsert(ctx, generation, []Item{{ID: "x"}}); err == nil {
		t.Error("Upsert without vector succeeded, want error")
	}
}
