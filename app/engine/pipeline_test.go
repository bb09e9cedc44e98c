package engine

import (
	"fmt"
	"testing"

	"sweepboard/app/cache"
	"sweepboard/app/interfaces"
)

// TestPipelineFilterSortPage tests the full standard pipeline end to end
func TestPipelineFilterSortPage(t *testing.T) {
	var cells []map[string]string
	for i := 0; i < 30; i++ {
		model := "resnet18"
		if i%3 == 0 {
			model = "vgg16"
		}
		cells = append(cells, map[string]string{
			"model": model,
			"ratio": fmt.Sprintf("0.%02d", 30-i),
		})
	}
	rows := makeRows(cells...)

	rules := []interfaces.FilterRule{
		{Column: "model", Operator: interfaces.OpEq, Operand: "resnet18"},
	}
	pipeline := NewBuilder("snap1", nil, false).
		Filter(rules, interfaces.LogicAll).
		Sort(interfaces.SortSpec{Column: "ratio"}).
		Page(1, 10).
		Build()

	result := pipeline.Execute(&StageResult{Rows: rows})
	if result.TotalRows != 20 {
		t.Fatalf("filtered total = %d, want 20", result.TotalRows)
	}
	if result.TotalPages != 2 {
		t.Errorf("totalPages = %d, want 2", result.TotalPages)
	}
	if len(result.Rows) != 10 {
		t.Fatalf("page rows = %d, want 10", len(result.Rows))
	}
	prev := ""
	for _, r := range result.Rows {
		v, _ := r.Cell("ratio")
		if prev != "" && v < prev {
			t.Fatalf("rows not ascending by ratio: %q after %q", v, prev)
		}
		prev = v
	}
}

// TestPipelineCaching tests that an identical query hits the cache and that
// different stage parameters miss it
func TestPipelineCaching(t *testing.T) {
	rows := makeRows(
		map[string]string{"ratio": "0.1"},
		map[string]string{"ratio": "0.2"},
	)
	c := cache.New(cache.DefaultMaxSize, nil)

	build := func(page int) *Pipeline {
		return NewBuilder("snap1", c, true).
			Filter(nil, interfaces.LogicAll).
			Sort(interfaces.SortSpec{Column: "ratio"}).
			Page(page, 20).
			Build()
	}

	first := build(1).Execute(&StageResult{Rows: rows})
	if first.Cached {
		t.Fatal("first execution should not be cached")
	}
	second := build(1).Execute(&StageResult{Rows: rows})
	if !second.Cached {
		t.Fatal("identical execution should hit the cache")
	}
	if len(second.Rows) != len(first.Rows) {
		t.Errorf("cached rows = %d, want %d", len(second.Rows), len(first.Rows))
	}

	other := build(2).Execute(&StageResult{Rows: rows})
	if other.Cached {
		t.Error("different page should miss the cache")
	}
}

// TestPipelineCacheKeySnapshotToken tests that the same query against a new
// snapshot token does not reuse stale results
func TestPipelineCacheKeySnapshotToken(t *testing.T) {
	stages := []PipelineStage{
		NewFilterStage(nil, interfaces.LogicAll),
		NewPageStage(1, 20),
	}
	a := BuildCacheKey("snap1", stages)
	b := BuildCacheKey("snap2", stages)
	if a == b {
		t.Error("cache keys for different snapshot tokens must differ")
	}
	if a != BuildCacheKey("snap1", stages) {
		t.Error("cache key must be deterministic")
	}
}

// TestBuilderSkipsEmptySortColumn tests that an empty sort column adds no
// sort stage, keeping load order
func TestBuilderSkipsEmptySortColumn(t *testing.T) {
	rows := makeRows(
		map[string]string{"ratio": "0.9"},
		map[string]string{"ratio": "0.1"},
	)
	pipeline := NewBuilder("snap1", nil, false).
		Filter(nil, interfaces.LogicAll).
		Sort(interfaces.SortSpec{}).
		Page(1, 20).
		Build()
	result := pipeline.Execute(&StageResult{Rows: rows})
	if v, _ := result.Rows[0].Cell("ratio"); v != "0.9" {
		t.Errorf("rows reordered without a sort column: first = %q", v)
	}
}
