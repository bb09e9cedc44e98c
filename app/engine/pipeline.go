package engine

import (
	"sweepboard/app/cache"
	"sweepboard/app/interfaces"
)

// Pipeline runs a sequence of stages over a snapshot's rows, with an
// optional LRU cache of final results keyed by snapshot token and stage
// parameters. Everything here is synchronous and pure; the caller owns the
// snapshot and all rule/settings state.
type Pipeline struct {
	stages        []PipelineStage
	cache         *cache.Cache
	snapshotToken string
	enableCache   bool
}

// NewPipeline creates a pipeline bound to a snapshot token. A nil cache
// disables caching.
func NewPipeline(snapshotToken string, c *cache.Cache, enableCache bool) *Pipeline {
	return &Pipeline{
		cache:         c,
		snapshotToken: snapshotToken,
		enableCache:   enableCache && c != nil,
	}
}

// AddStage appends a pipeline stage.
func (p *Pipeline) AddStage(stage PipelineStage) {
	p.stages = append(p.stages, stage)
}

// Execute runs the stages in order over the input and returns the final
// result. Stage outputs share row pointers with the input; no stage mutates
// a row.
func (p *Pipeline) Execute(input *StageResult) *QueryResult {
	var key string
	if p.enableCache {
		key = BuildCacheKey(p.snapshotToken, p.stages)
		if entry, ok := p.cache.Get(key); ok {
			return &QueryResult{
				Columns:    entry.Columns,
				Rows:       entry.Rows,
				Page:       entry.Page,
				TotalPages: entry.TotalPages,
				TotalRows:  entry.TotalRows,
				Cached:     true,
			}
		}
	}

	current := input
	for _, stage := range p.stages {
		current = stage.Execute(current)
	}

	result := &QueryResult{
		Columns:    current.Columns,
		Rows:       current.Rows,
		Page:       current.Page,
		TotalPages: current.TotalPages,
		TotalRows:  current.TotalRows,
	}
	if result.TotalRows == 0 && result.Page == 0 {
		// No page stage ran; the whole row set is the result.
		result.TotalRows = len(current.Rows)
	}

	if p.enableCache {
		p.cache.Store(key, &cache.Entry{
			Columns:    result.Columns,
			Rows:       result.Rows,
			Page:       result.Page,
			TotalPages: result.TotalPages,
			TotalRows:  result.TotalRows,
		})
	}
	return result
}

// Builder assembles the standard filter -> sort -> page pipeline.
type Builder struct {
	pipeline *Pipeline
}

// NewBuilder creates a pipeline builder bound to a snapshot token.
func NewBuilder(snapshotToken string, c *cache.Cache, enableCache bool) *Builder {
	return &Builder{pipeline: NewPipeline(snapshotToken, c, enableCache)}
}

// Filter adds the filter stage.
func (b *Builder) Filter(rules []interfaces.FilterRule, logic interfaces.FilterLogic) *Builder {
	b.pipeline.AddStage(NewFilterStage(rules, logic))
	return b
}

// Sort adds the sort stage when a column is selected.
func (b *Builder) Sort(spec interfaces.SortSpec) *Builder {
	if spec.Column != "" {
		b.pipeline.AddStage(NewSortStage(spec.Column, spec.Descending))
	}
	return b
}

// Page adds the page stage.
func (b *Builder) Page(page, size int) *Builder {
	b.pipeline.AddStage(NewPageStage(page, size))
	return b
}

// Build returns the constructed pipeline.
func (b *Builder) Build() *Pipeline {
	return b.pipeline
}
