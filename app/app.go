package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sweepboard/app/cache"
	"sweepboard/app/completeness"
	"sweepboard/app/engine"
	"sweepboard/app/feed"
	"sweepboard/app/interfaces"
	"sweepboard/app/settings"
	"sweepboard/app/store"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// App struct
type App struct {
	ctx context.Context

	// current snapshot; swapped as a whole on reload, never mutated
	snapMu   sync.RWMutex
	snapshot *interfaces.Snapshot

	// per-user view state and its debounced persistence
	stateMu sync.Mutex
	state   *interfaces.ViewState
	saver   *store.Saver

	feedClient *feed.Client
	viewStore  store.ViewStore

	// persistent query cache
	queryCache  *cache.Cache
	enableCache bool

	// periodic refresh management
	refreshStop chan struct{}
	refreshMu   sync.Mutex

	// clipboard init
	clipOnce sync.Once
	clipOK   bool
}

// NewApp creates a new App application struct
func NewApp() *App {
	// Load settings to get cache size
	currentSettings := settings.GetEffectiveSettings()
	cacheSizeBytes := int64(currentSettings.CacheSizeLimitMB) * 1024 * 1024

	app := &App{
		state:       store.DefaultViewState(),
		enableCache: currentSettings.EnableQueryCache,
	}
	app.queryCache = cache.New(cacheSizeBytes, appLogger{app})
	return app
}

// appLogger adapts App.Log to the cache logger interface.
type appLogger struct{ app *App }

func (l appLogger) Log(level, message string) { l.app.Log(level, message) }

// Startup is called when the app starts. The context is saved so we can call
// the runtime methods. It wires the feed and store from settings, rehydrates
// the view state, performs the initial load and starts the refresh ticker.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	currentSettings := settings.GetEffectiveSettings()
	a.feedClient = feed.NewClient(currentSettings.APIBaseURL, currentSettings.SessionToken)
	a.viewStore = a.buildViewStore(currentSettings)
	a.saver = store.NewSaver(a.viewStore, 750*time.Millisecond, func(err error) {
		a.Log("error", fmt.Sprintf("Failed to save view state: %v", err))
	})

	if state, err := a.viewStore.Load(); err != nil {
		a.Log("warning", fmt.Sprintf("Failed to load view state, starting from defaults: %v", err))
	} else {
		a.stateMu.Lock()
		a.state = state
		a.stateMu.Unlock()
	}
	if currentSettings.DefaultPageSize >= 1 {
		a.stateMu.Lock()
		if a.state.PageSize < 1 {
			a.state.PageSize = currentSettings.DefaultPageSize
		}
		a.stateMu.Unlock()
	}

	if _, err := a.Refresh(true); err != nil {
		a.Log("error", fmt.Sprintf("Initial results load failed: %v", err))
	}

	if currentSettings.RefreshIntervalSecs > 0 {
		a.startPeriodicRefresh(time.Duration(currentSettings.RefreshIntervalSecs) * time.Second)
	}
}

// Shutdown flushes pending view-state writes and stops the refresh ticker.
func (a *App) Shutdown(ctx context.Context) {
	a.stopPeriodicRefresh()
	if a.saver != nil {
		a.saver.Flush()
	}
}

// buildViewStore picks the remote store when a session token is configured
// and its user key can be derived, otherwise the local file store.
func (a *App) buildViewStore(s settings.Settings) store.ViewStore {
	if s.SessionToken != "" {
		remote, err := store.NewRemoteViewStore(s.APIBaseURL, s.SessionToken)
		if err == nil {
			return remote
		}
		a.Log("warning", fmt.Sprintf("Falling back to local view-state store: %v", err))
	}
	path, err := store.DefaultLocalPath()
	if err != nil {
		// No usable executable path; keep state in a file in the working dir.
		path = "sweepboard.views.yml"
	}
	return store.NewLocalViewStore(path)
}

// Ctx returns the Wails context for menu callbacks in main.
func (a *App) Ctx() context.Context {
	return a.ctx
}

// Log emits a structured log event to the frontend console window
func (a *App) Log(level, message string) {
	if a == nil || a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, "log", map[string]any{
		"level":   level,
		"message": message,
	})
}

func (a *App) startPeriodicRefresh(interval time.Duration) {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()
	if a.refreshStop != nil {
		return
	}
	stop := make(chan struct{})
	a.refreshStop = stop
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := a.Refresh(false); err != nil {
					a.Log("warning", fmt.Sprintf("Periodic refresh failed: %v", err))
				}
			case <-stop:
				return
			}
		}
	}()
}

func (a *App) stopPeriodicRefresh() {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()
	if a.refreshStop != nil {
		close(a.refreshStop)
		a.refreshStop = nil
	}
}

// Refresh reloads the snapshot from the feed. When force is false the fetch
// is conditional on the current mtime token and an unchanged feed leaves the
// snapshot, the cache and all derived state untouched. A changed feed swaps
// the snapshot pointer, clears the query cache and reconciles column
// visibility in one step.
func (a *App) Refresh(force bool) (*RefreshResult, error) {
	if a.feedClient == nil {
		return nil, fmt.Errorf("app not initialised")
	}

	lastToken := ""
	if !force {
		a.snapMu.RLock()
		if a.snapshot != nil {
			lastToken = a.snapshot.ModToken
		}
		a.snapMu.RUnlock()
	}

	ctx := a.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	snap, changed, err := a.feedClient.Fetch(ctx, lastToken)
	if err != nil {
		return nil, err
	}
	if !changed {
		a.snapMu.RLock()
		current := a.snapshot
		a.snapMu.RUnlock()
		result := &RefreshResult{Changed: false}
		if current != nil {
			result.TotalRows = len(current.Rows)
			result.ModToken = current.ModToken
		}
		return result, nil
	}

	a.stateMu.Lock()
	a.state.ColumnVisibility = engine.ApplyVisibilityDefaults(snap, a.state.ColumnVisibility)
	a.scheduleSaveLocked()
	a.stateMu.Unlock()

	a.snapMu.Lock()
	a.snapshot = snap
	a.snapMu.Unlock()

	// Cached pages were computed against the previous snapshot.
	a.queryCache.Clear()

	if a.ctx != nil {
		runtime.EventsEmit(a.ctx, "results:updated", map[string]any{
			"totalRows": len(snap.Rows),
			"modToken":  snap.ModToken,
		})
	}
	a.Log("info", fmt.Sprintf("Loaded %d result rows", len(snap.Rows)))

	return &RefreshResult{Changed: true, TotalRows: len(snap.Rows), ModToken: snap.ModToken}, nil
}

// currentSnapshot returns the live snapshot or an empty one before the first
// successful load, so bound methods never have to nil-check.
func (a *App) currentSnapshot() *interfaces.Snapshot {
	a.snapMu.RLock()
	defer a.snapMu.RUnlock()
	if a.snapshot == nil {
		return &interfaces.Snapshot{}
	}
	return a.snapshot
}

// viewStateCopy returns a copy of the mutable view-state fields a query
// needs, taken under the lock so a mid-query mutation cannot tear it.
func (a *App) viewStateCopy() (rules []interfaces.FilterRule, logic interfaces.FilterLogic, pageSize int, visibility map[string]bool) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	rules = append(rules, a.state.Filters...)
	logic = a.state.FilterLogic
	pageSize = a.state.PageSize
	visibility = make(map[string]bool, len(a.state.ColumnVisibility))
	for k, v := range a.state.ColumnVisibility {
		visibility[k] = v
	}
	return rules, logic, pageSize, visibility
}

// Query runs the filter -> sort -> page pipeline and renders one page for
// the grid. The page number is clamped by the page stage, so out-of-range
// requests return the nearest valid page instead of failing.
func (a *App) Query(req QueryRequest) (*QueryResponse, error) {
	snap := a.currentSnapshot()
	rules, logic, pageSize, visibility := a.viewStateCopy()
	if pageSize < 1 {
		pageSize = engine.DefaultPageSize
	}

	pipeline := engine.NewBuilder(snap.ModToken, a.queryCache, a.enableCache).
		Filter(rules, logic).
		Sort(req.Sort).
		Page(req.Page, pageSize).
		Build()

	result := pipeline.Execute(&engine.StageResult{
		Columns: snap.Columns,
		Rows:    snap.Rows,
	})

	visible := engine.VisibleColumns(snap, visibility)
	resp := &QueryResponse{
		Columns:     visible,
		Rows:        make([][]string, 0, len(result.Rows)),
		Activations: make([]map[string]bool, 0, len(result.Rows)),
		Page:        result.Page,
		TotalPages:  result.TotalPages,
		TotalRows:   result.TotalRows,
		Cached:      result.Cached,
	}
	for _, row := range result.Rows {
		cells := make([]string, len(visible))
		for i, col := range visible {
			cells[i], _ = row.Cell(col)
		}
		resp.Rows = append(resp.Rows, cells)
		resp.Activations = append(resp.Activations, row.Activations)
	}
	return resp, nil
}

// viewRows runs filter and sort over the whole snapshot without paging, for
// export and clipboard copy.
func (a *App) viewRows(sort interfaces.SortSpec) ([]string, []*interfaces.Row) {
	snap := a.currentSnapshot()
	rules, logic, _, visibility := a.viewStateCopy()

	pipeline := engine.NewBuilder(snap.ModToken, nil, false).
		Filter(rules, logic).
		Sort(sort).
		Build()
	result := pipeline.Execute(&engine.StageResult{
		Columns: snap.Columns,
		Rows:    snap.Rows,
	})
	return engine.VisibleColumns(snap, visibility), result.Rows
}

// GetColumns returns the column universe, visibility flags and groups for
// the column panel.
func (a *App) GetColumns() ColumnsResponse {
	snap := a.currentSnapshot()
	a.stateMu.Lock()
	visibility := make(map[string]bool, len(a.state.ColumnVisibility))
	for k, v := range a.state.ColumnVisibility {
		visibility[k] = v
	}
	a.stateMu.Unlock()

	return ColumnsResponse{
		Columns:    snap.Columns,
		Visibility: visibility,
		Groups:     engine.ColumnGroups(snap),
	}
}

// SetColumnVisible toggles a single column.
func (a *App) SetColumnVisible(column string, shown bool) {
	if interfaces.IsCarrierColumn(column) {
		return
	}
	a.stateMu.Lock()
	if a.state.ColumnVisibility == nil {
		a.state.ColumnVisibility = map[string]bool{}
	}
	a.state.ColumnVisibility[column] = shown
	a.scheduleSaveLocked()
	a.stateMu.Unlock()
}

// SetGroupVisible shows or hides every column of a group in one step. The
// group name may be the implicit "other" group.
func (a *App) SetGroupVisible(group string, shown bool) {
	snap := a.currentSnapshot()
	var cols []string
	for _, g := range engine.ColumnGroups(snap) {
		if g.Name == group {
			cols = g.Columns
			break
		}
	}
	if len(cols) == 0 {
		return
	}
	a.stateMu.Lock()
	if a.state.ColumnVisibility == nil {
		a.state.ColumnVisibility = map[string]bool{}
	}
	for _, col := range cols {
		a.state.ColumnVisibility[col] = shown
	}
	a.scheduleSaveLocked()
	a.stateMu.Unlock()
}

// AddFilter creates a new filter rule and returns it with its assigned ID.
func (a *App) AddFilter(column, operator, operand string) interfaces.FilterRule {
	rule := interfaces.FilterRule{
		ID:       uuid.New().String(),
		Column:   column,
		Operator: operator,
		Operand:  operand,
	}
	a.stateMu.Lock()
	a.state.Filters = append(a.state.Filters, rule)
	a.scheduleSaveLocked()
	a.stateMu.Unlock()
	return rule
}

// UpdateFilter replaces the rule with the same ID. Unknown IDs are ignored.
func (a *App) UpdateFilter(rule interfaces.FilterRule) {
	a.stateMu.Lock()
	for i := range a.state.Filters {
		if a.state.Filters[i].ID == rule.ID {
			a.state.Filters[i] = rule
			a.scheduleSaveLocked()
			break
		}
	}
	a.stateMu.Unlock()
}

// RemoveFilter deletes the rule with the given ID.
func (a *App) RemoveFilter(id string) {
	a.stateMu.Lock()
	for i := range a.state.Filters {
		if a.state.Filters[i].ID == id {
			a.state.Filters = append(a.state.Filters[:i], a.state.Filters[i+1:]...)
			a.scheduleSaveLocked()
			break
		}
	}
	a.stateMu.Unlock()
}

// SetFilterLogic switches between all-must-match and any-must-match.
func (a *App) SetFilterLogic(logic string) {
	l := interfaces.FilterLogic(logic)
	if l != interfaces.LogicAll && l != interfaces.LogicAny {
		return
	}
	a.stateMu.Lock()
	a.state.FilterLogic = l
	a.scheduleSaveLocked()
	a.stateMu.Unlock()
}

// GetFilters returns the current filter rules and logic.
func (a *App) GetFilters() ([]interfaces.FilterRule, string) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	rules := append([]interfaces.FilterRule{}, a.state.Filters...)
	return rules, string(a.state.FilterLogic)
}

// SetPageSize changes the page size. Values below 1 are ignored.
func (a *App) SetPageSize(size int) {
	if size < 1 {
		return
	}
	a.stateMu.Lock()
	a.state.PageSize = size
	a.scheduleSaveLocked()
	a.stateMu.Unlock()
}

// SetRequirements replaces the completeness requirement rows.
func (a *App) SetRequirements(reqs []interfaces.Requirement) {
	if reqs == nil {
		reqs = []interfaces.Requirement{}
	}
	a.stateMu.Lock()
	a.state.CompletenessRows = reqs
	a.scheduleSaveLocked()
	a.stateMu.Unlock()
}

// SetSummaryColumn selects the completeness summary column.
func (a *App) SetSummaryColumn(col string) {
	a.stateMu.Lock()
	a.state.SummaryCol = col
	a.scheduleSaveLocked()
	a.stateMu.Unlock()
}

// GetRequirements returns the completeness requirements and summary column.
func (a *App) GetRequirements() ([]interfaces.Requirement, string) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	reqs := append([]interfaces.Requirement{}, a.state.CompletenessRows...)
	return reqs, a.state.SummaryCol
}

// CheckCompleteness runs the combination check over the full unfiltered
// snapshot. When the checker re-picks the summary column the choice is
// persisted so the panel reflects it.
func (a *App) CheckCompleteness() CompletenessResponse {
	snap := a.currentSnapshot()
	a.stateMu.Lock()
	reqs := append([]interfaces.Requirement{}, a.state.CompletenessRows...)
	summaryCol := a.state.SummaryCol
	a.stateMu.Unlock()

	report := completeness.Check(snap.Rows, reqs, summaryCol)

	if report.SummaryCol != summaryCol {
		a.stateMu.Lock()
		a.state.SummaryCol = report.SummaryCol
		a.scheduleSaveLocked()
		a.stateMu.Unlock()
	}

	return CompletenessResponse{
		SummaryCol: report.SummaryCol,
		Lines:      report.Lines,
		Missing:    report.Missing,
		Total:      report.Total,
	}
}

// scheduleSaveLocked hands the current state to the debounced saver. Callers
// must hold stateMu.
func (a *App) scheduleSaveLocked() {
	if a.saver == nil {
		return
	}
	snapshot := *a.state
	snapshot.Filters = append([]interfaces.FilterRule{}, a.state.Filters...)
	snapshot.CompletenessRows = append([]interfaces.Requirement{}, a.state.CompletenessRows...)
	snapshot.ColumnVisibility = make(map[string]bool, len(a.state.ColumnVisibility))
	for k, v := range a.state.ColumnVisibility {
		snapshot.ColumnVisibility[k] = v
	}
	a.saver.Save(&snapshot)
}

// GetCacheStats returns the current cache statistics for the frontend
func (a *App) GetCacheStats() CacheStatsResponse {
	if a.queryCache == nil {
		return CacheStatsResponse{}
	}
	stats := a.queryCache.GetStats()
	return CacheStatsResponse{
		TotalSize:    stats.TotalSize,
		MaxSize:      stats.MaxSize,
		UsagePercent: stats.UsagePercent,
		EntryCount:   stats.TotalEntries,
	}
}

// ClearQueryCache drops every cached query result.
func (a *App) ClearQueryCache() {
	if a.queryCache != nil {
		a.queryCache.Clear()
	}
}

// UpdateCacheSize re-reads the cache size limit from settings and applies it,
// evicting as needed.
func (a *App) UpdateCacheSize() {
	if a.queryCache == nil {
		return
	}
	currentSettings := settings.GetEffectiveSettings()
	a.queryCache.SetMaxSize(int64(currentSettings.CacheSizeLimitMB) * 1024 * 1024)
}
