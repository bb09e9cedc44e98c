package store

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sweepboard/app/interfaces"
)

func sampleState() *interfaces.ViewState {
	return &interfaces.ViewState{
		Filters: []interfaces.FilterRule{
			{ID: "f1", Column: "ratio", Operator: interfaces.OpEq, Operand: "0.1"},
		},
		FilterLogic: interfaces.LogicAny,
		CompletenessRows: []interfaces.Requirement{
			{Column: "ratio", Operand: "0.1,0.2"},
		},
		SummaryCol:       "expression",
		ColumnVisibility: map[string]bool{"mode": false},
		PageSize:         50,
	}
}

// TestLocalViewStoreRoundtrip tests save and load through the YAML file
func TestLocalViewStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "views.yml")
	s := NewLocalViewStore(path)

	if err := s.Save(sampleState()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Filters) != 1 || got.Filters[0].Operand != "0.1" {
		t.Errorf("filters = %+v", got.Filters)
	}
	if got.FilterLogic != interfaces.LogicAny {
		t.Errorf("logic = %q, want any", got.FilterLogic)
	}
	if got.SummaryCol != "expression" || got.PageSize != 50 {
		t.Errorf("summary/pageSize = %q/%d", got.SummaryCol, got.PageSize)
	}
	if got.ColumnVisibility["mode"] {
		t.Error("visibility flag lost")
	}
}

// TestLocalViewStoreMissingFile tests that a first run yields defaults
func TestLocalViewStoreMissingFile(t *testing.T) {
	s := NewLocalViewStore(filepath.Join(t.TempDir(), "absent.yml"))
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.FilterLogic != interfaces.LogicAll || got.PageSize < 1 {
		t.Errorf("defaults = %+v", got)
	}
}

// TestLocalViewStoreCorruptFile tests degradation to defaults
func TestLocalViewStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "views.yml")
	if err := os.WriteFile(path, []byte("{not yaml: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := NewLocalViewStore(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.PageSize < 1 || got.Filters == nil {
		t.Errorf("corrupt file should yield defaults, got %+v", got)
	}
}

// TestNormalize tests per-field repair of malformed state
func TestNormalize(t *testing.T) {
	got := Normalize(&interfaces.ViewState{
		FilterLogic: "sometimes",
		PageSize:    -3,
	})
	if got.FilterLogic != interfaces.LogicAll {
		t.Errorf("logic = %q, want all", got.FilterLogic)
	}
	if got.PageSize < 1 {
		t.Errorf("pageSize = %d, want a positive default", got.PageSize)
	}
	if got.Filters == nil || got.ColumnVisibility == nil || got.CompletenessRows == nil {
		t.Error("nil collections should be initialised")
	}
	if Normalize(nil) == nil {
		t.Error("nil state should yield defaults")
	}
}

func unsignedToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header, _ := json.Marshal(map[string]string{"alg": "none", "typ": "JWT"})
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatal(err)
	}
	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + "."
}

// TestUserKeyFromToken tests claim extraction without signature verification
func TestUserKeyFromToken(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]any
		want   string
		ok     bool
	}{
		{name: "sub preferred", claims: map[string]any{"sub": "user-1", "email": "u@example.com"}, want: "user-1", ok: true},
		{name: "email fallback", claims: map[string]any{"email": "u@example.com"}, want: "u@example.com", ok: true},
		{name: "no usable claim", claims: map[string]any{"scope": "read"}, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UserKeyFromToken(unsignedToken(t, tt.claims))
			if tt.ok != (err == nil) {
				t.Fatalf("err = %v, want ok=%v", err, tt.ok)
			}
			if tt.ok && got != tt.want {
				t.Errorf("key = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := UserKeyFromToken("not-a-jwt"); err == nil {
		t.Error("malformed token should fail")
	}
}

// TestRemoteViewStoreRoundtrip tests the GET/PUT record paths
func TestRemoteViewStoreRoundtrip(t *testing.T) {
	var stored []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wantPath := "/settings/user-1/" + SettingsKey
		if r.URL.Path != wantPath {
			t.Errorf("path = %q, want %q", r.URL.Path, wantPath)
		}
		if r.Header.Get("Authorization") == "" {
			t.Error("missing bearer auth")
		}
		switch r.Method {
		case http.MethodPut:
			stored, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			if stored == nil {
				http.NotFound(w, r)
				return
			}
			w.Write(stored)
		}
	}))
	defer srv.Close()

	token := unsignedToken(t, map[string]any{"sub": "user-1"})
	s, err := NewRemoteViewStore(srv.URL, token)
	if err != nil {
		t.Fatalf("NewRemoteViewStore: %v", err)
	}

	// Never-saved user gets defaults from the 404 path.
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Filters) != 0 {
		t.Errorf("fresh state filters = %+v, want empty", got.Filters)
	}

	if err := s.Save(sampleState()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err = s.Load()
	if err != nil {
		t.Fatalf("Load after save: %v", err)
	}
	if got.SummaryCol != "expression" || got.PageSize != 50 {
		t.Errorf("roundtrip state = %+v", got)
	}
}

// TestSaverDebounce tests that rapid saves collapse into one write
func TestSaverDebounce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "views.yml")
	local := NewLocalViewStore(path)
	saver := NewSaver(local, 10*time.Millisecond, func(err error) { t.Errorf("save error: %v", err) })

	for i := 1; i <= 5; i++ {
		state := sampleState()
		state.PageSize = i * 10
		saver.Save(state)
	}
	time.Sleep(50 * time.Millisecond)

	got, err := local.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.PageSize != 50 {
		t.Errorf("pageSize = %d, want the last scheduled value 50", got.PageSize)
	}

	// Flush writes a still-pending state immediately.
	state := sampleState()
	state.PageSize = 99
	saver.Save(state)
	saver.Flush()
	got, _ = local.Load()
	if got.PageSize != 99 {
		t.Errorf("pageSize after flush = %d, want 99", got.PageSize)
	}
}
