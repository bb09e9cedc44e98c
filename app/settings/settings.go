package settings

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GetEffectiveSettings returns the effective settings (defaults overlaid with file overrides if any).
// If anything goes wrong, it returns defaults.
func GetEffectiveSettings() Settings {
	settings := defaultSettings
	path, err := settingsFilePath()
	if err != nil {
		return settings
	}
	if _, err := os.Stat(path); err != nil {
		// no file or other stat error -> return defaults
		return settings
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return settings
	}
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return settings
	}
	overlay(&settings, m)
	return settings
}

// overlay applies on-disk overrides onto settings. Keys are applied only when
// present and of the expected type, so a stale or partial file never clobbers
// a default with a zero value.
func overlay(settings *Settings, m map[string]any) {
	if v, ok := m["api_base_url"]; ok {
		if vs, oks := v.(string); oks {
			settings.APIBaseURL = vs
		}
	}
	if v, ok := m["session_token"]; ok {
		if vs, oks := v.(string); oks {
			settings.SessionToken = vs
		}
	}
	if v, ok := m["refresh_interval_secs"]; ok {
		if vi, oki := v.(int); oki && vi >= 0 {
			settings.RefreshIntervalSecs = vi
		}
	}
	if v, ok := m["default_page_size"]; ok {
		if vi, oki := v.(int); oki && vi >= 1 {
			settings.DefaultPageSize = vi
		}
	}
	if v, ok := m["enable_query_cache"]; ok {
		if vb, okb := v.(bool); okb {
			settings.EnableQueryCache = vb
		}
	}
	if v, ok := m["cache_size_limit_mb"]; ok {
		if vi, oki := v.(int); oki && vi >= 1 {
			settings.CacheSizeLimitMB = vi
		}
	}
	if v, ok := m["instance_id"]; ok {
		if vs, oks := v.(string); oks {
			settings.InstanceID = vs
		}
	}
	if v, ok := m["window_width"]; ok {
		if vi, oki := v.(int); oki && vi >= 400 {
			settings.WindowWidth = vi
		}
	}
	if v, ok := m["window_height"]; ok {
		if vi, oki := v.(int); oki && vi >= 300 {
			settings.WindowHeight = vi
		}
	}
}

func settingsFilePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(exe)
	return filepath.Join(dir, "sweepboard.yml"), nil
}
