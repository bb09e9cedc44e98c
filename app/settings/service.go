package settings

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// SettingsService manages reading/writing settings from disk.
type SettingsService struct {
	ctx          context.Context
	cacheManager CacheManager
}

func NewSettingsService() *SettingsService {
	return &SettingsService{}
}

// SetCacheManager allows the main function to inject the cache manager
func (s *SettingsService) SetCacheManager(cm CacheManager) {
	s.cacheManager = cm
}

// Startup receives the Wails context
func (s *SettingsService) Startup(ctx context.Context) {
	s.ctx = ctx
}

// GetSettings returns the effective settings (defaults overlaid with file overrides if any).
func (s *SettingsService) GetSettings() (Settings, error) {
	settings := defaultSettings
	path, err := settingsFilePath()
	if err != nil {
		return settings, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return settings, err
	}
	// Unmarshal into a generic map to detect key presence
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return settings, err
	}
	overlay(&settings, m)
	return settings, nil
}

// SaveSettings saves only the values that differ from defaults into YAML in the binary directory.
func (s *SettingsService) SaveSettings(in Settings) error {
	old := GetEffectiveSettings()
	cacheToggled := old.EnableQueryCache != in.EnableQueryCache
	cacheSizeChanged := old.CacheSizeLimitMB != in.CacheSizeLimitMB

	// Build a minimal map containing only non-default values to avoid zero-value serialization pitfalls
	data := make(map[string]any)
	if strings.TrimSpace(in.APIBaseURL) != defaultSettings.APIBaseURL && strings.TrimSpace(in.APIBaseURL) != "" {
		data["api_base_url"] = strings.TrimSpace(in.APIBaseURL)
	}
	if in.RefreshIntervalSecs != defaultSettings.RefreshIntervalSecs && in.RefreshIntervalSecs >= 0 {
		data["refresh_interval_secs"] = in.RefreshIntervalSecs
	}
	if in.DefaultPageSize != defaultSettings.DefaultPageSize && in.DefaultPageSize >= 1 {
		data["default_page_size"] = in.DefaultPageSize
	}
	if in.EnableQueryCache != defaultSettings.EnableQueryCache {
		data["enable_query_cache"] = in.EnableQueryCache
	}
	if in.CacheSizeLimitMB != defaultSettings.CacheSizeLimitMB && in.CacheSizeLimitMB >= 1 {
		data["cache_size_limit_mb"] = in.CacheSizeLimitMB
	}

	// Preserve the session token (not visible in settings dialog, but must persist)
	sessionToken := strings.TrimSpace(in.SessionToken)
	if sessionToken == "" {
		sessionToken = strings.TrimSpace(old.SessionToken)
	}
	if sessionToken != "" {
		data["session_token"] = sessionToken
	}

	// Preserve instance ID (not visible in settings dialog, but must persist)
	instanceID := strings.TrimSpace(in.InstanceID)
	if instanceID == "" {
		instanceID = strings.TrimSpace(old.InstanceID)
	}
	if instanceID != "" {
		data["instance_id"] = instanceID
	}

	// Preserve window size (not visible in settings dialog, but must persist)
	windowWidth := in.WindowWidth
	if windowWidth == 0 {
		windowWidth = old.WindowWidth
	}
	if windowWidth != defaultSettings.WindowWidth && windowWidth >= 400 {
		data["window_width"] = windowWidth
	}

	windowHeight := in.WindowHeight
	if windowHeight == 0 {
		windowHeight = old.WindowHeight
	}
	if windowHeight != defaultSettings.WindowHeight && windowHeight >= 300 {
		data["window_height"] = windowHeight
	}

	path, err := settingsFilePath()
	if err != nil {
		return err
	}

	if len(data) == 0 {
		// If there is an existing file, remove it to reflect defaults-only state
		if _, statErr := os.Stat(path); statErr == nil {
			_ = os.Remove(path)
		}
		if cacheToggled && s.cacheManager != nil {
			s.cacheManager.ClearQueryCache()
		}
		return nil
	}
	b, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return err
	}

	// Disabling the cache drops whatever it holds so a later re-enable starts clean
	if cacheToggled && s.cacheManager != nil {
		s.cacheManager.ClearQueryCache()
	}
	if cacheSizeChanged && s.cacheManager != nil {
		s.cacheManager.UpdateCacheSize()
	}

	return nil
}

// ClearSessionToken removes the session token from the settings file, keeping
// everything else intact. Used on logout.
func (s *SettingsService) ClearSessionToken() error {
	settings, err := s.GetSettings()
	if err != nil {
		return err
	}
	settings.SessionToken = ""

	data := make(map[string]any)
	if strings.TrimSpace(settings.APIBaseURL) != defaultSettings.APIBaseURL && strings.TrimSpace(settings.APIBaseURL) != "" {
		data["api_base_url"] = strings.TrimSpace(settings.APIBaseURL)
	}
	if settings.RefreshIntervalSecs != defaultSettings.RefreshIntervalSecs {
		data["refresh_interval_secs"] = settings.RefreshIntervalSecs
	}
	if settings.DefaultPageSize != defaultSettings.DefaultPageSize && settings.DefaultPageSize >= 1 {
		data["default_page_size"] = settings.DefaultPageSize
	}
	if settings.EnableQueryCache != defaultSettings.EnableQueryCache {
		data["enable_query_cache"] = settings.EnableQueryCache
	}
	if settings.CacheSizeLimitMB != defaultSettings.CacheSizeLimitMB && settings.CacheSizeLimitMB >= 1 {
		data["cache_size_limit_mb"] = settings.CacheSizeLimitMB
	}
	// Instance ID must survive logout
	if instanceID := strings.TrimSpace(settings.InstanceID); instanceID != "" {
		data["instance_id"] = instanceID
	}
	if settings.WindowWidth != defaultSettings.WindowWidth && settings.WindowWidth >= 400 {
		data["window_width"] = settings.WindowWidth
	}
	if settings.WindowHeight != defaultSettings.WindowHeight && settings.WindowHeight >= 300 {
		data["window_height"] = settings.WindowHeight
	}

	path, err := settingsFilePath()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		if _, statErr := os.Stat(path); statErr == nil {
			_ = os.Remove(path)
		}
		return nil
	}
	b, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// EnsureInstanceID generates and saves a unique instance ID if one doesn't exist
func (s *SettingsService) EnsureInstanceID() error {
	settings, err := s.GetSettings()
	if err != nil {
		return err
	}
	if strings.TrimSpace(settings.InstanceID) != "" {
		return nil
	}
	settings.InstanceID = uuid.New().String()
	return s.SaveSettings(settings)
}
