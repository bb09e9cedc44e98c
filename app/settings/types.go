package settings

// Settings holds application settings that can be overridden by the user.
type Settings struct {
	// Base URL of the sweep results API, e.g. "https://sweeps.example.com/api"
	APIBaseURL string `yaml:"api_base_url" json:"api_base_url"`
	// SessionToken is the bearer token for the results API (not visible in settings dialog)
	SessionToken string `yaml:"session_token,omitempty" json:"session_token,omitempty"`
	// Seconds between automatic feed refreshes; 0 disables auto-refresh
	RefreshIntervalSecs int  `yaml:"refresh_interval_secs" json:"refresh_interval_secs"`
	DefaultPageSize     int  `yaml:"default_page_size" json:"default_page_size"`
	EnableQueryCache    bool `yaml:"enable_query_cache" json:"enable_query_cache"`
	// Cache size limit in MB for the query result cache
	CacheSizeLimitMB int `yaml:"cache_size_limit_mb" json:"cache_size_limit_mb"`
	// InstanceID is a unique identifier for this installation (not visible in settings dialog)
	InstanceID string `yaml:"instance_id,omitempty" json:"instance_id,omitempty"`
	// Window size settings (not visible in settings dialog, but persisted)
	WindowWidth  int `yaml:"window_width,omitempty" json:"window_width,omitempty"`
	WindowHeight int `yaml:"window_height,omitempty" json:"window_height,omitempty"`
}

// CacheManager interface defines methods that SettingsService needs for cache management.
// This breaks the circular dependency between app and settings packages.
type CacheManager interface {
	ClearQueryCache()
	UpdateCacheSize()
}

// defaultSettings defines the built-in defaults.
var defaultSettings = Settings{
	APIBaseURL:          "http://localhost:8000",
	RefreshIntervalSecs: 0,
	DefaultPageSize:     20,
	EnableQueryCache:    true,
	CacheSizeLimitMB:    100,
	WindowWidth:         1280,
	WindowHeight:        800,
}
