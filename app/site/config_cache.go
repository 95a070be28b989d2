package site

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const defaultTimeout = 30

type ConfigCache struct {
	sitesDir string
	cache    map[string]*Config
	mu       sync.RWMutex
}

func NewConfigCache(sitesDir string) *ConfigCache {
	return &ConfigCache{
		sitesDir: sitesDir,
		cache:    make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.sitesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.sitesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		siteName := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := cc.LoadConfig(siteName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Site configuration loaded", "site", siteName, "source", config.Source, "enabled", config.Settings.Enabled)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(siteName string) (*Config, error) {
	configFile := cc.getConfigFilePath(siteName)
	siteConfig, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	siteConfig.Name = siteName

	if err := cc.validateConfig(siteConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[siteConfig.Name] = siteConfig

	return siteConfig, nil
}

func (cc *ConfigCache) GetConfig(siteName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	siteConfig, ok := cc.cache[siteName]
	if !ok {
		return nil, fmt.Errorf("site config with name '%s' not found", siteName)
	}
	return siteConfig, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetEnabledConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabledConfigs := make(map[string]*Config)
	for k, v := range cc.cache {
		if v.Settings.Enabled {
			enabledConfigs[k] = v
		}
	}
	return enabledConfigs
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var siteConfig Config
	if err := yaml.Unmarshal(data, &siteConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	siteConfig.Source = strings.ToLower(strings.TrimSpace(siteConfig.Source))
	if siteConfig.Source == "" {
		siteConfig.Source = SourceREST
	}
	if siteConfig.Settings.Timeout == 0 {
		siteConfig.Settings.Timeout = defaultTimeout
	}

	return &siteConfig, nil
}

func (cc *ConfigCache) validateConfig(siteConfig *Config) error {
	if siteConfig == nil {
		return fmt.Errorf("siteConfig is nil")
	}

	if siteConfig.Name == "" {
		return fmt.Errorf("site name is required")
	}

	switch siteConfig.Source {
	case SourceREST:
		if siteConfig.APIURL == "" {
			return fmt.Errorf("api_url is required for source '%s'", SourceREST)
		}
	case SourceRSS:
		if siteConfig.FeedURL == "" {
			return fmt.Errorf("feed_url is required for source '%s'", SourceRSS)
		}
	default:
		return fmt.Errorf("unknown source '%s', expected '%s' or '%s'", siteConfig.Source, SourceREST, SourceRSS)
	}

	if siteConfig.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(siteName string) string {
	return filepath.Join(cc.sitesDir, siteName+".yml")
}
