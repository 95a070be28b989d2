package site

import "time"

const (
	SourceREST = "rest"
	SourceRSS  = "rss"
)

type Config struct {
	Name        string // Derived from filename (without .yml extension)
	Title       string         `yaml:"title"`
	Link        string         `yaml:"link"`
	Description string         `yaml:"description"`
	Source      string         `yaml:"source"`   // rest or rss
	APIURL      string         `yaml:"api_url"`  // WordPress REST base, e.g. .../wp/v2/sites/<site>
	FeedURL     string         `yaml:"feed_url"` // RSS document URL
	Settings    ConfigSettings `yaml:"settings"`
}

type ConfigSettings struct {
	Enabled bool `yaml:"enabled"`
	Timeout int  `yaml:"timeout"` // seconds
}

func (s ConfigSettings) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}
