package cfg

type Cfg struct {
	// Application configuration
	SitesDir     string
	Port         string
	BaseUrl      string
	APIAccessKey string
	ExcerptWords int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
