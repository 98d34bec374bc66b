package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port             string
	BaseUrl          string
	APIAccessKey     string
	ReplacementsFile string
	RetryCount       int
	RetryDelay       int // seconds
	Timeout          int // seconds
	ProbeFanOut      int
	ExtractContent   bool

	// Background refresh configuration
	WorkerCount int

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
