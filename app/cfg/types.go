package cfg

type Cfg struct {
	// Storage configuration
	DataDir string
	DBPath  string

	// External tool configuration
	BirdPath   string
	ClaudePath string

	// Application configuration
	Port         string
	APIAccessKey string
	WorkerCount  int
	BatchSize    int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
