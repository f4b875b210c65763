package models

// MConfig Structure
type MConfig struct {
	Name        string             `yaml:"name"`
	Host        string             `yaml:"host"`
	Port        int                `yaml:"port"`
	LogLevel    string             `yaml:"log_level"`
	GrpcHost    string             `yaml:"grpc_host"`
	GrpcPort    int                `yaml:"grpc_port"`
	Storage     MStorageConfig     `yaml:"storage"`
	Network     MNetworkConfig     `yaml:"network"`
	Aggregation MAggregationConfig `yaml:"aggregation"`
	Venues      []MVenueConfig     `yaml:"venues"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // sqlite, postgres or none
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RedisAddr          string `yaml:"redis_addr"` // Optional
	RedisPassword      string `yaml:"redis_password"`
	RedisDB            int    `yaml:"redis_db"`
	OutputDir          string `yaml:"output_dir"`
	CollectionsFile    string `yaml:"collections_file"`
	SingularFile       string `yaml:"singular_file"`
}

type MNetworkConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout"`
	MaxRetries     int      `yaml:"retries"`
	UserAgent      string   `yaml:"user_agent"`
}

type MAggregationConfig struct {
	FailurePolicy          FailurePolicy `yaml:"failure_policy"`
	Concurrency            int           `yaml:"concurrency"`
	RebuildIntervalSeconds int           `yaml:"rebuild_interval_seconds"`
	Rules                  MVenueRules   `yaml:"rules"`
}

type MVenueConfig struct {
	Name        string          `yaml:"name"`
	Type        string          `yaml:"type"` // static, http or table
	URL         string          `yaml:"url"`
	Table       string          `yaml:"table"`        // schema.table.field, table only
	SymbolsPath string          `yaml:"symbols_path"` // dotted path to the symbol array, http only
	Symbols     []string        `yaml:"symbols"`
	Countries   []string        `yaml:"countries"`
	Has         map[string]bool `yaml:"has"`
}
