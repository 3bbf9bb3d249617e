package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/umputun/watchscope/pkg/domain"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:watchscope.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Forum      ForumConfig      `yaml:"forum" json:"forum" jsonschema:"description=Discussion forum API configuration"`
	Buzz       BuzzConfig       `yaml:"buzz" json:"buzz" jsonschema:"description=Buzz classification thresholds"`
	Scoring    ScoringConfig    `yaml:"scoring" json:"scoring" jsonschema:"description=Scoring weights per algorithm variant"`
	Catalog    CatalogConfig    `yaml:"catalog" json:"catalog" jsonschema:"description=Content catalog import configuration"`
	Extraction ExtractionConfig `yaml:"extraction" json:"extraction" jsonschema:"description=Linked page extraction configuration"`
	LLM        LLMConfig        `yaml:"llm" json:"llm" jsonschema:"description=Optional LLM discussion summary configuration"`

	Quiz struct {
		Questions []domain.QuizQuestion `yaml:"questions" json:"questions" jsonschema:"description=Static quiz question catalog"`
	} `yaml:"quiz" json:"quiz" jsonschema:"description=Quiz configuration"`
}

// ForumConfig holds discussion forum client settings
type ForumConfig struct {
	BaseURL         string        `yaml:"base_url" json:"base_url" jsonschema:"default=https://www.reddit.com,description=Forum API base URL"`
	UserAgent       string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=watchscope/1.0 (content recommendation bot),description=Client identifier sent on every request"`
	SearchTimeout   time.Duration `yaml:"search_timeout" json:"search_timeout" jsonschema:"default=8s,description=Timeout for search requests"`
	CommentsTimeout time.Duration `yaml:"comments_timeout" json:"comments_timeout" jsonschema:"default=5s,description=Timeout for comment thread requests"`
	SearchLimit     int           `yaml:"search_limit" json:"search_limit" jsonschema:"default=50,description=Maximum search results per query"`
	CommentsLimit   int           `yaml:"comments_limit" json:"comments_limit" jsonschema:"default=50,description=Default comment count per thread"`
	MaxPosts        int           `yaml:"max_posts" json:"max_posts" jsonschema:"default=3,description=Maximum posts visited per title"`
	FetchDelay      time.Duration `yaml:"fetch_delay" json:"fetch_delay" jsonschema:"default=1s,description=Pause between successive thread fetches"`
	MaxDepth        int           `yaml:"max_depth" json:"max_depth" jsonschema:"default=10,description=Maximum comment tree depth to traverse"`
	SignalTTL       time.Duration `yaml:"signal_ttl" json:"signal_ttl" jsonschema:"default=1h,description=How long a cached social signal stays fresh"`
}

// BuzzConfig holds tunable thresholds for buzz classification
type BuzzConfig struct {
	HighVolume      int     `yaml:"high_volume" json:"high_volume" jsonschema:"default=100,description=Comment volume considered high"`
	MediumVolume    int     `yaml:"medium_volume" json:"medium_volume" jsonschema:"default=20,description=Comment volume considered medium"`
	StrongSentiment float64 `yaml:"strong_sentiment" json:"strong_sentiment" jsonschema:"default=0.3,description=Absolute average sentiment considered strong"`
	MinBucketShare  float64 `yaml:"min_bucket_share" json:"min_bucket_share" jsonschema:"default=0.25,description=Minimum share of total for both polarity buckets in a controversial split"`
	BalanceRatio    float64 `yaml:"balance_ratio" json:"balance_ratio" jsonschema:"default=1.5,description=Max ratio between polarity buckets still considered balanced"`
}

// Weights holds the per-factor scoring weights of one algorithm variant
type Weights struct {
	Genre   float64 `yaml:"genre" json:"genre"`
	Vibe    float64 `yaml:"vibe" json:"vibe"`
	Runtime float64 `yaml:"runtime" json:"runtime"`
	Recency float64 `yaml:"recency" json:"recency"`
	Critic  float64 `yaml:"critic" json:"critic"`
	Social  float64 `yaml:"social" json:"social"`
}

// ScoringConfig holds the weight sets for both A/B variants
type ScoringConfig struct {
	VariantA Weights `yaml:"variant_a" json:"variant_a" jsonschema:"description=Weights for variant A"`
	VariantB Weights `yaml:"variant_b" json:"variant_b" jsonschema:"description=Weights for variant B"`
}

// CatalogConfig holds catalog RSS import settings
type CatalogConfig struct {
	Feeds         []string      `yaml:"feeds" json:"feeds" jsonschema:"description=Release announcement RSS feeds to import candidates from"`
	ImportTimeout time.Duration `yaml:"import_timeout" json:"import_timeout" jsonschema:"default=30s,description=Timeout per feed import"`
	MaxWorkers    int           `yaml:"max_workers" json:"max_workers" jsonschema:"default=4,description=Maximum concurrent feed imports"`
}

// ExtractionConfig holds linked-page text extraction settings
type ExtractionConfig struct {
	Enabled       bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Extract text from pages linked by body-less posts"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=15s,description=Extraction timeout per page"`
	UserAgent     string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=watchscope/1.0,description=User agent for extraction requests"`
	MinTextLength int           `yaml:"min_text_length" json:"min_text_length" jsonschema:"default=100,description=Minimum extracted text length to keep"`
}

// LLMConfig holds optional LLM settings for discussion summaries
type LLMConfig struct {
	Endpoint    string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=OpenAI-compatible API endpoint. Empty disables summaries"`
	APIKey      string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model       string        `yaml:"model" json:"model" jsonschema:"description=Model name (e.g. gpt-4o-mini or llama3)"`
	Temperature float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.3,description=Temperature for response generation"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=300,description=Maximum tokens in response"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Request timeout"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// Default returns a configuration with all defaults applied, used when no
// config file is provided
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	// server
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}

	// database
	if c.Database.DSN == "" {
		c.Database.DSN = "file:watchscope.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 3600
	}

	// forum
	if c.Forum.BaseURL == "" {
		c.Forum.BaseURL = "https://www.reddit.com"
	}
	if c.Forum.UserAgent == "" {
		c.Forum.UserAgent = "watchscope/1.0 (content recommendation bot)"
	}
	if c.Forum.SearchTimeout == 0 {
		c.Forum.SearchTimeout = 8 * time.Second
	}
	if c.Forum.CommentsTimeout == 0 {
		c.Forum.CommentsTimeout = 5 * time.Second
	}
	if c.Forum.SearchLimit == 0 {
		c.Forum.SearchLimit = 50
	}
	if c.Forum.CommentsLimit == 0 {
		c.Forum.CommentsLimit = 50
	}
	if c.Forum.MaxPosts == 0 {
		c.Forum.MaxPosts = 3
	}
	if c.Forum.FetchDelay == 0 {
		c.Forum.FetchDelay = time.Second
	}
	if c.Forum.MaxDepth == 0 {
		c.Forum.MaxDepth = 10
	}
	if c.Forum.SignalTTL == 0 {
		c.Forum.SignalTTL = time.Hour
	}

	// buzz thresholds
	if c.Buzz.HighVolume == 0 {
		c.Buzz.HighVolume = 100
	}
	if c.Buzz.MediumVolume == 0 {
		c.Buzz.MediumVolume = 20
	}
	if c.Buzz.StrongSentiment == 0 {
		c.Buzz.StrongSentiment = 0.3
	}
	if c.Buzz.MinBucketShare == 0 {
		c.Buzz.MinBucketShare = 0.25
	}
	if c.Buzz.BalanceRatio == 0 {
		c.Buzz.BalanceRatio = 1.5
	}

	// scoring weights, variant B leans harder on the social signal
	if (c.Scoring.VariantA == Weights{}) {
		c.Scoring.VariantA = Weights{Genre: 0.25, Vibe: 0.15, Runtime: 0.10, Recency: 0.10, Critic: 0.25, Social: 0.15}
	}
	if (c.Scoring.VariantB == Weights{}) {
		c.Scoring.VariantB = Weights{Genre: 0.20, Vibe: 0.10, Runtime: 0.10, Recency: 0.10, Critic: 0.15, Social: 0.35}
	}

	// catalog import
	if c.Catalog.ImportTimeout == 0 {
		c.Catalog.ImportTimeout = 30 * time.Second
	}
	if c.Catalog.MaxWorkers == 0 {
		c.Catalog.MaxWorkers = 4
	}

	// extraction
	if c.Extraction.Timeout == 0 {
		c.Extraction.Timeout = 15 * time.Second
	}
	if c.Extraction.UserAgent == "" {
		c.Extraction.UserAgent = "watchscope/1.0"
	}
	if c.Extraction.MinTextLength == 0 {
		c.Extraction.MinTextLength = 100
	}

	// llm, empty endpoint keeps summaries disabled
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.3
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 300
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 30 * time.Second
	}

	// default quiz catalog
	if len(c.Quiz.Questions) == 0 {
		c.Quiz.Questions = DefaultQuestions()
	}
}

// DefaultQuestions returns the built-in quiz question catalog
func DefaultQuestions() []domain.QuizQuestion {
	return []domain.QuizQuestion{
		{ID: domain.QuestionGenres, Prompt: "Which genres do you enjoy?", MultiSelect: true,
			Options: []string{"action", "comedy", "drama", "horror", "sci-fi", "thriller", "romance", "documentary", "animation", "fantasy"}},
		{ID: domain.QuestionMood, Prompt: "What's your mood tonight?", MultiSelect: false,
			Options: []string{"laugh", "cry", "thrill", "think", "escape", "chill"}},
		{ID: domain.QuestionSize, Prompt: "How much do you want to commit?", MultiSelect: false,
			Options: []string{"movie", "mini-series", "season", "multi-season", "flexible"}},
		{ID: domain.QuestionRecency, Prompt: "How fresh should it be?", MultiSelect: false,
			Options: []string{"brand-new", "recent", "last-decade", "any"}},
		{ID: domain.QuestionMaturity, Prompt: "Maximum maturity rating?", MultiSelect: false,
			Options: []string{"G", "PG", "PG-13", "R", "TV-MA"}},
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	// validate forum config
	if cfg.Forum.MaxPosts < 1 {
		return fmt.Errorf("forum.max_posts must be at least 1")
	}
	if cfg.Forum.SearchTimeout < time.Second || cfg.Forum.CommentsTimeout < time.Second {
		return fmt.Errorf("forum timeouts must be at least 1 second")
	}

	// validate buzz thresholds
	if cfg.Buzz.MediumVolume >= cfg.Buzz.HighVolume {
		return fmt.Errorf("buzz.medium_volume must be below buzz.high_volume")
	}
	if cfg.Buzz.MinBucketShare <= 0 || cfg.Buzz.MinBucketShare > 0.5 {
		return fmt.Errorf("buzz.min_bucket_share must be in (0, 0.5]")
	}
	if cfg.Buzz.BalanceRatio < 1 {
		return fmt.Errorf("buzz.balance_ratio must be at least 1")
	}

	// validate scoring weights
	for _, w := range []Weights{cfg.Scoring.VariantA, cfg.Scoring.VariantB} {
		if w.Genre < 0 || w.Vibe < 0 || w.Runtime < 0 || w.Recency < 0 || w.Critic < 0 || w.Social < 0 {
			return fmt.Errorf("scoring weights must be non-negative")
		}
	}

	// validate LLM config when enabled
	if cfg.LLM.Endpoint != "" {
		if cfg.LLM.Model == "" {
			return fmt.Errorf("llm.model is required when llm.endpoint is set")
		}
		if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
			return fmt.Errorf("llm.temperature must be between 0 and 2")
		}
	}

	// validate extraction config when enabled
	if cfg.Extraction.Enabled {
		if cfg.Extraction.Timeout < time.Second {
			return fmt.Errorf("extraction timeout must be at least 1 second")
		}
		if cfg.Extraction.MinTextLength < 0 {
			return fmt.Errorf("extraction min_text_length must be non-negative")
		}
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetForumConfig returns forum client configuration
func (c *Config) GetForumConfig() ForumConfig {
	return c.Forum
}

// GetBuzzConfig returns buzz classification thresholds
func (c *Config) GetBuzzConfig() BuzzConfig {
	return c.Buzz
}

// GetScoringConfig returns scoring weight configuration
func (c *Config) GetScoringConfig() ScoringConfig {
	return c.Scoring
}

// GetLLMConfig returns LLM configuration
func (c *Config) GetLLMConfig() LLMConfig {
	return c.LLM
}

// GetQuestions returns the quiz question catalog
func (c *Config) GetQuestions() []domain.QuizQuestion {
	return c.Quiz.Questions
}
