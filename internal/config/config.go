package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix is the prefix for all environment variables, e.g.
// FINSENT_NEWS_API_KEY.
const envPrefix = "FINSENT"

var validate = validator.New()

// Config is the full configuration shared by the pipelines. Each binary
// reads only its own section; credentials come exclusively from the
// environment and have no baked-in fallback.
type Config struct {
	Logging      LoggingConfig      `yaml:"logging" envconfig:"LOGGING"`
	Returns      ReturnsConfig      `yaml:"returns" envconfig:"RETURNS"`
	Sentiment    SentimentConfig    `yaml:"sentiment" envconfig:"SENTIMENT"`
	News         NewsConfig         `yaml:"news" envconfig:"NEWS"`
	Social       SocialConfig       `yaml:"social" envconfig:"SOCIAL"`
	Fundamentals FundamentalsConfig `yaml:"fundamentals" envconfig:"FUNDAMENTALS"`
}

// LoggingConfig controls the slog logger.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"` // console | file | both
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// ReturnsConfig configures the daily-return pipeline.
type ReturnsConfig struct {
	InputCSV   string `yaml:"input_csv" envconfig:"INPUT_CSV"`
	OutputCSV  string `yaml:"output_csv" envconfig:"OUTPUT_CSV"`
	DateLayout string `yaml:"date_layout" envconfig:"DATE_LAYOUT"`
}

// SentimentConfig configures the per-day sentiment aggregation pipeline.
type SentimentConfig struct {
	InputCSV  string `yaml:"input_csv" envconfig:"INPUT_CSV"`
	OutputCSV string `yaml:"output_csv" envconfig:"OUTPUT_CSV"`
}

// NewsConfig configures the paginated news-search pipeline.
//
// BaseTerms form the broad core query (ORed together). Each TermGroup is
// ANDed to BaseLeft and split into as many sub-queries as the query length
// budget requires. TermGroups nest too deep for environment variables and
// are YAML-only.
type NewsConfig struct {
	BaseURL         string        `yaml:"base_url" envconfig:"BASE_URL"`
	APIKey          string        `yaml:"-" envconfig:"API_KEY" validate:"required"`
	BaseTerms       []string      `yaml:"base_terms" envconfig:"BASE_TERMS" validate:"min=1"`
	BaseLeft        string        `yaml:"base_left" envconfig:"BASE_LEFT" validate:"required"`
	TermGroups      [][]string    `yaml:"term_groups" ignored:"true"`
	Lang            string        `yaml:"lang" envconfig:"LANG"`
	Country         string        `yaml:"country" envconfig:"COUNTRY"`
	SortBy          string        `yaml:"sort_by" envconfig:"SORT_BY"`
	InFields        string        `yaml:"in_fields" envconfig:"IN_FIELDS"`
	ExpandContent   bool          `yaml:"expand_content" envconfig:"EXPAND_CONTENT"`
	From            string        `yaml:"from" envconfig:"FROM" validate:"required,datetime=2006-01-02"`
	To              string        `yaml:"to" envconfig:"TO" validate:"required,datetime=2006-01-02"`
	TargetPerDay    int           `yaml:"target_per_day" envconfig:"TARGET_PER_DAY" validate:"min=1"`
	MaxPerRequest   int           `yaml:"max_per_request" envconfig:"MAX_PER_REQUEST" validate:"min=1"`
	MaxQueryChars   int           `yaml:"max_query_chars" envconfig:"MAX_QUERY_CHARS" validate:"min=20"`
	RetryDelay      time.Duration `yaml:"retry_delay" envconfig:"RETRY_DELAY"`
	RequestInterval time.Duration `yaml:"request_interval" envconfig:"REQUEST_INTERVAL"`
	OutputCSV       string        `yaml:"output_csv" envconfig:"OUTPUT_CSV"`
}

// SocialConfig configures the social-post search pipeline.
type SocialConfig struct {
	BaseURL         string        `yaml:"base_url" envconfig:"BASE_URL"`
	BearerToken     string        `yaml:"-" envconfig:"BEARER_TOKEN" validate:"required"`
	Query           string        `yaml:"query" envconfig:"QUERY" validate:"required"`
	Days            int           `yaml:"days" envconfig:"DAYS" validate:"min=1"`
	MaxResults      int           `yaml:"max_results" envconfig:"MAX_RESULTS" validate:"min=10,max=100"`
	MaxPages        int           `yaml:"max_pages" envconfig:"MAX_PAGES" validate:"min=1"`
	MinLikes        int           `yaml:"min_likes" envconfig:"MIN_LIKES" validate:"min=0"`
	RequestInterval time.Duration `yaml:"request_interval" envconfig:"REQUEST_INTERVAL"`
	OutputXLSX      string        `yaml:"output_xlsx" envconfig:"OUTPUT_XLSX"`
}

// FundamentalsConfig configures the fundamentals/ratio pipeline.
type FundamentalsConfig struct {
	BaseURL              string `yaml:"base_url" envconfig:"BASE_URL"`
	Ticker               string `yaml:"ticker" envconfig:"TICKER" validate:"required"`
	Start                string `yaml:"start" envconfig:"START" validate:"required,datetime=2006-01-02"`
	End                  string `yaml:"end" envconfig:"END" validate:"omitempty,datetime=2006-01-02"`
	OutputXLSX           string `yaml:"output_xlsx" envconfig:"OUTPUT_XLSX"`
	SentimentCSV         string `yaml:"sentiment_csv" envconfig:"SENTIMENT_CSV"`
	SentimentDateColumn  string `yaml:"sentiment_date_column" envconfig:"SENTIMENT_DATE_COLUMN"`
	SentimentValueColumn string `yaml:"sentiment_value_column" envconfig:"SENTIMENT_VALUE_COLUMN"`
}

// Default returns the configuration defaults. Values mirror the documented
// limits of the upstream APIs (request caps, query length budget, pagination
// pacing).
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/finsent.log",
		},
		Returns: ReturnsConfig{
			OutputCSV:  "daily_returns.csv",
			DateLayout: "1/2/2006",
		},
		Sentiment: SentimentConfig{
			OutputCSV: "daily_sentiment.csv",
		},
		News: NewsConfig{
			BaseURL:   "https://gnews.io/api/v4/search",
			BaseTerms: []string{"Tesla", "TSLA", `"Elon Musk"`, "trsla"},
			BaseLeft:  "Tesla",
			TermGroups: [][]string{
				{"Cybertruck", `"Model 3"`, `"Model Y"`, `"Model S"`, `"Model X"`, "Roadster"},
				{"Gigafactory", `"Giga Texas"`, `"Giga Berlin"`, `"Giga Shanghai"`, `"Giga Nevada"`},
				{"Supercharger", "FSD", `"Full Self-Driving"`, "Optimus"},
				{"investment", "invest", "shares", "stock", "stake"},
				{"government", `"White House"`, "Congress", "Senate", "regulator", "SEC", "FTC", "EU", "summit", "hearing", "meeting"},
			},
			Lang:            "en",
			SortBy:          "publishedAt",
			InFields:        "title,description,content",
			ExpandContent:   true,
			TargetPerDay:    100,
			MaxPerRequest:   25,
			MaxQueryChars:   190,
			RetryDelay:      2 * time.Second,
			RequestInterval: 250 * time.Millisecond,
			OutputCSV:       "news_articles.csv",
		},
		Social: SocialConfig{
			BaseURL:         "https://api.twitter.com/2/tweets/search/recent",
			Query:           `(Tesla OR "Elon Musk" OR "Tesla stock") lang:en -is:retweet`,
			Days:            7,
			MaxResults:      100,
			MaxPages:        5,
			MinLikes:        0,
			RequestInterval: 1200 * time.Millisecond,
			OutputXLSX:      "social_posts.xlsx",
		},
		Fundamentals: FundamentalsConfig{
			BaseURL:              "https://query1.finance.yahoo.com",
			Ticker:               "TSLA",
			Start:                "2015-01-01",
			OutputXLSX:           "fundamentals.xlsx",
			SentimentDateColumn:  "Date",
			SentimentValueColumn: "Sentiment_Score",
		},
	}
}

// Load builds the configuration: defaults, then the optional YAML file, then
// environment variables on top.
func Load() (*Config, error) {
	cfg := Default()

	if path := configFilePath(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	return &cfg, nil
}

// configFilePath returns the YAML config path: FINSENT_CONFIG if set,
// otherwise ./finsent.yml when present, otherwise empty.
func configFilePath() string {
	if p := os.Getenv(envPrefix + "_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("finsent.yml"); err == nil {
		return "finsent.yml"
	}
	return ""
}

// Validate checks the section a pipeline is about to run with. A missing
// credential surfaces here, before any work starts.
func (c NewsConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("news config: %w", err)
	}
	return nil
}

func (c SocialConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("social config: %w", err)
	}
	return nil
}

func (c FundamentalsConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("fundamentals config: %w", err)
	}
	return nil
}

// Window returns the inclusive fetch window as parsed dates.
func (c NewsConfig) Window() (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", c.From)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse from date: %w", err)
	}
	to, err := time.Parse("2006-01-02", c.To)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse to date: %w", err)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to date %s precedes from date %s", c.To, c.From)
	}
	return from, to, nil
}

// Range returns the price-history window; End defaults to today.
func (c FundamentalsConfig) Range() (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", c.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse start date: %w", err)
	}
	end := time.Now().UTC()
	if c.End != "" {
		end, err = time.Parse("2006-01-02", c.End)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse end date: %w", err)
		}
	}
	return start, end, nil
}
