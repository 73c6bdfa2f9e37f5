package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv     string `env:"APP_ENV" envDefault:"local"`
	BotToken   string `env:"BOT_TOKEN,required"`
	HealthPort int    `env:"HEALTH_PORT" envDefault:"8080"`

	YouTubeAPIKey string `env:"YOUTUBE_API_KEY,required"`

	GeminiAPIKey string  `env:"GEMINI_API_KEY,required"`
	GeminiModel  string  `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiRPS    float64 `env:"GEMINI_RPS" envDefault:"0.5"`

	OpenAIAPIKey string  `env:"OPENAI_API_KEY"`
	OpenAIModel  string  `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIRPS    float64 `env:"OPENAI_RPS" envDefault:"1"`

	NotionToken      string `env:"NOTION_TOKEN"`
	NotionDatabaseID string `env:"NOTION_DATABASE_ID"`

	ChannelConfigPath string `env:"CHANNEL_CONFIG_PATH" envDefault:"./channel_config.json"`

	TranscriptLanguage  string        `env:"TRANSCRIPT_LANGUAGE" envDefault:"ko"`
	TranscriptNearDupes bool          `env:"TRANSCRIPT_NEAR_DUPES" envDefault:"false"`
	MultiLinkPause      time.Duration `env:"MULTI_LINK_PAUSE" envDefault:"3s"`

	// Batch worker
	PostgresDSN        string        `env:"POSTGRES_DSN"`
	WorkerBatchSize    int           `env:"WORKER_BATCH_SIZE" envDefault:"5"`
	WorkerPollInterval time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"10s"`

	// Database pool
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"2"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
