package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type MongoDBConfig struct {
	URI      string `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	User     string `yaml:"user" env:"MONGO_USER"`
	Password string `yaml:"password" env:"MONGO_PASSWORD"`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"marketplace_db"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type NATSConfig struct {
	URL            string        `yaml:"url" env:"NATS_URL" env-default:"nats://localhost:4222"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"NATS_CONNECT_TIMEOUT" env-default:"5s"`
	WakeSubject    string        `yaml:"wake_subject" env:"NATS_WAKE_SUBJECT" env-default:"client.foreground"`
}

type SMTPConfig struct {
	Host        string `yaml:"host" env:"SMTP_HOST"`
	Port        int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username    string `yaml:"username" env:"SMTP_USERNAME"`
	Password    string `yaml:"password" env:"SMTP_PASSWORD"`
	SenderEmail string `yaml:"sender_email" env:"SMTP_SENDER_EMAIL"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding   string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`
	TimeFormat string `yaml:"time_format" env:"LOG_TIME_FORMAT" env-default:"2006-01-02T15:04:05.000Z07:00"`
}

type MetricsConfig struct {
	Port string `yaml:"port" env:"METRICS_PORT" env-default:"9095"`
}

// ExpirationConfig tunes the reconciliation engine. The window and dedup
// values are product-tuning constants inherited from the mobile app; they are
// kept configurable rather than baked in.
type ExpirationConfig struct {
	PollInterval      time.Duration `yaml:"poll_interval" env:"EXPIRATION_POLL_INTERVAL" env-default:"30s"`
	InitialDelay      time.Duration `yaml:"initial_delay" env:"EXPIRATION_INITIAL_DELAY" env-default:"10s"`
	WakeDebounce      time.Duration `yaml:"wake_debounce" env:"EXPIRATION_WAKE_DEBOUNCE" env-default:"5s"`
	CatchUpWindow     time.Duration `yaml:"catch_up_window" env:"EXPIRATION_CATCH_UP_WINDOW" env-default:"24h"`
	DedupWindow       time.Duration `yaml:"dedup_window" env:"EXPIRATION_DEDUP_WINDOW" env-default:"5m"`
	ViewerDedupWindow time.Duration `yaml:"viewer_dedup_window" env:"EXPIRATION_VIEWER_DEDUP_WINDOW" env-default:"24h"`
	CacheSize         int           `yaml:"cache_size" env:"EXPIRATION_CACHE_SIZE" env-default:"1024"`
	CacheTTL          time.Duration `yaml:"cache_ttl" env:"EXPIRATION_CACHE_TTL" env-default:"24h"`
}

type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"local"`
	MongoDB    MongoDBConfig    `yaml:"mongo"`
	Redis      RedisConfig      `yaml:"redis"`
	NATS       NATSConfig       `yaml:"nats"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	Logger     LoggerConfig     `yaml:"logger"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Expiration ExpirationConfig `yaml:"expiration"`
}

func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	err := cleanenv.ReadConfig(path, &cfg)
	if err != nil {
		if _, ok := err.(*os.PathError); ok {
			log.Printf("Warning: Config file not found at %s, attempting to load from environment variables only.", path)
			if errEnv := cleanenv.ReadEnv(&cfg); errEnv != nil {
				return nil, errEnv
			}
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH_EXPIRATION_SERVICE")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}
