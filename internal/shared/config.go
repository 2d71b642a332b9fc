package shared

import (
	"os"
	"strconv"
	"time"

	"hotel_onboarding/internal/quality"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	MySQLDSN  string
	RedisAddr string
	RedisDB   int
	RedisPass string

	SessionTTL    time.Duration
	CacheTTL      time.Duration
	SweepBatch    int
	SweepInterval time.Duration
	RateRPS       int

	// Engine thresholds; everything else comes from quality.DefaultConfig.
	MinImageWidth  int
	MinImageHeight int
	BlurThreshold  float64
	MinDescription int
	MinImages      int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return def
	}
	def := quality.DefaultConfig()
	return Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/onboarding?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		SessionTTL:     time.Duration(atoi("SESSION_TTL_HOURS", 72)) * time.Hour,
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		SweepBatch:     atoi("SWEEP_BATCH", 100),
		SweepInterval:  time.Duration(atoi("SWEEP_INTERVAL_SECONDS", 300)) * time.Second,
		RateRPS:        atoi("HTTP_RATE_RPS", 50),
		MinImageWidth:  atoi("MIN_IMAGE_WIDTH", def.MinWidth),
		MinImageHeight: atoi("MIN_IMAGE_HEIGHT", def.MinHeight),
		BlurThreshold:  atof("BLUR_THRESHOLD", def.BlurThreshold),
		MinDescription: atoi("MIN_DESCRIPTION_LENGTH", def.MinDescriptionLength),
		MinImages:      atoi("MIN_IMAGE_COUNT", def.MinImageCount),
	}
}

// Quality materializes the injected engine config; the engine itself never
// reads the environment.
func (c Config) Quality() quality.Config {
	q := quality.DefaultConfig()
	q.MinWidth = c.MinImageWidth
	q.MinHeight = c.MinImageHeight
	q.BlurThreshold = c.BlurThreshold
	q.MinDescriptionLength = c.MinDescription
	q.MinImageCount = c.MinImages
	return q
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
