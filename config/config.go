package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Redis    Redis
	Rabbit   Rabbit
	Scoring  Scoring
	Points   Points
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Redis struct {
	Addr       string // empty disables the content cache
	Password   string
	DB         int
	TTLSeconds int
}

type Rabbit struct {
	URL      string // empty disables completion events
	Exchange string
}

// Scoring is deployment policy, not engine structure: the level threshold
// table and the percent denominator convention both vary between deployments
// of nominally the same test.
type Scoring struct {
	LevelPreset   string // "named" or "cefr"
	LevelBands    string // optional override, e.g. "0:A1,85:A2,95:B1"
	WeightedTotal bool   // divide by summed question weights instead of count
}

type Points struct {
	BasePoints       int
	LifetimeCap      int
	RecordZeroAwards bool // persist a 0-point grant instead of leaving the user eligible later
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_TTL_SECONDS", 300)
	viper.SetDefault("RABBIT_EXCHANGE", "levelcheck.events")
	viper.SetDefault("SCORING_LEVEL_PRESET", "named")
	viper.SetDefault("POINTS_BASE", 2)
	viper.SetDefault("POINTS_LIFETIME_CAP", 10)

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Redis.Addr = viper.GetString("REDIS_ADDR")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")
	config.Redis.TTLSeconds = viper.GetInt("REDIS_TTL_SECONDS")

	config.Rabbit.URL = viper.GetString("RABBIT_URL")
	config.Rabbit.Exchange = viper.GetString("RABBIT_EXCHANGE")

	config.Scoring.LevelPreset = viper.GetString("SCORING_LEVEL_PRESET")
	config.Scoring.LevelBands = viper.GetString("SCORING_LEVEL_BANDS")
	config.Scoring.WeightedTotal = viper.GetBool("SCORING_WEIGHTED_TOTAL")

	config.Points.BasePoints = viper.GetInt("POINTS_BASE")
	config.Points.LifetimeCap = viper.GetInt("POINTS_LIFETIME_CAP")
	config.Points.RecordZeroAwards = viper.GetBool("POINTS_RECORD_ZERO_AWARDS")

	log.Info().Str("port", config.Server.Port).Str("db", config.Database.Name).Msg("Config loaded")
	return &config, nil
}
