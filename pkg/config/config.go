package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	CORSAllowedOrigins []string

	Database  DatabaseConfig
	Log       LogConfig
	Scheduler SchedulerConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig tunes every optimizer strategy. Enabled and ProposalTTL
// are loaded here but nothing else in this module reads them.
type SchedulerConfig struct {
	Enabled     bool
	ProposalTTL time.Duration

	// GRASP layer
	GraspIterations  int
	GraspRCLSize     int
	GraspRandomSeed  int64

	// Genetic layer
	GeneticPopulationSize int
	GeneticGenerations    int

	// Relaxation / exact pass
	ExactMaxCandidatesPerCourse int
	ExactTimeBudget             time.Duration

	// Default constraint shaping used when a caller omits them.
	DefaultMaxConsecutiveBlocks int
	DefaultMinGapMinutes        int
	DefaultReserveBreakMinutes  int
	DefaultMaxDailyHours        int
	DefaultBalanceWeight        float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.CORSAllowedOrigins = splitAndTrim(v.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		Enabled:                     v.GetBool("ENABLE_SCHEDULER"),
		ProposalTTL:                 parseDuration(v.GetString("SCHEDULER_PROPOSAL_TTL"), 30*time.Minute),
		GraspIterations:             v.GetInt("SCHEDULER_GRASP_ITERATIONS"),
		GraspRCLSize:                v.GetInt("SCHEDULER_GRASP_RCL_SIZE"),
		GraspRandomSeed:             v.GetInt64("SCHEDULER_GRASP_SEED"),
		GeneticPopulationSize:       v.GetInt("SCHEDULER_GENETIC_POPULATION"),
		GeneticGenerations:          v.GetInt("SCHEDULER_GENETIC_GENERATIONS"),
		ExactMaxCandidatesPerCourse: v.GetInt("SCHEDULER_EXACT_MAX_CANDIDATES"),
		ExactTimeBudget:             parseDuration(v.GetString("SCHEDULER_EXACT_TIME_BUDGET"), 5*time.Second),
		DefaultMaxConsecutiveBlocks: v.GetInt("SCHEDULER_DEFAULT_MAX_CONSECUTIVE_BLOCKS"),
		DefaultMinGapMinutes:        v.GetInt("SCHEDULER_DEFAULT_MIN_GAP_MINUTES"),
		DefaultReserveBreakMinutes:  v.GetInt("SCHEDULER_DEFAULT_RESERVE_BREAK_MINUTES"),
		DefaultMaxDailyHours:        v.GetInt("SCHEDULER_DEFAULT_MAX_DAILY_HOURS"),
		DefaultBalanceWeight:        v.GetFloat64("SCHEDULER_DEFAULT_BALANCE_WEIGHT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable_core")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_SCHEDULER", true)
	v.SetDefault("SCHEDULER_PROPOSAL_TTL", "30m")
	v.SetDefault("SCHEDULER_GRASP_ITERATIONS", 6)
	v.SetDefault("SCHEDULER_GRASP_RCL_SIZE", 5)
	v.SetDefault("SCHEDULER_GRASP_SEED", 0)
	v.SetDefault("SCHEDULER_GENETIC_POPULATION", 8)
	v.SetDefault("SCHEDULER_GENETIC_GENERATIONS", 6)
	v.SetDefault("SCHEDULER_EXACT_MAX_CANDIDATES", 5)
	v.SetDefault("SCHEDULER_EXACT_TIME_BUDGET", "5s")
	v.SetDefault("SCHEDULER_DEFAULT_MAX_CONSECUTIVE_BLOCKS", 4)
	v.SetDefault("SCHEDULER_DEFAULT_MIN_GAP_MINUTES", 0)
	v.SetDefault("SCHEDULER_DEFAULT_RESERVE_BREAK_MINUTES", 0)
	v.SetDefault("SCHEDULER_DEFAULT_MAX_DAILY_HOURS", 6)
	v.SetDefault("SCHEDULER_DEFAULT_BALANCE_WEIGHT", 0.3)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
