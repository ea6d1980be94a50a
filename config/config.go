package config

import (
	"log"
	"math"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// CaptureConfig sizes the capture path.
type CaptureConfig struct {
	SampleRate      int     `mapstructure:"sample_rate" validate:"required,gt=0"`
	ChunkSize       int     `mapstructure:"chunk_size" validate:"required,gt=0"`
	AnalysisSeconds float64 `mapstructure:"analysis_seconds" validate:"required,gt=0"`
	DelaySeconds    float64 `mapstructure:"delay_seconds" validate:"gte=0"`
	MarginSeconds   float64 `mapstructure:"margin_seconds" validate:"gte=0"`
}

// MaxSamples is the capture buffer capacity: analysis window plus margin.
func (c CaptureConfig) MaxSamples() int {
	return c.samples(c.AnalysisSeconds + c.MarginSeconds)
}

// AnalysisSamples is the number of most recent samples handed to the analyser.
func (c CaptureConfig) AnalysisSamples() int {
	return c.samples(c.AnalysisSeconds)
}

// DelaySamples is how long to keep recording after a tap before analysing.
func (c CaptureConfig) DelaySamples() int {
	return c.samples(c.DelaySeconds)
}

func (c CaptureConfig) samples(seconds float64) int {
	return int(math.Round(seconds * float64(c.SampleRate)))
}

type LatencyConfig struct {
	GoodRunsRequired int           `mapstructure:"good_runs_required" validate:"required,gt=0"`
	MaxBadRuns       int           `mapstructure:"max_bad_runs" validate:"gte=0"`
	RunDelay         time.Duration `mapstructure:"run_delay" validate:"gte=0"`
}

type ScanConfig struct {
	InitialLowBursts int `mapstructure:"initial_low_bursts" validate:"required,gt=0"`
	Parallelism      int `mapstructure:"parallelism" validate:"required,gt=0"`
	MaxRounds        int `mapstructure:"max_rounds" validate:"required,gt=1"`
}

type ReportConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type ChartConfig struct {
	Points         int           `mapstructure:"points" validate:"required,gt=1"`
	StreamInterval time.Duration `mapstructure:"stream_interval" validate:"required"`
}

// Application config structure
type AppConfig struct {
	Name        string `mapstructure:"service_name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Host        string `mapstructure:"host" validate:"required"`
	Port        int    `mapstructure:"port" validate:"required"`
	LogLevel    string `mapstructure:"log_level" validate:"required"`
	LogPath     string `mapstructure:"log_path"`
	Environment string `mapstructure:"env"`

	Capture CaptureConfig `mapstructure:"capture" validate:"required"`
	Latency LatencyConfig `mapstructure:"latency" validate:"required"`
	Scan    ScanConfig    `mapstructure:"scan" validate:"required"`
	Report  ReportConfig  `mapstructure:"report"`
	Chart   ChartConfig   `mapstructure:"chart" validate:"required"`
}

// reading config and intializing configs for application
func InitConfig() (*viper.Viper, error) {
	vConfig := viper.NewWithOptions(viper.KeyDelimiter("__"))

	vConfig.AddConfigPath(".")
	vConfig.SetConfigName(".env")
	path := os.Getenv("ENV_PATH")
	if path != "" {
		log.Printf("env path %v", path)
		vConfig.SetConfigFile(path)
	}
	vConfig.SetConfigType("env")
	vConfig.AutomaticEnv()

	setDefault(vConfig)
	if err := vConfig.ReadInConfig(); err != nil {
		log.Printf("no env file found, reading from env variables.")
	}
	return vConfig, nil
}

func setDefault(v *viper.Viper) {
	// keeping watch on https://github.com/spf13/viper/issues/188
	v.SetDefault("SERVICE_NAME", "harness-api")
	v.SetDefault("VERSION", "0.0.1")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", 9095)
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("LOG_PATH", "")
	v.SetDefault("ENV", "development")

	v.SetDefault("CAPTURE__SAMPLE_RATE", 48000)
	v.SetDefault("CAPTURE__CHUNK_SIZE", 256)
	// touch latency budget plus output latency budget
	v.SetDefault("CAPTURE__ANALYSIS_SECONDS", 1.4)
	v.SetDefault("CAPTURE__DELAY_SECONDS", 1.2)
	v.SetDefault("CAPTURE__MARGIN_SECONDS", 0.5)

	v.SetDefault("LATENCY__GOOD_RUNS_REQUIRED", 5)
	v.SetDefault("LATENCY__MAX_BAD_RUNS", 5)
	v.SetDefault("LATENCY__RUN_DELAY", "1s")

	v.SetDefault("SCAN__INITIAL_LOW_BURSTS", 2)
	v.SetDefault("SCAN__PARALLELISM", 1)
	v.SetDefault("SCAN__MAX_ROUNDS", 32)

	v.SetDefault("REPORT__ENABLED", false)
	v.SetDefault("REPORT__PATH", "harness-reports.db")

	v.SetDefault("CHART__POINTS", 512)
	v.SetDefault("CHART__STREAM_INTERVAL", "250ms")
}

// Getting application config from viper
func GetApplicationConfig(v *viper.Viper) (*AppConfig, error) {
	var config AppConfig
	err := v.Unmarshal(&config)
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}

	// valdating the app config
	validate := validator.New()
	err = validate.Struct(&config)
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}
	return &config, nil
}

// DefaultConfig returns the validated defaults without touching env files.
func DefaultConfig() *AppConfig {
	v := viper.NewWithOptions(viper.KeyDelimiter("__"))
	setDefault(v)
	cfg, err := GetApplicationConfig(v)
	if err != nil {
		panic(err)
	}
	return cfg
}
