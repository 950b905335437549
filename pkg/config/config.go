package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

type ServerConfig struct {
	MetricsPort int    `mapstructure:"metrics_port"`
	SecretKey   string `mapstructure:"secret_key"`
	Issuer      string `mapstructure:"issuer"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
	Topic   string `mapstructure:"topic"`
}

type EngineConfig struct {
	DefaultAction  string              `mapstructure:"default_action"`
	AlertThreshold float64             `mapstructure:"alert_threshold"`
	RiskWeights    RiskWeightsConfig   `mapstructure:"risk_weights"`
	Behavior       BehaviorConfig      `mapstructure:"behavior"`
	Device         DeviceTrustConfig   `mapstructure:"device"`
	Feed           ThreatFeedConfig    `mapstructure:"threat_feed"`
	Response       ResponseConfig      `mapstructure:"response"`
	Notifications  NotificationsConfig `mapstructure:"notifications"`
}

type RiskWeightsConfig struct {
	Identity float64 `mapstructure:"identity"`
	Device   float64 `mapstructure:"device"`
	Behavior float64 `mapstructure:"behavior"`
	Threat   float64 `mapstructure:"threat"`
}

func (w RiskWeightsConfig) Sum() float64 {
	return w.Identity + w.Device + w.Behavior + w.Threat
}

type BehaviorConfig struct {
	HistoryBound    int                   `mapstructure:"history_bound"`
	SignalThreshold float64               `mapstructure:"signal_threshold"`
	GeoRadius       float64               `mapstructure:"geo_radius"`
	Weights         BehaviorWeightsConfig `mapstructure:"weights"`
}

type BehaviorWeightsConfig struct {
	TimeOfDay float64 `mapstructure:"time_of_day"`
	Location  float64 `mapstructure:"location"`
	Duration  float64 `mapstructure:"duration"`
	Novelty   float64 `mapstructure:"novelty"`
}

func (w BehaviorWeightsConfig) Sum() float64 {
	return w.TimeOfDay + w.Location + w.Duration + w.Novelty
}

type DeviceTrustConfig struct {
	HistoryBound  int     `mapstructure:"history_bound"`
	MaxHourDrift  float64 `mapstructure:"max_hour_drift"`
	HistoryRadius float64 `mapstructure:"history_radius"`
}

type ThreatFeedConfig struct {
	Sources     []string      `mapstructure:"sources"`
	Interval    time.Duration `mapstructure:"interval"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxFailures uint32        `mapstructure:"max_failures"`
}

type ResponseConfig struct {
	QueueSize int `mapstructure:"queue_size"`
}

type NotificationsConfig struct {
	AlertWebhookURL      string `mapstructure:"alert_webhook_url"`
	EscalationWebhookURL string `mapstructure:"escalation_webhook_url"`
}

var globalConfig Config
var zeroTrustConfig ZeroTrustConfig

func Load(configPath string) error {
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}

	setDefaultValues()

	if err := globalConfig.Engine.validate(); err != nil {
		return fmt.Errorf("invalid engine configuration: %w", err)
	}

	if err := loadConfigFile(configPath, "zerotrust", &zeroTrustConfig); err != nil {
		return fmt.Errorf("could not load zero trust config file: %w", err)
	}

	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	v := viper.New()
	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found", fileName)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues() {
	if globalConfig.Database.SSLMode == "" {
		globalConfig.Database.SSLMode = "disable"
	}
	engine := &globalConfig.Engine
	if engine.DefaultAction == "" {
		engine.DefaultAction = "challenge"
	}
	if engine.AlertThreshold == 0 {
		engine.AlertThreshold = 0.7
	}
	if engine.RiskWeights.Sum() == 0 {
		engine.RiskWeights = RiskWeightsConfig{Identity: 0.2, Device: 0.4, Behavior: 0.3, Threat: 0.1}
	}
	if engine.Behavior.HistoryBound == 0 {
		engine.Behavior.HistoryBound = 1000
	}
	if engine.Behavior.SignalThreshold == 0 {
		engine.Behavior.SignalThreshold = 0.6
	}
	if engine.Behavior.GeoRadius == 0 {
		engine.Behavior.GeoRadius = 5.0
	}
	if engine.Behavior.Weights.Sum() == 0 {
		engine.Behavior.Weights = BehaviorWeightsConfig{TimeOfDay: 0.3, Location: 0.3, Duration: 0.2, Novelty: 0.2}
	}
	if engine.Device.HistoryBound == 0 {
		engine.Device.HistoryBound = 10
	}
	if engine.Device.MaxHourDrift == 0 {
		engine.Device.MaxHourDrift = 4
	}
	if engine.Device.HistoryRadius == 0 {
		engine.Device.HistoryRadius = 1.0
	}
	if engine.Feed.Interval == 0 {
		engine.Feed.Interval = 5 * time.Minute
	}
	if engine.Feed.Timeout == 0 {
		engine.Feed.Timeout = 30 * time.Second
	}
	if engine.Feed.MaxFailures == 0 {
		engine.Feed.MaxFailures = 5
	}
	if engine.Response.QueueSize == 0 {
		engine.Response.QueueSize = 100
	}
}

func (e EngineConfig) validate() error {
	if math.Abs(e.RiskWeights.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("risk weights must sum to 1.0, got %f", e.RiskWeights.Sum())
	}
	if math.Abs(e.Behavior.Weights.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("behavior weights must sum to 1.0, got %f", e.Behavior.Weights.Sum())
	}
	if e.AlertThreshold < 0 || e.AlertThreshold > 1 {
		return fmt.Errorf("alert threshold must be between 0 and 1, got %f", e.AlertThreshold)
	}
	switch e.DefaultAction {
	case "allow", "deny", "challenge", "review":
	default:
		return fmt.Errorf("invalid default action: %s", e.DefaultAction)
	}
	return nil
}

func GetConfig() *Config {
	return &globalConfig
}

func GetZeroTrustConfig() *ZeroTrustConfig {
	return &zeroTrustConfig
}
