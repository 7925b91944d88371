package conf

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// 配置加载（venue地址、风控阈值、重试策略等）

type WebhookConfig struct {
	Secret string `yaml:"secret"`
}

// Venue Hyperliquid 接入点配置
type VenueConfig struct {
	BaseURL    string `yaml:"base-url"`    // REST 根地址，例如 https://api.hyperliquid.xyz
	Simulated  bool   `yaml:"simulated"`   // 是否使用测试网
	TestnetURL string `yaml:"testnet-url"` // 测试网地址
}

func (v VenueConfig) URL() string {
	if v.Simulated && v.TestnetURL != "" {
		return v.TestnetURL
	}
	return v.BaseURL
}

// Transport 重试与限速策略
type TransportConfig struct {
	MaxAttempts        int           `yaml:"max-attempts"`          // 最大请求次数（含首次）
	InitialDelay       time.Duration `yaml:"initial-delay"`         // 首次重试退避
	MaxDelay           time.Duration `yaml:"max-delay"`             // 退避上限
	Multiplier         float64       `yaml:"multiplier"`            // 退避倍率
	RateLimitPerSecond float64       `yaml:"rate-limit-per-second"` // 每秒最多请求数
	Timeout            time.Duration `yaml:"timeout"`               // 单次请求超时
}

// Advisor 建议引擎参数
type AdvisorConfig struct {
	DefaultLeverage float64 `yaml:"default-leverage"`
	MinLeverage     float64 `yaml:"min-leverage"`
	MaxLeverage     float64 `yaml:"max-leverage"`
	VolatilityBias  float64 `yaml:"volatility-bias"` // 可选的波动率偏置，0表示不启用

	// 两个“快周期”阈值刻意分开配置：入场策略判定用20m，执行方式判定用15m
	FastEntryMaxMinutes int `yaml:"fast-entry-max-minutes"`
	FastExecMaxMinutes  int `yaml:"fast-exec-max-minutes"`
	SlowExecMinMinutes  int `yaml:"slow-exec-min-minutes"`
	SlowEntryMinMinutes int `yaml:"slow-entry-min-minutes"`
}

// Risk 硬性风控上限
type RiskConfig struct {
	AccountEquityUsd       float64 `yaml:"account-equity-usd"`
	MaxPositionNotionalUsd float64 `yaml:"max-position-notional-usd"`
	MaxPositionRiskUsd     float64 `yaml:"max-position-risk-usd"`
	MaxLeverage            float64 `yaml:"max-leverage"`
	MaxDailyTrades         int64   `yaml:"max-daily-trades"`
	MaxDailyLossUsd        float64 `yaml:"max-daily-loss-usd"`
	MaxDailyNotionalUsd    float64 `yaml:"max-daily-notional-usd"`
}

// Engine 订单构造引擎参数
type EngineConfig struct {
	SlippageBps     float64       `yaml:"slippage-bps"`     // 市价入场允许的滑点
	MetadataTTL     time.Duration `yaml:"metadata-ttl"`     // 资产元数据缓存有效期
	RefreshBlocking bool          `yaml:"refresh-blocking"` // true: 等待刷新完成后再构造订单
}

type Db struct {
	DbName   string `yaml:"dbname"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	FileName   string `yaml:"file-name"`
	TimeFormat string `yaml:"time-format"`
	MaxSize    int    `yaml:"max-size"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAge     int    `yaml:"max-age"`
	Compress   bool   `yaml:"compress"`
	LocalTime  bool   `yaml:"local-time"`
	Console    bool   `yaml:"console"`
}

type Config struct {
	AppName      string `yaml:"app_name"`
	Listen       string `yaml:"listen"`
	Mode         string `yaml:"mode"`
	Language     string `yaml:"language"`
	MaxPingCount int    `yaml:"max-ping-count"`

	Webhook   WebhookConfig   `yaml:"webhook"`
	Venue     VenueConfig     `yaml:"venue"`
	Transport TransportConfig `yaml:"transport"`
	Advisor   AdvisorConfig   `yaml:"advisor"`
	Risk      RiskConfig      `yaml:"risk"`
	Engine    EngineConfig    `yaml:"engine"`
	Db        `yaml:"database"`
	Log       LogConfig `yaml:"log"`
}

var AppConfig Config

func LoadConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("Read config file error %w", err)
	}
	if err := yaml.Unmarshal(data, &AppConfig); err != nil {
		return fmt.Errorf("Unmarshal config yaml error: %w", err)
	}
	return nil
}
