package core

import (
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type CoreConfig struct {
	Addr     string      `toml:"addr"`
	Log      Log         `toml:"log"`
	Postgres PGConfig    `toml:"postgres"`
	Chat     ChatConfig  `toml:"chat"`
	Metrics  MetricsAuth `toml:"metrics"`

	bytes []byte
}

func (c CoreConfig) FromConfig() string {
	return string(c.bytes)
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

func (l Log) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type PGConfig struct {
	DSN string `toml:"dsn"`
}

func (p PGConfig) FormatDSN() string {
	return p.DSN
}

type ChatConfig struct {
	SendQueueSize  int `toml:"send_queue_size"`
	SendTimeoutSec int `toml:"send_timeout_second"`
}

func (c ChatConfig) SendTimeout() time.Duration {
	if c.SendTimeoutSec <= 0 {
		return time.Second * 5
	}
	return time.Duration(c.SendTimeoutSec) * time.Second
}

type MetricsAuth struct {
	Enable bool `toml:"enable"`
}

// MustLoadBaseConfig 配置文件不存在时回退到环境变量。
func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return loadFromENV()
	}
	conf, err := LoadCustomConfig[CoreConfig](path)
	if err != nil {
		panic(err)
	}
	return conf
}

func LoadCustomConfig[T any](path string) (conf T, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}
	_, err = toml.Decode(string(raw), &conf)

	if v, ok := any(&conf).(interface{ setBytes([]byte) }); ok {
		v.setBytes(raw)
	}
	return
}

func (c *CoreConfig) setBytes(raw []byte) {
	c.bytes = raw
}

func loadFromENV() CoreConfig {
	return CoreConfig{
		Addr: os.Getenv("SOUL_API_SERVICE_ADDRESS"),
		Log: Log{
			Level: os.Getenv("SOUL_API_LOG_LEVEL"),
			Path:  os.Getenv("SOUL_API_LOG_PATH"),
		},
		Postgres: PGConfig{
			DSN: os.Getenv("SOUL_API_POSTGRESQL_DSN"),
		},
	}
}
