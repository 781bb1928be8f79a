package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 服务端配置
type Config struct {
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Game   GameConfig   `yaml:"game"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	MaxConnections int      `yaml:"max_connections"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Addr 返回监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 游戏配置
type GameConfig struct {
	TimePerQuestion  int `yaml:"time_per_question"` // 默认答题时长（秒），房间设置可覆盖
	SelectionTimeout int `yaml:"selection_timeout"` // 轮换模式选择超时（秒）
	ResultsInterval  int `yaml:"results_interval"`  // 结果展示时长（秒），到时自动下一题
	LobbyTimeout     int `yaml:"lobby_timeout"`     // 空闲大厅房间超时（分钟）
	MaxPlayers       int `yaml:"max_players"`       // 单房间最大玩家数
}

// TimePerQuestionDuration 返回默认答题时长
func (c *GameConfig) TimePerQuestionDuration() time.Duration {
	return time.Duration(c.TimePerQuestion) * time.Second
}

// SelectionTimeoutDuration 返回选择超时时长
func (c *GameConfig) SelectionTimeoutDuration() time.Duration {
	return time.Duration(c.SelectionTimeout) * time.Second
}

// ResultsIntervalDuration 返回结果展示时长
func (c *GameConfig) ResultsIntervalDuration() time.Duration {
	return time.Duration(c.ResultsInterval) * time.Second
}

// LobbyTimeoutDuration 返回大厅房间超时时长
func (c *GameConfig) LobbyTimeoutDuration() time.Duration {
	return time.Duration(c.LobbyTimeout) * time.Minute
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// 设置默认值
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 1780
	}
	if cfg.Server.MaxConnections == 0 {
		cfg.Server.MaxConnections = 4096
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Game.TimePerQuestion == 0 {
		cfg.Game.TimePerQuestion = 30
	}
	if cfg.Game.SelectionTimeout == 0 {
		cfg.Game.SelectionTimeout = 15
	}
	if cfg.Game.ResultsInterval == 0 {
		cfg.Game.ResultsInterval = 5
	}
	if cfg.Game.LobbyTimeout == 0 {
		cfg.Game.LobbyTimeout = 10
	}
	if cfg.Game.MaxPlayers == 0 {
		cfg.Game.MaxPlayers = 8
	}

	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           1780,
			MaxConnections: 4096,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Game: GameConfig{
			TimePerQuestion:  30,
			SelectionTimeout: 15,
			ResultsInterval:  5,
			LobbyTimeout:     10,
			MaxPlayers:       8,
		},
	}
}
