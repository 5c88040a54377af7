package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultPath = "config/config.yaml"
	EnvPrefix   = "POKER"
)

type Config struct {
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Database struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"database"`
	Redis struct {
		Addr     string        `mapstructure:"addr"`
		Password string        `mapstructure:"password"`
		DB       int           `mapstructure:"db"`
		RoomTTL  time.Duration `mapstructure:"roomTTL"`
	} `mapstructure:"redis"`
	JWT struct {
		Secret   string        `mapstructure:"secret"`
		TokenTTL time.Duration `mapstructure:"tokenTTL"`
	} `mapstructure:"jwt"`
	Auth struct {
		Required bool `mapstructure:"required"`
	} `mapstructure:"auth"`
	Game struct {
		StartingChips int64         `mapstructure:"startingChips"`
		MaxPlayers    int           `mapstructure:"maxPlayers"`
		RestartDelay  time.Duration `mapstructure:"restartDelay"`
	} `mapstructure:"game"`
	Matchmaker struct {
		TableSize int           `mapstructure:"tableSize"`
		PlayerTTL time.Duration `mapstructure:"playerTTL"`
	} `mapstructure:"matchmaker"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

var C Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("database.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.roomTTL", 24*time.Hour)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.tokenTTL", 24*time.Hour)
	v.SetDefault("auth.required", true)
	v.SetDefault("game.startingChips", 1000)
	v.SetDefault("game.maxPlayers", 12)
	v.SetDefault("game.restartDelay", 6*time.Second)
	v.SetDefault("matchmaker.tableSize", 6)
	v.SetDefault("matchmaker.playerTTL", 5*time.Minute)
	v.SetDefault("log.level", "info")
}

// Load 读取 .env（可选）、配置文件和 POKER_ 开头的环境变量；path 为空时使用默认路径且允许文件不存在
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	optional := path == ""
	if optional {
		path = DefaultPath
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if !optional || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	C = cfg
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.Required && c.JWT.Secret == "" {
		return errors.New("jwt.secret is required when auth.required is true")
	}
	if c.Game.StartingChips <= 0 {
		return fmt.Errorf("game.startingChips must be positive, got %d", c.Game.StartingChips)
	}
	if c.Game.MaxPlayers < 2 {
		return fmt.Errorf("game.maxPlayers must be at least 2, got %d", c.Game.MaxPlayers)
	}
	if c.Matchmaker.TableSize < 2 || c.Matchmaker.TableSize > c.Game.MaxPlayers {
		return fmt.Errorf("matchmaker.tableSize must be between 2 and %d, got %d", c.Game.MaxPlayers, c.Matchmaker.TableSize)
	}
	return nil
}
