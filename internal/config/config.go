package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "IRCBOT"

// Config holds all bot configuration
type Config struct {
	Server       string   `mapstructure:"server" yaml:"server"`
	Port         int      `mapstructure:"port" yaml:"port"`
	ServerPass   string   `mapstructure:"server_pass" yaml:"server_pass"`
	Nick         string   `mapstructure:"nick" yaml:"nick"`
	NickPass     string   `mapstructure:"nick_pass" yaml:"nick_pass"`
	Username     string   `mapstructure:"username" yaml:"username"`
	RealName     string   `mapstructure:"real_name" yaml:"real_name"`
	Channels     []string `mapstructure:"channels" yaml:"channels"`
	AutoRejoin   bool     `mapstructure:"auto_rejoin" yaml:"auto_rejoin"`
	VersionReply string   `mapstructure:"version_reply" yaml:"version_reply"`
	LogLevel     string   `mapstructure:"log_level" yaml:"log_level"`
	DataDir      string   `mapstructure:"data_dir" yaml:"data_dir"`
	Transcript   bool     `mapstructure:"transcript" yaml:"transcript"`
}

// Default returns the configuration used for keys missing from the file
func Default() Config {
	return Config{
		Server:     "localhost",
		Port:       6667,
		Nick:       "ircbot",
		RealName:   "ircengine bot",
		AutoRejoin: true,
		LogLevel:   "info",
		DataDir:    "./data",
	}
}

// Load reads a YAML configuration file, applying defaults and IRCBOT_*
// environment overrides. A missing file is created with the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("server", cfg.Server)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("nick", cfg.Nick)
	v.SetDefault("nick_pass", cfg.NickPass)
	v.SetDefault("server_pass", cfg.ServerPass)
	v.SetDefault("username", cfg.Username)
	v.SetDefault("real_name", cfg.RealName)
	v.SetDefault("channels", cfg.Channels)
	v.SetDefault("auto_rejoin", cfg.AutoRejoin)
	v.SetDefault("version_reply", cfg.VersionReply)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("transcript", cfg.Transcript)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := writeDefault(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields needed to connect
func (c *Config) Validate() error {
	if c.Server == "" {
		return errors.New("config: server is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if c.Nick == "" || strings.ContainsAny(c.Nick, " :\r\n") {
		return fmt.Errorf("config: invalid nick %q", c.Nick)
	}
	return nil
}

// Addr returns the host:port to dial
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server, strconv.Itoa(c.Port))
}

func writeDefault(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
