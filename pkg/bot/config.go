// Copyright 2024-2026 Aiku AI

package bot

import (
	_ "embed"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	up "go.mau.fi/util/configupgrade"
	"gopkg.in/yaml.v3"
)

//go:embed example-config.yaml
var ExampleConfig string

// ErrInvalidConfig wraps every validation failure of PostProcess.
var ErrInvalidConfig = errors.New("invalid config")

// ReconnectConfig shapes the reconnect backoff.
type ReconnectConfig struct {
	MinWait time.Duration `yaml:"min_wait"`
	MaxWait time.Duration `yaml:"max_wait"`
	Steps   int           `yaml:"steps"`
}

// LoggingConfig holds the log level name.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Config holds everything the engine needs for one network.
type Config struct {
	Network  string `yaml:"network"`
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	Nickname string `yaml:"nickname"`
	Username string `yaml:"username"`
	Realname string `yaml:"realname"`

	AdminChannel       string `yaml:"admin_channel"`
	AdminChannelSecret string `yaml:"admin_channel_secret"`
	CommandPrefix      string `yaml:"command_prefix"`

	// Timeout is the liveness timeout; a PING is sent every Timeout/5.
	Timeout      time.Duration   `yaml:"timeout"`
	ConnectGrace time.Duration   `yaml:"connect_grace"`
	SendInterval time.Duration   `yaml:"send_interval"`
	Reconnect    ReconnectConfig `yaml:"reconnect"`

	Modules      []string `yaml:"modules"`
	Channels     []string `yaml:"channels"`
	NickservAuth string   `yaml:"nickserv_auth"`
	// AdminAPIAddr is the listen address for the admin HTTP API that serves
	// /api/reload-modules and /api/modules. Empty disables the API.
	AdminAPIAddr string `yaml:"admin_api_addr"`

	Logging LoggingConfig `yaml:"logging"`
}

func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type rawConfig Config
	return node.Decode((*rawConfig)(c))
}

// PostProcess fills defaults and validates the config.
func (c *Config) PostProcess() error {
	if c.Username == "" {
		c.Username = "suzy"
	}
	if c.Realname == "" {
		c.Realname = "Suzy Bot"
	}
	if c.CommandPrefix == "" {
		c.CommandPrefix = "!"
	}
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
	if c.ConnectGrace == 0 {
		c.ConnectGrace = 2 * time.Second
	}
	if c.SendInterval == 0 {
		c.SendInterval = 50 * time.Millisecond
	}
	if c.Reconnect.MinWait == 0 {
		c.Reconnect.MinWait = 5 * time.Second
	}
	if c.Reconnect.MaxWait == 0 {
		c.Reconnect.MaxWait = 60 * time.Second
	}
	if c.Reconnect.Steps == 0 {
		c.Reconnect.Steps = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	switch {
	case c.Server == "":
		return fmt.Errorf("%w: server is required", ErrInvalidConfig)
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	case c.Nickname == "":
		return fmt.Errorf("%w: nickname is required", ErrInvalidConfig)
	case c.AdminChannel == "":
		return fmt.Errorf("%w: admin_channel is required", ErrInvalidConfig)
	case c.Timeout < 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	case c.Reconnect.MinWait < 0 || c.Reconnect.MaxWait < c.Reconnect.MinWait:
		return fmt.Errorf("%w: reconnect waits must satisfy 0 <= min_wait <= max_wait", ErrInvalidConfig)
	case c.Reconnect.Steps < 0:
		return fmt.Errorf("%w: reconnect steps must be positive", ErrInvalidConfig)
	}
	return nil
}

// Address returns the host:port to dial.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server, strconv.Itoa(c.Port))
}

// PingInterval is how often the liveness probe runs.
func (c *Config) PingInterval() time.Duration {
	return c.Timeout / 5
}

func upgradeConfig(helper up.Helper) {
	helper.Copy(up.Str, "network")
	helper.Copy(up.Str, "server")
	helper.Copy(up.Int, "port")
	helper.Copy(up.Str, "nickname")
	helper.Copy(up.Str, "username")
	helper.Copy(up.Str, "realname")
	helper.Copy(up.Str, "admin_channel")
	helper.Copy(up.Str, "admin_channel_secret")
	helper.Copy(up.Str, "command_prefix")
	helper.Copy(up.Str, "timeout")
	helper.Copy(up.Str, "connect_grace")
	helper.Copy(up.Str, "send_interval")
	helper.Copy(up.Str, "reconnect", "min_wait")
	helper.Copy(up.Str, "reconnect", "max_wait")
	helper.Copy(up.Int, "reconnect", "steps")
	helper.Copy(up.List, "modules")
	helper.Copy(up.List, "channels")
	helper.Copy(up.Str, "nickserv_auth")
	helper.Copy(up.Str, "admin_api_addr")
	helper.Copy(up.Str, "logging", "level")
}

// Upgrader returns the config upgrader based on the example config.
func Upgrader() up.BaseUpgrader {
	return &up.StructUpgrader{
		SimpleUpgrader: up.SimpleUpgrader(upgradeConfig),
		Blocks:         nil,
		Base:           ExampleConfig,
	}
}

// LoadConfig reads the config at path, fills keys missing from it with the
// example config's values, decodes and post-processes it. With save set, the
// upgraded file is written back.
func LoadConfig(path string, save bool) (*Config, error) {
	data, _, err := up.Do(path, save, Upgrader())
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.PostProcess(); err != nil {
		return nil, fmt.Errorf("failed to post-process config: %w", err)
	}
	return &cfg, nil
}
