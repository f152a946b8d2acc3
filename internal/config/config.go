package config

import (
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/dyluth/retro/pkg/retro"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "retro.yml"

// RetroConfig represents the top-level retro.yml configuration.
type RetroConfig struct {
	Version     string       `yaml:"version"`
	Session     string       `yaml:"session"`
	Redis       RedisConfig  `yaml:"redis"`
	PushTimeout string       `yaml:"push_timeout,omitempty"` // Go duration string, default 10s
	Stage       retro.Stage  `yaml:"stage"`
	User        UserConfig   `yaml:"user"`
	Users       []UserConfig `yaml:"users,omitempty"` // All collaborators, in display order
}

// RedisConfig specifies the Redis connection for the session channel.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// UserConfig identifies a participant.
type UserConfig struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	Facilitator bool   `yaml:"facilitator,omitempty"`
}

// Load reads and validates a retro.yml file.
func Load(path string) (*RetroConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg RetroConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for completeness and consistency.
func (c *RetroConfig) Validate() error {
	if c.Version != "1" {
		return fmt.Errorf("unsupported config version: %q (expected \"1\")", c.Version)
	}
	if c.Session == "" {
		return fmt.Errorf("session name is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.Stage != "" {
		if err := c.Stage.Validate(); err != nil {
			return err
		}
	}
	if c.User.ID == 0 {
		return fmt.Errorf("user.id is required and must be non-zero")
	}
	if c.User.Name == "" {
		return fmt.Errorf("user.name is required")
	}
	if c.PushTimeout != "" {
		d, err := time.ParseDuration(c.PushTimeout)
		if err != nil {
			return fmt.Errorf("invalid push_timeout %q: %w", c.PushTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("push_timeout must be positive, got %q", c.PushTimeout)
		}
	}

	seen := make(map[int]string, len(c.Users))
	for _, u := range c.Users {
		if u.ID == 0 {
			return fmt.Errorf("users entry %q must have a non-zero id", u.Name)
		}
		if prev, dup := seen[u.ID]; dup {
			return fmt.Errorf("users entries %q and %q share id %d", prev, u.Name, u.ID)
		}
		seen[u.ID] = u.Name
	}
	return nil
}

// RedisOptions converts the config into go-redis connection options.
func (c *RetroConfig) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}

// PushTimeoutDuration returns the configured push timeout, or zero when
// unset so the channel client applies its default.
func (c *RetroConfig) PushTimeoutDuration() time.Duration {
	if c.PushTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.PushTimeout)
	if err != nil {
		return 0
	}
	return d
}

// CurrentUser returns the configured participant as a domain user.
func (c *RetroConfig) CurrentUser() retro.User {
	return retro.User{
		ID:            c.User.ID,
		Name:          c.User.Name,
		IsFacilitator: c.User.Facilitator,
	}
}

// Collaborators returns the configured users list, in display order.
func (c *RetroConfig) Collaborators() []retro.User {
	out := make([]retro.User, 0, len(c.Users))
	for _, u := range c.Users {
		out = append(out, retro.User{
			ID:            u.ID,
			Name:          u.Name,
			IsFacilitator: u.Facilitator,
		})
	}
	return out
}

// CurrentStage returns the configured stage, defaulting to idea
// generation when unset.
func (c *RetroConfig) CurrentStage() retro.Stage {
	if c.Stage == "" {
		return retro.StageIdeaGeneration
	}
	return c.Stage
}
