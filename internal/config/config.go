package config

import (
	"os"
	"time"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server Server `yaml:"server"`
	Auth   Auth   `yaml:"auth"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Auth struct {
	// Providers are identity-provider hosts tried in order; the first one
	// that accepts the token wins.
	Providers       []string `yaml:"providers"`
	TimeoutSeconds  int      `yaml:"timeoutSeconds"`
	CacheTTLMinutes int      `yaml:"cacheTTLMinutes"`
}

func (a Auth) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

func (a Auth) CacheTTL() time.Duration {
	return time.Duration(a.CacheTTLMinutes) * time.Minute
}

func Load(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	config.applyDefaults()

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8000"
	}
	if len(c.Auth.Providers) == 0 {
		c.Auth.Providers = []string{"https://bsky.social"}
	}
	if c.Auth.TimeoutSeconds <= 0 {
		c.Auth.TimeoutSeconds = 5
	}
	if c.Auth.CacheTTLMinutes <= 0 {
		c.Auth.CacheTTLMinutes = 60
	}
}
