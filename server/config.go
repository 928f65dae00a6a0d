package server

import (
	"errors"
	"strings"
	"time"
)

type Config struct {
	Addr            string        `split_words:"true" default:":8000"`
	Mode            string        `split_words:"true" default:"release"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"*"`
	ReadTimeout     time.Duration `split_words:"true" default:"10s"`
	WriteTimeout    time.Duration `split_words:"true" default:"120s"`
	ShutdownTimeout time.Duration `split_words:"true" default:"15s"`
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("http addr is required")
	}
	switch c.Mode {
	case "debug", "release", "test":
	default:
		return errors.New("http mode must be debug, release or test")
	}
	return nil
}
