package checkpointer

import (
	"errors"
	"time"
)

// Config controls how often the cursor is persisted and how hard a failed
// write is retried before the stream gives up.
type Config struct {
	Interval     time.Duration // between periodic cursor writes
	WriteTimeout time.Duration // per write, including the final one
	MaxRetries   int           // extra attempts after the first failed periodic write
	RetryBackoff time.Duration
}

// DefaultConfig writes the cursor every 30s and tolerates three failed writes in a row.
func DefaultConfig() Config {
	return Config{
		Interval:     30 * time.Second,
		WriteTimeout: time.Second,
		MaxRetries:   3,
		RetryBackoff: 300 * time.Millisecond,
	}
}

// Validate rejects settings Start cannot run with.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return errors.New("invalid interval: must be positive")
	}
	if c.WriteTimeout <= 0 {
		return errors.New("invalid write timeout: must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("invalid max retries: must not be negative")
	}
	return nil
}
