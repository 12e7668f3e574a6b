package triage

import (
	"fmt"
	"os"
	"strconv"

	"github.com/kbristol/sift/internal/assembler"
	"github.com/kbristol/sift/internal/classifier"
	"github.com/kbristol/sift/internal/priority"
)

// EnvTriageWorkers overrides the unread-processing worker count.
const EnvTriageWorkers = "SIFT_TRIAGE_WORKERS"

const defaultWorkers = 4

// Config aggregates the triage pipeline's tunables.
type Config struct {
	// Workers bounds concurrent workflow starts during ProcessUnread.
	Workers int `toml:"workers"`

	Priority   priority.Config   `toml:"priority"`
	Assembler  assembler.Config  `toml:"assembler"`
	Classifier classifier.Config `toml:"classifier"`
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	c.Priority.Merge(&overlay.Priority)
	c.Assembler.Merge(&overlay.Assembler)
	c.Classifier.Merge(&overlay.Classifier)
}

// Finalize applies defaults, environment overrides, and validation.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *Config) loadDefaults() {
	if c.Workers == 0 {
		c.Workers = defaultWorkers
	}
	c.Priority.LoadDefaults()
	c.Assembler.LoadDefaults()
	c.Classifier.LoadDefaults()
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvTriageWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
}

func (c *Config) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if err := c.Priority.Validate(); err != nil {
		return fmt.Errorf("priority: %w", err)
	}
	if err := c.Assembler.Validate(); err != nil {
		return fmt.Errorf("assembler: %w", err)
	}
	if err := c.Classifier.Validate(); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	return nil
}
