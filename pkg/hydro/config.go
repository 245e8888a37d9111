package hydro

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/go-playground/validator/v10"
)

// Config carries the recognized processing options. SnapTolerance is
// required and has no default: upstream data sources disagree on a sane
// value, so the caller must decide.
type Config struct {
	// SnapTolerance is the maximum distance, in the network's coordinate
	// units, an access point may be moved onto an edge.
	SnapTolerance float64 `yaml:"snap_tolerance" validate:"required,gt=0"`

	// ChunkSize is the number of reach ids processed per chunk. Defaults to
	// the worker count.
	ChunkSize int `yaml:"chunk_size" validate:"omitempty,min=1"`

	// Workers is the size of the worker pool. Defaults to the number of
	// CPUs.
	Workers int `yaml:"workers" validate:"omitempty,min=1"`

	// NewOnly restricts processing to reach ids not already present in the
	// hydroline sink.
	NewOnly bool `yaml:"new_only"`
}

var configValidate = validator.New()

// Validate checks the configuration and returns a descriptive error for the
// first violated constraint.
func (c *Config) Validate() error {
	err := configValidate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("config: field %s failed %q constraint", fe.Field(), fe.Tag())
	}
	return fmt.Errorf("config: %w", err)
}

// WithDefaults returns a copy with unset optional fields filled in.
func (c Config) WithDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = c.Workers
	}
	return c
}
