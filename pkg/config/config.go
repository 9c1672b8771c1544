// Package config loads learning hyperparameters from TOML or YAML files.
//
// A file uses the same keys as the flat hyperparameter map accepted by
// [learn.ParseOptions]:
//
//	scoreFunction = "Log-likelihood"
//	penalisationFunction = "BIC"
//	searchAlgorithm = "Tabu search"
//	maxK = 2
//	tabuListSize = 20
//
// Keys left out of the file stay out of the map, so the learner's
// defaults apply to them. Unknown keys are rejected.
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/mctbnc/pkg/errors"
	"github.com/matzehuels/mctbnc/pkg/learn"
)

// Format is a configuration file syntax.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf infers the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeUnsupported, "config %s: unsupported extension (want .toml, .yaml or .yml)", path)
	}
}

// Config is a typed hyperparameter file. Pointer fields distinguish an
// absent key from a zero value.
type Config struct {
	Score        string `toml:"scoreFunction" yaml:"scoreFunction" validate:"omitempty,oneof='Log-likelihood' 'Bayesian Dirichlet equivalent' 'Conditional log-likelihood'"`
	Penalization string `toml:"penalisationFunction" yaml:"penalisationFunction" validate:"omitempty,oneof=No BIC AIC"`
	Algorithm    string `toml:"searchAlgorithm" yaml:"searchAlgorithm" validate:"omitempty,oneof='Hill climbing' 'Per-node hill climbing' 'Tabu search' 'Random-restart hill climbing'"`
	Estimator    string `toml:"estimator" yaml:"estimator" validate:"omitempty,oneof='Maximum likelihood estimation' 'Bayesian estimation'"`

	MaxK          *int `toml:"maxK" yaml:"maxK" validate:"omitempty,min=0"`
	Restarts      *int `toml:"numRestarts" yaml:"numRestarts" validate:"omitempty,min=0"`
	TabuSize      *int `toml:"tabuListSize" yaml:"tabuListSize" validate:"omitempty,min=1"`
	MaxIterations *int `toml:"maxIterations" yaml:"maxIterations" validate:"omitempty,min=0"`
	Workers       *int `toml:"workers" yaml:"workers" validate:"omitempty,min=0"`

	Seed *uint64 `toml:"seed" yaml:"seed"`

	NX  *float64 `toml:"nx" yaml:"nx" validate:"omitempty,gte=0"`
	MXY *float64 `toml:"mxy" yaml:"mxy" validate:"omitempty,gte=0"`
	TX  *float64 `toml:"tx" yaml:"tx" validate:"omitempty,gte=0"`
}

var validate = validator.New()

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read config %s", path)
	}
	return Parse(data, format)
}

// Parse decodes and validates data in the given format.
func Parse(data []byte, format Format) (*Config, error) {
	var c Config
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &c)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil && !stderrors.Is(err, io.EOF) {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode yaml")
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported config format %q", format)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks field values against their tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.New(errors.ErrCodeInvalidConfig, "%s", formatValidationError(err))
	}
	return nil
}

func formatValidationError(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return strings.Join(msgs, "; ")
}

func formatFieldError(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Hyperparameters renders the keys present in c as the flat map.
func (c *Config) Hyperparameters() map[string]string {
	m := make(map[string]string)
	setString := func(key, v string) {
		if v != "" {
			m[key] = v
		}
	}
	setInt := func(key string, v *int) {
		if v != nil {
			m[key] = strconv.Itoa(*v)
		}
	}
	setFloat := func(key string, v *float64) {
		if v != nil {
			m[key] = strconv.FormatFloat(*v, 'g', -1, 64)
		}
	}

	setString(learn.KeyScore, c.Score)
	setString(learn.KeyPenalization, c.Penalization)
	setString(learn.KeyAlgorithm, c.Algorithm)
	setString(learn.KeyEstimator, c.Estimator)
	setInt(learn.KeyMaxK, c.MaxK)
	setInt(learn.KeyRestarts, c.Restarts)
	setInt(learn.KeyTabuSize, c.TabuSize)
	setInt(learn.KeyMaxIterations, c.MaxIterations)
	setInt(learn.KeyWorkers, c.Workers)
	setFloat(learn.KeyNX, c.NX)
	setFloat(learn.KeyMXY, c.MXY)
	setFloat(learn.KeyTX, c.TX)
	if c.Seed != nil {
		m[learn.KeySeed] = strconv.FormatUint(*c.Seed, 10)
	}
	return m
}

// Merge returns the hyperparameters of c overridden by overrides.
func (c *Config) Merge(overrides map[string]string) map[string]string {
	m := c.Hyperparameters()
	maps.Copy(m, overrides)
	return m
}

// Options parses the hyperparameters of c into learning options.
func (c *Config) Options() (learn.Options, error) {
	return learn.ParseOptions(c.Hyperparameters())
}
