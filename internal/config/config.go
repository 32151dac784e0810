// Package config loads generator settings from defaults, an optional config
// file and CEDARGEN_* environment variables, in increasing precedence.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/strongdm/cedar-go-generators/generator"
	"github.com/strongdm/cedar-go-generators/hierarchy"
)

// EnvPrefix prefixes every environment override, e.g.
// CEDARGEN_GENERATOR_MAX_DEPTH.
const EnvPrefix = "CEDARGEN"

type Config struct {
	Generator generator.Settings `mapstructure:"generator" yaml:"generator"`
	Hierarchy hierarchy.Config   `mapstructure:"hierarchy" yaml:"hierarchy"`
	// Workers is the corpus command's concurrency.
	Workers int `mapstructure:"workers" yaml:"workers"`
	// OracleBytes is the length of each random oracle the corpus command draws.
	OracleBytes int `mapstructure:"oracle_bytes" yaml:"oracle_bytes"`
}

func Default() Config {
	return Config{
		Generator:   generator.DefaultSettings(),
		Hierarchy:   hierarchy.DefaultConfig(),
		Workers:     4,
		OracleBytes: 4096,
	}
}

// SetDefaults registers every key of Default on v so that environment
// variables bind even without a config file.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("generator.max_depth", d.Generator.MaxDepth)
	v.SetDefault("generator.max_width", d.Generator.MaxWidth)
	v.SetDefault("generator.enable_like", d.Generator.EnableLike)
	v.SetDefault("generator.enable_extensions", d.Generator.EnableExtensions)
	v.SetDefault("generator.enable_unknowns", d.Generator.EnableUnknowns)
	v.SetDefault("generator.enable_arbitrary_func_call", d.Generator.EnableArbitraryFuncCall)

	v.SetDefault("hierarchy.max_entities_per_type", d.Hierarchy.MaxEntitiesPerType)

	v.SetDefault("workers", d.Workers)
	v.SetDefault("oracle_bytes", d.OracleBytes)
}

// Load reads the config file at path, if non-empty, and applies environment
// overrides. The result is validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c Config) Validate() error {
	if err := c.Generator.Validate(); err != nil {
		return err
	}
	if err := c.Hierarchy.Validate(); err != nil {
		return err
	}
	if c.Workers < 1 {
		return errors.Newf("workers must be positive, got %d", c.Workers)
	}
	if c.OracleBytes < 1 {
		return errors.Newf("oracle bytes must be positive, got %d", c.OracleBytes)
	}
	return nil
}
