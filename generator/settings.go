package generator

import "github.com/cockroachdb/errors"

// Settings are the global generation limits and feature toggles.
type Settings struct {
	// MaxDepth is the recursion budget callers are expected to pass at the
	// root. Unknown injection is calibrated against it.
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
	// MaxWidth bounds the number of elements in generated sets and records.
	MaxWidth int `mapstructure:"max_width" yaml:"max_width"`

	EnableLike              bool `mapstructure:"enable_like" yaml:"enable_like"`
	EnableExtensions        bool `mapstructure:"enable_extensions" yaml:"enable_extensions"`
	EnableUnknowns          bool `mapstructure:"enable_unknowns" yaml:"enable_unknowns"`
	EnableArbitraryFuncCall bool `mapstructure:"enable_arbitrary_func_call" yaml:"enable_arbitrary_func_call"`
}

func DefaultSettings() Settings {
	return Settings{
		MaxDepth:         7,
		MaxWidth:         7,
		EnableLike:       true,
		EnableExtensions: true,
	}
}

func (s Settings) Validate() error {
	if s.MaxDepth < 1 {
		return errors.Wrapf(ErrInvalidSettings, "max depth must be positive, got %d", s.MaxDepth)
	}
	if s.MaxWidth < 1 {
		return errors.Wrapf(ErrInvalidSettings, "max width must be positive, got %d", s.MaxWidth)
	}
	return nil
}
