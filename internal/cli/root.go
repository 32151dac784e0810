// Package cli implements the cedar-gen command line.
package cli

import (
	"math/rand/v2"
	"os"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/strongdm/cedar-go-generators/generator"
	"github.com/strongdm/cedar-go-generators/internal/config"
	"github.com/strongdm/cedar-go-generators/schema"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	SchemaPath string
	Seed       uint64
	Verbose    bool
	Format     string // "text" | "json" | "yaml"
}

var ValidFormats = []string{"text", "json", "yaml"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cedar-gen",
		Short: "Generate random Cedar inputs from a schema",
		Long: `Generate random Cedar expressions, entity hierarchies and fuzzing
corpora that conform to a Cedar JSON schema. The same seed always
produces the same output.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return errors.Newf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (yaml, json or toml)")
	cmd.PersistentFlags().StringVarP(&opts.SchemaPath, "schema", "s", "", "Cedar JSON schema")
	cmd.PersistentFlags().Uint64Var(&opts.Seed, "seed", 0, "seed for the random oracle")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	_ = cmd.MarkPersistentFlagRequired("schema")

	cmd.AddCommand(NewExprCommand(opts))
	cmd.AddCommand(NewEntitiesCommand(opts))
	cmd.AddCommand(NewCorpusCommand(opts))

	return cmd
}

// session is what every subcommand needs before it can generate.
type session struct {
	config    *config.Config
	generator *generator.Generator
	log       *zap.Logger
}

func (o *RootOptions) newSession(extra ...generator.Option) (*session, error) {
	log, err := newLogger(o.Verbose)
	if err != nil {
		return nil, errors.Wrap(err, "building logger")
	}
	c, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	s, err := loadSchema(o.SchemaPath)
	if err != nil {
		return nil, err
	}
	opts := append([]generator.Option{generator.WithLogger(log)}, extra...)
	g, err := generator.New(s, c.Generator, opts...)
	if err != nil {
		return nil, err
	}
	log.Debug("session ready",
		zap.String("schema", o.SchemaPath),
		zap.Int("max_depth", c.Generator.MaxDepth),
		zap.Int("entity_types", len(g.Index().EntityTypes)),
	)
	return &session{config: c, generator: g, log: log}, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	return cfg.Build()
}

func loadSchema(path string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading schema")
	}
	var s schema.Schema
	if err := s.UnmarshalJSON(data); err != nil {
		return nil, errors.Wrapf(err, "parsing schema %s", path)
	}
	return &s, nil
}

// oracleBytes expands seed into n bytes of oracle input.
func oracleBytes(seed uint64, n int) []byte {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(r.Uint32())
	}
	return b
}
