package cli

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/strongdm/cedar-go-generators/abac"
	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/ast"
	"github.com/strongdm/cedar-go-generators/generator"
	"github.com/strongdm/cedar-go-generators/hierarchy"
	"github.com/strongdm/cedar-go-generators/internal/stats"
)

type CorpusOptions struct {
	Out   string
	Count int
	Depth int
}

// Case is one corpus entry: the oracle that produced it and everything
// generated from it.
type Case struct {
	Seed     uint64          `msgpack:"seed"`
	Oracle   []byte          `msgpack:"oracle"`
	Expr     string          `msgpack:"expr"`
	Nodes    int             `msgpack:"nodes"`
	Entities []byte          `msgpack:"entities"`
	Unknowns []unknownResult `msgpack:"unknowns,omitempty"`
}

type corpusSummary struct {
	Out      string             `json:"out" yaml:"out"`
	Written  int                `json:"written" yaml:"written"`
	Outcomes map[string]float64 `json:"outcomes" yaml:"outcomes"`
}

func NewCorpusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CorpusOptions{}

	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Write a fuzzing corpus",
		Long: `Generate --count cases in parallel and write them to a tar.gz archive,
one msgpack-encoded case per file. Each case holds a populated entity
hierarchy and an expression grounded in it, both drawn from the same
oracle. Cases whose generation fails are counted and skipped.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCorpus(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "corpus.tar.gz", "output tar.gz")
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 100, "number of cases to attempt")
	cmd.Flags().IntVarP(&opts.Depth, "depth", "d", 0, "recursion budget (default: generator.max_depth)")

	return cmd
}

func runCorpus(rootOpts *RootOptions, opts *CorpusOptions, cmd *cobra.Command) error {
	reg := prometheus.NewRegistry()
	rec := stats.New(reg)
	s, err := rootOpts.newSession(generator.WithObserver(rec))
	if err != nil {
		return err
	}
	defer func() { _ = s.log.Sync() }()
	depth := opts.Depth
	if depth <= 0 {
		depth = s.config.Generator.MaxDepth
	}

	cases, err := generateCorpus(cmd.Context(), s, rec, rootOpts.Seed, opts.Count, depth)
	if err != nil {
		return err
	}
	written, err := writeCorpus(opts.Out, cases)
	if err != nil {
		return err
	}

	summary := corpusSummary{Out: opts.Out, Written: written, Outcomes: outcomes(reg)}
	s.log.Info("corpus written", zap.String("out", opts.Out), zap.Int("written", written), zap.Int("attempted", opts.Count))
	if rootOpts.Format != "text" {
		return writeStructured(cmd.OutOrStdout(), rootOpts.Format, summary)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d of %d cases to %s\n", written, opts.Count, opts.Out)
	return nil
}

// generateCorpus fills one slot per seed. Failed slots stay nil.
func generateCorpus(ctx context.Context, s *session, rec *stats.Recorder, seed uint64, count, depth int) ([]*Case, error) {
	cases := make([]*Case, count)
	errg, ctx := errgroup.WithContext(ctx)
	errg.SetLimit(s.config.Workers)
	for i := range cases {
		errg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := generateCase(s, rec, seed+uint64(i), depth)
			if err != nil {
				s.log.Debug("case skipped", zap.Uint64("seed", seed+uint64(i)), zap.String("kind", generator.Kind(err)))
				return nil
			}
			cases[i] = c
			return nil
		})
	}
	if err := errg.Wait(); err != nil {
		return nil, err
	}
	return cases, nil
}

func generateCase(s *session, rec *stats.Recorder, seed uint64, depth int) (*Case, error) {
	data := oracleBytes(seed, s.config.OracleBytes)
	o := arbitrary.New(data)
	g := s.generator.With(generator.WithUnknownPool(abac.NewUnknownPool()))
	h, err := hierarchy.Generate(g.Index(), s.config.Hierarchy, o)
	if err != nil {
		return nil, err
	}
	g = g.With(generator.WithHierarchy(h))
	if err := g.PopulateHierarchy(o); err != nil {
		return nil, err
	}
	n, err := g.GenerateExpr(depth, o)
	if err != nil {
		return nil, err
	}
	rec.ObserveExpr("expr", n)
	entities, err := h.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "encoding entities")
	}
	return &Case{
		Seed:     seed,
		Oracle:   data,
		Expr:     ast.Render(n),
		Nodes:    ast.Count(n),
		Entities: entities,
		Unknowns: unknownResults(g.Unknowns()),
	}, nil
}

// writeCorpus archives the non-nil cases in seed order.
func writeCorpus(outPath string, cases []*Case) (int, error) {
	outFile, err := os.Create(outPath)
	if err != nil {
		return 0, errors.Wrap(err, "create output")
	}
	defer func() { _ = outFile.Close() }()

	gzw := gzip.NewWriter(outFile)
	defer func() { _ = gzw.Close() }()

	tw := tar.NewWriter(gzw)
	defer func() { _ = tw.Close() }()

	var written int
	for _, c := range cases {
		if c == nil {
			continue
		}
		data, err := msgpack.Marshal(c)
		if err != nil {
			return written, errors.Wrapf(err, "encoding case %d", c.Seed)
		}
		name := path.Join("corpus", fmt.Sprintf("%020d.msgpack", c.Seed))
		hdr := &tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(data)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return written, errors.Wrapf(err, "write header for %s", name)
		}
		if _, err := tw.Write(data); err != nil {
			return written, errors.Wrapf(err, "write %s", name)
		}
		written++
	}

	if err := tw.Close(); err != nil {
		return written, errors.Wrap(err, "finalize tar")
	}
	if err := gzw.Close(); err != nil {
		return written, errors.Wrap(err, "finalize gzip")
	}
	if err := outFile.Close(); err != nil {
		return written, errors.Wrap(err, "close output")
	}
	return written, nil
}

// ReadCorpus decodes every case of an archive written by the corpus
// command.
func ReadCorpus(r io.Reader) ([]Case, error) {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "gzip reader")
	}
	defer func() { _ = gzr.Close() }()

	var cases []Case
	tr := tar.NewReader(gzr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return cases, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "read tar")
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		var c Case
		if err := msgpack.NewDecoder(tr).Decode(&c); err != nil {
			return nil, errors.Wrapf(err, "decode %s", hdr.Name)
		}
		cases = append(cases, c)
	}
}

// outcomes sums the attempts counter by outcome label.
func outcomes(reg *prometheus.Registry) map[string]float64 {
	out := map[string]float64{}
	families, err := reg.Gather()
	if err != nil {
		return out
	}
	for _, f := range families {
		if f.GetName() != "cedargen_attempts_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" {
					out[l.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}
	return out
}
