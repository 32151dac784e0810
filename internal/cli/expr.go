package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/strongdm/cedar-go-generators/abac"
	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/ast"
	"github.com/strongdm/cedar-go-generators/generator"
	"github.com/strongdm/cedar-go-generators/hierarchy"
)

type ExprOptions struct {
	Type   string
	Depth  int
	Count  int
	Ground bool
}

type exprResult struct {
	Seed     uint64          `json:"seed" yaml:"seed"`
	Expr     string          `json:"expr,omitempty" yaml:"expr,omitempty"`
	Unknowns []unknownResult `json:"unknowns,omitempty" yaml:"unknowns,omitempty"`
	Error    string          `json:"error,omitempty" yaml:"error,omitempty"`
}

type unknownResult struct {
	Name  string `json:"name" msgpack:"name" yaml:"name"`
	Type  string `json:"type" msgpack:"type" yaml:"type"`
	Value string `json:"value" msgpack:"value" yaml:"value"`
}

func NewExprCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExprOptions{}

	cmd := &cobra.Command{
		Use:   "expr",
		Short: "Generate Cedar expressions",
		Long: `Generate Cedar expressions. With --type the expressions evaluate to
that type (e.g. Long, Set<String>, ipaddr); otherwise the type is drawn.
Consecutive expressions use consecutive seeds.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpr(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Type, "type", "t", "", "target type")
	cmd.Flags().IntVarP(&opts.Depth, "depth", "d", 0, "recursion budget (default: generator.max_depth)")
	cmd.Flags().IntVarP(&opts.Count, "count", "n", 1, "number of expressions")
	cmd.Flags().BoolVar(&opts.Ground, "ground", false, "ground entity UIDs in a generated hierarchy")

	return cmd
}

func runExpr(rootOpts *RootOptions, opts *ExprOptions, cmd *cobra.Command) error {
	var target *abac.Type
	if opts.Type != "" {
		t, err := abac.ParseType(opts.Type)
		if err != nil {
			return err
		}
		target = &t
	}
	s, err := rootOpts.newSession()
	if err != nil {
		return err
	}
	defer func() { _ = s.log.Sync() }()
	depth := opts.Depth
	if depth <= 0 {
		depth = s.config.Generator.MaxDepth
	}

	results := make([]exprResult, opts.Count)
	for i := range results {
		seed := rootOpts.Seed + uint64(i)
		o := arbitrary.New(oracleBytes(seed, s.config.OracleBytes))
		results[i] = generateExpr(s, seed, target, depth, opts.Ground, o)
	}

	if rootOpts.Format != "text" {
		return writeStructured(cmd.OutOrStdout(), rootOpts.Format, results)
	}
	w := cmd.OutOrStdout()
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(w, "// seed %d: %s\n", r.Seed, r.Error)
			continue
		}
		for _, u := range r.Unknowns {
			fmt.Fprintf(w, "// %s: %s = %s\n", u.Name, u.Type, u.Value)
		}
		fmt.Fprintln(w, r.Expr)
	}
	return nil
}

// generateExpr runs one generation session. Failures are reported in the
// result, not returned.
func generateExpr(s *session, seed uint64, target *abac.Type, depth int, ground bool, o arbitrary.Oracle) exprResult {
	res := exprResult{Seed: seed}
	g := s.generator.With(generator.WithUnknownPool(abac.NewUnknownPool()))
	if ground {
		h, err := hierarchy.Generate(g.Index(), s.config.Hierarchy, o)
		if err != nil {
			res.Error = generator.Kind(err)
			return res
		}
		g = g.With(generator.WithHierarchy(h))
	}

	var n ast.IsNode
	var err error
	if target != nil {
		n, err = g.GenerateExprForType(*target, depth, o)
	} else {
		n, err = g.GenerateExpr(depth, o)
	}
	if err != nil {
		s.log.Debug("expression skipped", zap.Uint64("seed", seed), zap.Error(err))
		res.Error = generator.Kind(err)
		return res
	}
	res.Expr = ast.Render(n)
	res.Unknowns = unknownResults(g.Unknowns())
	return res
}

func unknownResults(p *abac.UnknownPool) []unknownResult {
	var out []unknownResult
	for _, u := range p.Entries() {
		out = append(out, unknownResult{
			Name:  u.Name,
			Type:  u.Type.String(),
			Value: string(u.Value.MarshalCedar()),
		})
	}
	return out
}
