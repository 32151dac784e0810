package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/generator"
	"github.com/strongdm/cedar-go-generators/hierarchy"
)

func NewEntitiesCommand(rootOpts *RootOptions) *cobra.Command {
	var populate bool

	cmd := &cobra.Command{
		Use:   "entities",
		Short: "Generate an entity hierarchy",
		Long: `Generate an entity hierarchy consistent with the schema: entities of
every type, declared actions and membership edges along memberOf
relations. With --populate (the default) attributes and tags are filled
with values of their declared types.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntities(rootOpts, populate, cmd)
		},
	}

	cmd.Flags().BoolVar(&populate, "populate", true, "fill entity attributes and tags")

	return cmd
}

func runEntities(rootOpts *RootOptions, populate bool, cmd *cobra.Command) error {
	s, err := rootOpts.newSession()
	if err != nil {
		return err
	}
	defer func() { _ = s.log.Sync() }()

	o := arbitrary.New(oracleBytes(rootOpts.Seed, s.config.OracleBytes))
	h, err := hierarchy.Generate(s.generator.Index(), s.config.Hierarchy, o)
	if err != nil {
		return err
	}
	if populate {
		if err := s.generator.With(generator.WithHierarchy(h)).PopulateHierarchy(o); err != nil {
			return err
		}
	}
	s.log.Debug("hierarchy generated", zap.Int("entities", h.Len()), zap.Int("oracle_left", o.Len()))

	if rootOpts.Format != "text" {
		return writeStructured(cmd.OutOrStdout(), rootOpts.Format, h)
	}
	w := cmd.OutOrStdout()
	for _, e := range h.Entities() {
		line := string(e.UID.MarshalCedar())
		if len(e.Parents) > 0 {
			parents := make([]string, len(e.Parents))
			for i, p := range e.Parents {
				parents[i] = string(p.MarshalCedar())
			}
			line += " in [" + strings.Join(parents, ", ") + "]"
		}
		fmt.Fprintln(w, line)
		for _, k := range slices.Sorted(maps.Keys(e.Attrs)) {
			fmt.Fprintf(w, "  .%s = %s\n", k, e.Attrs[k].MarshalCedar())
		}
		for _, k := range slices.Sorted(maps.Keys(e.Tags)) {
			fmt.Fprintf(w, "  [%q] = %s\n", k, e.Tags[k].MarshalCedar())
		}
	}
	return nil
}
