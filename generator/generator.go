// Package generator produces random Cedar expressions, attribute values and
// entity UIDs that conform to a schema, for use as fuzzing input.
//
// Every decision is drawn from an arbitrary.Oracle, so the same oracle bytes
// always produce the same output. Generation recurses under an explicit
// depth budget and also falls back to non-recursive productions when the
// oracle is close to exhaustion, so it always terminates.
package generator

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/strongdm/cedar-go-generators/abac"
	"github.com/strongdm/cedar-go-generators/arbitrary"
	"github.com/strongdm/cedar-go-generators/hierarchy"
	"github.com/strongdm/cedar-go-generators/schema"
)

// minSupply is the remaining oracle length below which typed generators
// stop recursing.
const minSupply = 10

// Generator holds the collaborators a generation session reads from. It is
// not safe for concurrent use: the unknown pool is shared mutable state.
// Use With to derive an independent session.
type Generator struct {
	schema     *schema.Schema
	index      *schema.Index
	settings   Settings
	constants  *abac.ConstantPool
	extensions *abac.ExtensionFunctions
	unknowns   *abac.UnknownPool
	hierarchy  *hierarchy.Hierarchy
	log        *zap.Logger
	observer   Observer
}

// Observer is told the outcome of every top-level generation call.
type Observer interface {
	Observe(op string, err error)
}

type Option func(*Generator)

func WithConstantPool(p *abac.ConstantPool) Option {
	return func(g *Generator) { g.constants = p }
}

func WithExtensionFunctions(e *abac.ExtensionFunctions) Option {
	return func(g *Generator) { g.extensions = e }
}

func WithUnknownPool(p *abac.UnknownPool) Option {
	return func(g *Generator) { g.unknowns = p }
}

// WithHierarchy grounds generated UID literals in h.
func WithHierarchy(h *hierarchy.Hierarchy) Option {
	return func(g *Generator) { g.hierarchy = h }
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.log = l }
}

func WithObserver(obs Observer) Option {
	return func(g *Generator) { g.observer = obs }
}

// New returns a generator for s. The schema must validate.
func New(s *schema.Schema, settings Settings, opts ...Option) (*Generator, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating schema")
	}
	g := &Generator{
		schema:     s,
		index:      schema.NewIndex(s),
		settings:   settings,
		constants:  abac.DefaultConstantPool(),
		extensions: abac.NewExtensionFunctions(settings.EnableExtensions),
		unknowns:   abac.NewUnknownPool(),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// With returns a copy of g with opts applied. The copy shares every
// collaborator that opts do not replace.
func (g *Generator) With(opts ...Option) *Generator {
	c := *g
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

func (g *Generator) Schema() *schema.Schema { return g.schema }
func (g *Generator) Index() *schema.Index { return g.index }
func (g *Generator) Settings() Settings { return g.settings }
func (g *Generator) Unknowns() *abac.UnknownPool { return g.unknowns }
func (g *Generator) Hierarchy() *hierarchy.Hierarchy { return g.hierarchy }
func (g *Generator) ConstantPool() *abac.ConstantPool { return g.constants }
func (g *Generator) Extensions() *abac.ExtensionFunctions { return g.extensions }

// exhausted reports whether a typed rule must use its terminal production.
func (g *Generator) exhausted(maxDepth int, o arbitrary.Oracle) bool {
	return maxDepth <= 0 || o.Len() < minSupply
}

// arbitraryType draws a semantic type from the universe the enabled
// features allow.
func (g *Generator) arbitraryType(o arbitrary.Oracle) (abac.Type, error) {
	if g.settings.EnableExtensions {
		return abac.ArbitraryType(o)
	}
	return abac.ArbitraryNonExtensionType(o)
}

// observe reports a top-level generation, logs it if it failed and returns
// err unchanged.
func (g *Generator) observe(op string, err error) error {
	if g.observer != nil {
		g.observer.Observe(op, err)
	}
	if err != nil {
		g.log.Debug("generation failed",
			zap.String("op", op),
			zap.String("kind", Kind(err)),
			zap.Error(err),
		)
	}
	return err
}
