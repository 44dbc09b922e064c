// Package catalog loads named type declarations from YAML documents.
//
// A catalogue looks like:
//
//	schema: 1.0.0
//	types:
//	  - name: Pair
//	    params: [A, B]
//	  - name: Ints
//	    type: Pair<i32, i64>
//	  - name: Callback
//	    params: [T]
//	    type: fn(&T) -> Result<T, str>
//
// A declaration without a type expression stands for the ADT with the
// declared name applied to its parameters. Parameters are numbered in
// declaration order and parse as placeholders. Any other declaration is an
// alias: its name is expanded wherever it appears in another expression,
// applied to as many arguments as it declares parameters.
package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	lterrors "github.com/orizon-lang/lty/internal/errors"
	"github.com/orizon-lang/lty/internal/types"
)

// SchemaConstraint is the range of catalogue schema versions this package reads.
const SchemaConstraint = ">= 1.0.0, < 2.0.0"

var schemaConstraint = mustConstraint(SchemaConstraint)

// Document is the YAML form of a catalogue.
type Document struct {
	Schema string `yaml:"schema"`
	Types  []Decl `yaml:"types"`
}

// Decl declares one named type.
type Decl struct {
	Name   string   `yaml:"name"`
	Params []string `yaml:"params,omitempty"`
	Type   string   `yaml:"type,omitempty"`
	Doc    string   `yaml:"doc,omitempty"`
}

// Entry is a resolved declaration.
type Entry struct {
	Name   string
	Params []string
	Type   types.Type
	Doc    string
}

// Catalog is an ordered set of named types interned in one types.Context.
type Catalog struct {
	tcx     *types.Context
	version *semver.Version
	entries map[string]*Entry
	order   []string
}

// New returns an empty catalogue at the newest schema version.
func New(tcx *types.Context) *Catalog {
	return &Catalog{
		tcx:     tcx,
		version: semver.MustParse("1.0.0"),
		entries: make(map[string]*Entry),
	}
}

// Load reads the catalogue at path.
func Load(path string, tcx *types.Context) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	cat, err := Parse(bytes.NewReader(data), tcx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cat, nil
}

// Parse decodes a catalogue, checks its schema version and resolves every
// declaration. References between declarations may appear in any order.
func Parse(r io.Reader, tcx *types.Context) (*Catalog, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if doc.Schema == "" {
		return nil, lterrors.SchemaVersion("", SchemaConstraint)
	}

	version, err := semver.NewVersion(doc.Schema)
	if err != nil || !schemaConstraint.Check(version) {
		return nil, lterrors.SchemaVersion(doc.Schema, SchemaConstraint)
	}

	cat := New(tcx)
	cat.version = version

	res := cat.newResolver()
	for _, d := range doc.Types {
		if err := res.queue(d); err != nil {
			return nil, err
		}
	}

	for _, d := range doc.Types {
		if _, err := res.entry(d.Name); err != nil {
			return nil, err
		}
		cat.order = append(cat.order, d.Name)
	}

	for _, name := range cat.order {
		if err := cat.checkArity(cat.entries[name].Type); err != nil {
			return nil, fmt.Errorf("type %s: %w", name, err)
		}
	}

	return cat, nil
}

// Declare adds d to the catalogue. Unlike Parse, the declaration is
// checked against the entries declared so far.
func (c *Catalog) Declare(d Decl) (*Entry, error) {
	res := c.newResolver()
	if err := res.queue(d); err != nil {
		return nil, err
	}

	e, err := res.entry(d.Name)
	if err != nil {
		return nil, err
	}

	if err := c.checkArity(e.Type); err != nil {
		delete(c.entries, d.Name)
		return nil, fmt.Errorf("type %s: %w", d.Name, err)
	}
	c.order = append(c.order, d.Name)

	return e, nil
}

// Version returns the schema version the catalogue was written against.
func (c *Catalog) Version() *semver.Version { return c.version }

// Context returns the type context the entries are interned in.
func (c *Catalog) Context() *types.Context { return c.tcx }

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.order) }

// Lookup returns the entry named name.
func (c *Catalog) Lookup(name string) (*Entry, error) {
	e, ok := c.entries[name]
	if !ok {
		return nil, lterrors.UnknownType(name)
	}

	return e, nil
}

// Entries returns the entries in declaration order.
func (c *Catalog) Entries() []*Entry {
	out := make([]*Entry, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.entries[name])
	}

	return out
}

// Resolve parses src, accepting either a declared name or a type
// expression. Placeholder names come from params. Declared aliases
// inside the expression are expanded. A bare name that is neither
// declared nor primitive is unknown.
func (c *Catalog) Resolve(src string, params ...string) (types.Type, error) {
	src = strings.TrimSpace(src)
	if e, ok := c.entries[src]; ok {
		return e.Type, nil
	}

	t, err := c.tcx.ParseWith(src, c.newResolver().alias(""), params...)
	if err != nil {
		return nil, err
	}

	if adt, ok := t.(*types.Adt); ok && adt.Name() == src {
		return nil, lterrors.UnknownType(adt.Name())
	}

	if err := c.checkArity(t); err != nil {
		return nil, err
	}

	return t, nil
}

// Encode writes the catalogue back as YAML.
func (c *Catalog) Encode(w io.Writer) error {
	doc := Document{Schema: c.version.String()}
	for _, e := range c.Entries() {
		doc.Types = append(doc.Types, Decl{
			Name:   e.Name,
			Params: e.Params,
			Type:   e.Type.String(),
			Doc:    e.Doc,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	return nil
}

// resolver turns declarations into entries on first use, so that a
// declaration may refer to aliases declared after it.
type resolver struct {
	cat     *Catalog
	pending map[string]Decl
	active  map[string]bool
}

func (c *Catalog) newResolver() *resolver {
	return &resolver{cat: c, pending: make(map[string]Decl), active: make(map[string]bool)}
}

// queue checks d and schedules it for resolution.
func (r *resolver) queue(d Decl) error {
	if d.Name == "" {
		return fmt.Errorf("declaration without a name")
	}

	_, declared := r.cat.entries[d.Name]
	if _, queued := r.pending[d.Name]; declared || queued {
		return fmt.Errorf("type %s declared twice", d.Name)
	}

	seen := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		if seen[p] {
			return fmt.Errorf("type %s: parameter %s declared twice", d.Name, p)
		}
		seen[p] = true
	}

	r.pending[d.Name] = d

	return nil
}

// entry returns the entry named name, resolving its declaration if it is
// still pending. It returns nil for names that are not declared.
func (r *resolver) entry(name string) (*Entry, error) {
	if e, ok := r.cat.entries[name]; ok {
		return e, nil
	}

	d, ok := r.pending[name]
	if !ok {
		return nil, nil
	}

	if r.active[name] {
		return nil, fmt.Errorf("type %s: alias cycle", name)
	}
	r.active[name] = true
	defer delete(r.active, name)

	var t types.Type
	if d.Type == "" {
		args := make([]types.Type, len(d.Params))
		for i, p := range d.Params {
			args[i] = r.cat.tcx.Param(i, p)
		}
		t = r.cat.tcx.Adt(d.Name, args...)
	} else {
		var err error
		if t, err = r.cat.tcx.ParseWith(d.Type, r.alias(d.Name), d.Params...); err != nil {
			return nil, fmt.Errorf("type %s: %w", d.Name, err)
		}
	}

	e := &Entry{Name: d.Name, Params: d.Params, Type: t, Doc: d.Doc}
	r.cat.entries[d.Name] = e
	delete(r.pending, d.Name)

	return e, nil
}

// alias expands declared aliases while parsing the declaration of self.
// self, and declarations that introduce an ADT, stay ADT names.
func (r *resolver) alias(self string) types.AliasFunc {
	return func(name string) (*types.Alias, error) {
		if name == self {
			return nil, nil
		}

		e, err := r.entry(name)
		if err != nil || e == nil || declaresAdt(e) {
			return nil, err
		}

		return &types.Alias{Type: e.Type, Params: len(e.Params)}, nil
	}
}

// checkArity rejects applications of a declared generic ADT to the wrong
// number of arguments.
func (c *Catalog) checkArity(t types.Type) error {
	if adt, ok := t.(*types.Adt); ok {
		if e, declared := c.entries[adt.Name()]; declared && declaresAdt(e) && len(adt.TypeArgs()) != len(e.Params) {
			return lterrors.Arity(t.String(), len(adt.TypeArgs()), len(e.Params))
		}
	}

	children, _ := types.Children(t)
	for _, child := range children {
		if err := c.checkArity(child); err != nil {
			return err
		}
	}

	return nil
}

// declaresAdt reports whether e introduces the ADT of its own name, as
// opposed to aliasing some other type.
func declaresAdt(e *Entry) bool {
	adt, ok := e.Type.(*types.Adt)
	return ok && adt.Name() == e.Name
}

func mustConstraint(expr string) *semver.Constraints {
	c, err := semver.NewConstraint(expr)
	if err != nil {
		panic(err)
	}

	return c
}
