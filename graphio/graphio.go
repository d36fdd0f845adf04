// Package graphio serializes documentation graphs to JSON or YAML and
// back.
//
// The on-disk form is a flat record table: every value and every
// variable binding gets an integer id, and all edges between records
// are id references. Shared records and cycles therefore round-trip
// exactly; two variables bound to one value still share it after a
// load.
//
// Unknown fields are omitted entirely. A reference field that is known
// to hold nothing uses the id -1, keeping the known-nil / unknown
// distinction on the wire.
package graphio

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/teranos/docgraph/docindex"
	"github.com/teranos/docgraph/errors"
)

// FormatV1 identifies the current document layout.
const FormatV1 = "docgraph/v1"

// nilRef is the id standing for a known-nil reference.
const nilRef = -1

// Document is the serialized form of a graph.
type Document struct {
	Format    string        `json:"format" yaml:"format"`
	Roots     []RootRef     `json:"roots" yaml:"roots"`
	Values    []ValueRec    `json:"values" yaml:"values"`
	Variables []VariableRec `json:"variables" yaml:"variables"`
}

// RootRef names one root and points at its value record.
type RootRef struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

// DescrRec carries the description fields shared by all records.
type DescrRec struct {
	Docstring *string           `json:"docstring,omitempty" yaml:"docstring,omitempty"`
	Descr     *string           `json:"descr,omitempty" yaml:"descr,omitempty"`
	Summary   *string           `json:"summary,omitempty" yaml:"summary,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// GroupRec is one serialized variable group declaration.
type GroupRec struct {
	Name      string   `json:"name" yaml:"name"`
	Variables []string `json:"variables" yaml:"variables"`
}

// ArgDescrRec is one serialized argument description.
type ArgDescrRec struct {
	Names []string `json:"names" yaml:"names"`
	Descr string   `json:"descr" yaml:"descr"`
}

// ExceptionRec is one serialized exception description.
type ExceptionRec struct {
	Name  string `json:"name" yaml:"name"`
	Descr string `json:"descr" yaml:"descr"`
}

// ValueRec is one serialized value record. Only the fields for the
// record's kind are populated.
type ValueRec struct {
	ID   int    `json:"id" yaml:"id"`
	Kind string `json:"kind" yaml:"kind"`

	DescrRec `yaml:",inline"`

	CanonicalName *string `json:"canonical_name,omitempty" yaml:"canonical_name,omitempty"`
	ImportedFrom  *string `json:"imported_from,omitempty" yaml:"imported_from,omitempty"`
	Repr          *string `json:"repr,omitempty" yaml:"repr,omitempty"`
	Filename      *string `json:"filename,omitempty" yaml:"filename,omitempty"`

	// Namespace fields (modules and classes).
	Variables  map[string]int `json:"variables,omitempty" yaml:"variables,omitempty"`
	SortSpec   *[]string      `json:"sort_spec,omitempty" yaml:"sort_spec,omitempty"`
	GroupSpecs []GroupRec     `json:"group_specs,omitempty" yaml:"group_specs,omitempty"`

	// Module fields.
	Package    *int      `json:"package,omitempty" yaml:"package,omitempty"`
	Docformat  *string   `json:"docformat,omitempty" yaml:"docformat,omitempty"`
	Submodules *[]int    `json:"submodules,omitempty" yaml:"submodules,omitempty"`
	IsPackage  *bool     `json:"is_package,omitempty" yaml:"is_package,omitempty"`

	// Class fields.
	LocalVariables map[string]int `json:"local_variables,omitempty" yaml:"local_variables,omitempty"`
	Bases          *[]int         `json:"bases,omitempty" yaml:"bases,omitempty"`
	Subclasses     *[]int         `json:"subclasses,omitempty" yaml:"subclasses,omitempty"`

	// Routine fields.
	Posargs         *[]string      `json:"posargs,omitempty" yaml:"posargs,omitempty"`
	PosargDefaults  *[]int         `json:"posarg_defaults,omitempty" yaml:"posarg_defaults,omitempty"`
	Vararg          *string        `json:"vararg,omitempty" yaml:"vararg,omitempty"`
	Kwarg           *string        `json:"kwarg,omitempty" yaml:"kwarg,omitempty"`
	ArgDescrs       []ArgDescrRec  `json:"arg_descrs,omitempty" yaml:"arg_descrs,omitempty"`
	ArgTypes        map[string]string `json:"arg_types,omitempty" yaml:"arg_types,omitempty"`
	ReturnDescr     *string        `json:"return_descr,omitempty" yaml:"return_descr,omitempty"`
	ReturnType      *string        `json:"return_type,omitempty" yaml:"return_type,omitempty"`
	ExceptionDescrs []ExceptionRec `json:"exception_descrs,omitempty" yaml:"exception_descrs,omitempty"`

	// Property fields.
	Fget *int `json:"fget,omitempty" yaml:"fget,omitempty"`
	Fset *int `json:"fset,omitempty" yaml:"fset,omitempty"`
	Fdel *int `json:"fdel,omitempty" yaml:"fdel,omitempty"`
}

// VariableRec is one serialized variable binding.
type VariableRec struct {
	ID        int    `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Container int    `json:"container" yaml:"container"`

	DescrRec `yaml:",inline"`

	Value      *int    `json:"value,omitempty" yaml:"value,omitempty"`
	IsImported *bool   `json:"is_imported,omitempty" yaml:"is_imported,omitempty"`
	IsInstvar  *bool   `json:"is_instvar,omitempty" yaml:"is_instvar,omitempty"`
	IsAlias    *bool   `json:"is_alias,omitempty" yaml:"is_alias,omitempty"`
	IsPublic   *bool   `json:"is_public,omitempty" yaml:"is_public,omitempty"`
	Overrides  *int    `json:"overrides,omitempty" yaml:"overrides,omitempty"`
	TypeDescr  *string `json:"type_descr,omitempty" yaml:"type_descr,omitempty"`
}

// EncodeJSON writes the graph rooted at roots as indented JSON.
func EncodeJSON(w io.Writer, roots []docindex.Root) error {
	doc, err := Encode(roots)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(doc), "encoding graph JSON")
}

// EncodeYAML writes the graph rooted at roots as YAML.
func EncodeYAML(w io.Writer, roots []docindex.Root) error {
	doc, err := Encode(roots)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return errors.Wrap(enc.Encode(doc), "encoding graph YAML")
}

// DecodeJSON reads a JSON document and rebuilds the graph.
func DecodeJSON(r io.Reader) ([]docindex.Root, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding graph JSON")
	}
	return Decode(&doc)
}

// DecodeYAML reads a YAML document and rebuilds the graph.
func DecodeYAML(r io.Reader) ([]docindex.Root, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decoding graph YAML")
	}
	return Decode(&doc)
}
