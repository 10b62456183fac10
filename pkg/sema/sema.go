// Package sema is the embedding surface of the checker: it runs name
// resolution, type inference, constant evaluation and the ownership checks
// over one crate and hands back the typed view plus every diagnostic.
package sema

import (
	"fmt"
	"io"

	"github.com/funvibe/rcheck/internal/analyzer"
	"github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/config"
	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/pipeline"
	"github.com/funvibe/rcheck/internal/typesystem"
)

type (
	Crate      = ast.Crate
	Options    = config.Options
	Info       = analyzer.Info
	Diagnostic = diagnostics.DiagnosticError
	Type       = typesystem.Type
)

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return config.DefaultOptions()
}

// LoadOptions reads YAML options on top of the defaults.
func LoadOptions(r io.Reader) (Options, error) {
	return config.LoadOptions(r)
}

// Result is the outcome of analysing one crate.
type Result struct {
	// Unit identifies the run; every diagnostic carries it.
	Unit        string
	Info        *Info
	Diagnostics []*Diagnostic
}

// Failed reports whether any diagnostic is an error.
func (r *Result) Failed() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diagnostics.Error {
			return true
		}
	}
	return false
}

// Errors returns the error diagnostics.
func (r *Result) Errors() []*Diagnostic {
	var out []*Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == diagnostics.Error {
			out = append(out, d)
		}
	}
	return out
}

// TypeOf returns the inferred type of e, or nil if it was never typed.
func (r *Result) TypeOf(e ast.Expression) Type {
	if r.Info == nil {
		return nil
	}
	return r.Info.Types[e]
}

// Analyze checks crate with opts.
func Analyze(crate *Crate, opts Options) *Result {
	ctx := pipeline.Default().Run(pipeline.NewPipelineContext(crate, opts))
	return &Result{
		Unit:        ctx.UnitID.String(),
		Info:        ctx.Info,
		Diagnostics: ctx.Diagnostics(),
	}
}

// AnalyzeDocument decodes a YAML or JSON crate document and checks it.
func AnalyzeDocument(r io.Reader, opts Options) (*Result, error) {
	crate, err := ast.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("sema: %w", err)
	}
	return Analyze(crate, opts), nil
}
