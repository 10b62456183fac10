package pipeline

import (
	"io"
	"log"
	"os"

	"github.com/funvibe/rcheck/internal/analyzer"
	"github.com/funvibe/rcheck/internal/ast"
	"github.com/funvibe/rcheck/internal/config"
	"github.com/funvibe/rcheck/internal/diagnostics"
	"github.com/funvibe/rcheck/internal/symbols"
	"github.com/google/uuid"
)

// PipelineContext carries one compilation unit through the phases.
type PipelineContext struct {
	UnitID  uuid.UUID
	Crate   *ast.Crate
	Options config.Options

	Table    *symbols.SymbolTable
	Analyzer *analyzer.Analyzer
	Info     *analyzer.Info
	Bag      *diagnostics.Bag

	Logger *log.Logger
}

// NewPipelineContext prepares a unit for analysis. Every diagnostic it
// collects is stamped with a fresh unit id.
func NewPipelineContext(crate *ast.Crate, opts config.Options) *PipelineContext {
	ctx := &PipelineContext{
		UnitID:  uuid.New(),
		Crate:   crate,
		Options: opts,
		Table:   symbols.NewSymbolTable(),
		Bag:     diagnostics.NewBag(opts.MaxDiagnostics),
	}
	ctx.Bag.SetUnit(ctx.UnitID.String())
	ctx.Logger = defaultLogger(opts)
	return ctx
}

func defaultLogger(opts config.Options) *log.Logger {
	if opts.Debug {
		return log.New(os.Stderr, "rcheck: ", log.Lmicroseconds)
	}
	return log.New(io.Discard, "", 0)
}

// Diagnostics returns everything reported so far, in report order.
func (ctx *PipelineContext) Diagnostics() []*diagnostics.DiagnosticError {
	return ctx.Bag.Diagnostics()
}

// Failed reports whether any error was found.
func (ctx *PipelineContext) Failed() bool {
	return ctx.Bag.HasErrors()
}
