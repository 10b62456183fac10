package pipeline

import (
	"github.com/funvibe/rcheck/internal/analyzer"
	"github.com/funvibe/rcheck/internal/borrowck"
	"github.com/funvibe/rcheck/internal/diagnostics"
)

// NamesProcessor declares every item of the crate.
type NamesProcessor struct{}

func (np *NamesProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Crate == nil {
		return ctx
	}
	if ctx.Analyzer == nil {
		ctx.Analyzer = analyzer.New(ctx.Table, ctx.Bag, ctx.Options)
	}
	before := ctx.Bag.ErrorCount()
	ctx.Bag.SetPhase(diagnostics.PhaseNames)
	ctx.Analyzer.CollectNames(ctx.Crate)
	ctx.Logger.Printf("names: %d item(s), %d new error(s)", len(ctx.Crate.Items), ctx.Bag.ErrorCount()-before)
	return ctx
}

// TypesProcessor resolves signatures, infers body types and evaluates
// constants.
type TypesProcessor struct{}

func (tp *TypesProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Crate == nil || ctx.Analyzer == nil {
		return ctx
	}
	before := ctx.Bag.ErrorCount()
	ctx.Bag.SetPhase(diagnostics.PhaseTypes)
	ctx.Analyzer.AnalyzeHeaders(ctx.Crate)
	ctx.Analyzer.AnalyzeBodies(ctx.Crate)
	ctx.Info = ctx.Analyzer.Info
	ctx.Logger.Printf("types: %d expression(s) typed, %d new error(s)", len(ctx.Info.Types), ctx.Bag.ErrorCount()-before)
	return ctx
}

// OwnershipProcessor runs the move, borrow and mutability checks over
// the typed bodies.
type OwnershipProcessor struct{}

func (op *OwnershipProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Crate == nil || ctx.Info == nil {
		return ctx
	}
	before := ctx.Bag.ErrorCount()
	ctx.Bag.SetPhase(diagnostics.PhaseOwnership)
	borrowck.New(ctx.Info, ctx.Bag).Check(ctx.Crate)
	ctx.Logger.Printf("ownership: %d new error(s)", ctx.Bag.ErrorCount()-before)
	return ctx
}
