package pipeline

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Default runs name resolution, typing and the ownership checks in order.
func Default() *Pipeline {
	return New(&NamesProcessor{}, &TypesProcessor{}, &OwnershipProcessor{})
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	if ctx.Logger == nil {
		ctx.Logger = defaultLogger(ctx.Options)
	}
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Continue on errors to collect diagnostics from all stages;
		// later phases skip what earlier ones left unresolved.
	}
	ctx.Logger.Printf("unit %s: %d error(s), %d warning(s)", ctx.UnitID, ctx.Bag.ErrorCount(), ctx.Bag.WarningCount())
	return ctx
}
