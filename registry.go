package metasprite

import (
	"log"
	"sort"
)

// MetaProcessor handles one meta layer action. Implementations run after
// every other stage, receive the shared Context, and may read or write any
// of its fields, including those populated by earlier stages.
type MetaProcessor interface {
	// Action is the name that meta layers select this processor by.
	Action() string
	// Order ranks dispatch: layers are processed in ascending order of
	// their matched processor's value.
	Order() int
	// Process handles one meta layer. A returned error is logged and
	// never aborts the run.
	Process(ctx *Context, layer Layer) error
}

// ProcessorFactory constructs a fresh MetaProcessor instance. A factory
// that panics is logged and skipped during Refresh; scanning continues.
type ProcessorFactory func() MetaProcessor

// processorFactories is the build-time registration table of processor
// implementations, the data-driven replacement for scanning all types at
// runtime. Populate it from init functions via RegisterProcessor.
var processorFactories []ProcessorFactory

// RegisterProcessor adds a factory to the global registration table.
// Registries created afterwards pick it up on Refresh.
func RegisterProcessor(f ProcessorFactory) {
	processorFactories = append(processorFactories, f)
}

// Registry indexes meta layer processors by action name.
type Registry struct {
	factories []ProcessorFactory
	byAction  map[string]MetaProcessor
}

// NewRegistry creates a registry seeded with the global registration table
// and refreshes it.
func NewRegistry() *Registry {
	r := &Registry{factories: append([]ProcessorFactory(nil), processorFactories...)}
	r.Refresh()
	return r
}

// Add appends a factory to this registry only. Call Refresh to index it.
func (r *Registry) Add(f ProcessorFactory) {
	r.factories = append(r.factories, f)
}

// Refresh re-instantiates every registered factory and rebuilds the action
// index. A factory that panics is logged and skipped. An action name
// collision logs an error and keeps the first-registered instance; the
// colliding instance is dropped.
func (r *Registry) Refresh() {
	r.byAction = make(map[string]MetaProcessor, len(r.factories))
	for _, f := range r.factories {
		p := construct(f)
		if p == nil {
			continue
		}
		if _, dup := r.byAction[p.Action()]; dup {
			log.Printf("metasprite: duplicate processor for action %q, keeping first", p.Action())
			continue
		}
		r.byAction[p.Action()] = p
	}
}

// construct invokes a factory, recovering from a construction panic so one
// broken candidate does not abort scanning of the others.
func construct(f ProcessorFactory) (p MetaProcessor) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("metasprite: processor construction failed: %v", rec)
			p = nil
		}
	}()
	return f()
}

// Lookup returns the processor registered for the action name.
func (r *Registry) Lookup(action string) (MetaProcessor, bool) {
	p, ok := r.byAction[action]
	return p, ok
}

// Dispatch invokes the matching processor for every meta layer of the
// document. Layers are processed in ascending order of their matched
// processor's Order value (ties and unmatched layers keep declaration
// order; unmatched layers sort as order 0). A layer with no registered
// processor is a logged warning, never a fatal condition.
func (r *Registry) Dispatch(ctx *Context) {
	layers := ctx.Doc.MetaLayers()

	type dispatchEntry struct {
		layer Layer
		proc  MetaProcessor
		order int
	}
	entries := make([]dispatchEntry, 0, len(layers))
	for _, l := range layers {
		e := dispatchEntry{layer: l}
		if p, ok := r.byAction[l.Action]; ok {
			e.proc = p
			e.order = p.Order()
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].order < entries[j].order
	})

	for _, e := range entries {
		if e.proc == nil {
			log.Printf("metasprite: no processor registered for meta layer %q (action %q), skipping", e.layer.Name, e.layer.Action)
			continue
		}
		if err := e.proc.Process(ctx, e.layer); err != nil {
			log.Printf("metasprite: processor %q failed on layer %q: %v", e.layer.Action, e.layer.Name, err)
		}
	}
}
