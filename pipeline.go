package metasprite

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Stage identifies one step of the import pipeline, in execution order.
type Stage int

const (
	StageLoadFile Stage = iota
	StageGenerateAtlas
	StageGenerateClips
	StageGenerateController
	StageGeneratePrefab
	StageInvokeMetaLayerProcessor

	stageCount = int(StageInvokeMetaLayerProcessor) + 1
)

var stageNames = [...]string{
	"LoadFile",
	"GenerateAtlas",
	"GenerateClips",
	"GenerateController",
	"GeneratePrefab",
	"InvokeMetaLayerProcessor",
}

func (s Stage) String() string {
	if int(s) < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// ProgressSink receives stage transition events during an import. Begin is
// called once per stage with the fractional position; End is called exactly
// once per run, on every exit path.
type ProgressSink interface {
	Begin(title, label string, fraction float64)
	End()
}

// NopProgress discards progress events.
type NopProgress struct{}

func (NopProgress) Begin(title, label string, fraction float64) {}
func (NopProgress) End()                                        {}

// PipelineConfig wires the pipeline's collaborators. Zero-value fields get
// working defaults: the JSON sheet parser, the reference row packer, an
// in-memory store, no progress reporting, and a registry built from the
// global processor table.
type PipelineConfig struct {
	Parser   Parser
	Atlas    AtlasGenerator
	Store    Store
	Progress ProgressSink
	Registry *Registry
}

// Pipeline sequences the import stages over a shared Context.
type Pipeline struct {
	parser   Parser
	atlas    AtlasGenerator
	store    Store
	progress ProgressSink
	registry *Registry
}

// NewPipeline creates a pipeline from the given configuration.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	p := &Pipeline{
		parser:   cfg.Parser,
		atlas:    cfg.Atlas,
		store:    cfg.Store,
		progress: cfg.Progress,
		registry: cfg.Registry,
	}
	if p.parser == nil {
		p.parser = jsonParser{}
	}
	if p.atlas == nil {
		p.atlas = &RowPacker{}
	}
	if p.store == nil {
		p.store = NewMemStore()
	}
	if p.progress == nil {
		p.progress = NopProgress{}
	}
	if p.registry == nil {
		p.registry = NewRegistry()
	}
	return p
}

// Registry returns the pipeline's processor registry.
func (p *Pipeline) Registry() *Registry { return p.registry }

// Import runs the full pipeline for the sheet file at srcPath. Any stage
// failure — including a panic — is caught here, logged with its stage, and
// returned; partial artifacts already written remain in the store (no
// rollback). The progress indicator is cleared on every exit path, and the
// transient scene root is disposed at run end regardless of outcome.
func (p *Pipeline) Import(srcPath string, settings ImportSettings) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		log.Printf("metasprite: import of %s failed: %v", srcPath, err)
		return err
	}
	name := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	// The conventional ".sheet.json" double extension reduces to the bare
	// source name; dots that are simply part of the name stay.
	if ext := filepath.Ext(name); ext == ".sheet" {
		name = strings.TrimSuffix(name, ext)
	}
	return p.ImportBytes(name, data, settings)
}

// ImportBytes runs the full pipeline for already-read sheet bytes. See
// Import.
func (p *Pipeline) ImportBytes(name string, data []byte, settings ImportSettings) (err error) {
	title := "Importing " + name
	defer p.progress.End()

	var ctx *Context
	defer func() {
		if ctx != nil && ctx.Root != nil {
			ctx.Root.Dispose()
		}
		if rec := recover(); rec != nil {
			err = fmt.Errorf("metasprite: import of %s panicked: %v", name, rec)
			log.Print(err)
		}
	}()

	stage := StageLoadFile
	begin := func(s Stage) {
		stage = s
		p.progress.Begin(title, s.String(), float64(int(s))/float64(stageCount))
	}
	fail := func(err error) error {
		log.Printf("metasprite: import of %s failed during %s: %v", name, stage, err)
		return err
	}

	begin(StageLoadFile)
	doc, err := p.parser.Parse(name, data)
	if err != nil {
		return fail(err)
	}
	ctx = newContext(doc, settings)

	begin(StageGenerateAtlas)
	atlasPath := ""
	if settings.AtlasDir != "" {
		atlasPath = AtlasJSONPath(settings.AtlasDir, doc.Name)
	}
	atlas, sprites, err := p.atlas.GenerateAtlas(ctx, atlasPath)
	if err != nil {
		return fail(err)
	}
	ctx.Atlas = atlas
	ctx.Sprites = sprites
	ctx.AtlasPath = atlasPath

	begin(StageGenerateClips)
	if err := synthesizeClips(ctx, p.store); err != nil {
		return fail(err)
	}

	begin(StageGenerateController)
	if err := reconcileGraph(ctx, p.store); err != nil {
		return fail(err)
	}

	begin(StageGeneratePrefab)
	if settings.GeneratePrefab {
		if err := buildScene(ctx, p.store); err != nil {
			return fail(err)
		}
	}

	begin(StageInvokeMetaLayerProcessor)
	p.registry.Dispatch(ctx)
	// Processors may have attached clip events or written node fields;
	// persist the final clips and, when present, the final tree.
	for _, tag := range doc.Tags {
		clip := ctx.Clips[tag.Name]
		if clip == nil {
			continue
		}
		if err := p.store.SaveClip(clip, ClipPath(settings.ClipDir, doc.Name, tag.Name)); err != nil {
			return fail(err)
		}
	}
	if ctx.Root != nil && ctx.PrefabPath != "" {
		if err := p.store.SaveTemplate(ctx.Root, ctx.PrefabPath); err != nil {
			return fail(err)
		}
	}

	return nil
}
