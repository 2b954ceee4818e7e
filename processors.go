package metasprite

import (
	"fmt"
	"strconv"
)

func init() {
	RegisterProcessor(func() MetaProcessor { return &pivotProcessor{} })
	RegisterProcessor(func() MetaProcessor { return &eventProcessor{} })
}

// pivotProcessor handles "@pivot(x,y)" layers: it applies a normalized
// pivot to every generated sprite renderer. Runs before other processors
// so they observe final renderer state.
type pivotProcessor struct{}

func (pivotProcessor) Action() string { return "pivot" }
func (pivotProcessor) Order() int     { return -1 }

func (pivotProcessor) Process(ctx *Context, layer Layer) error {
	if len(layer.Params) != 2 {
		return fmt.Errorf("pivot expects 2 params, got %d", len(layer.Params))
	}
	x, err := strconv.ParseFloat(layer.Params[0], 64)
	if err != nil {
		return fmt.Errorf("pivot x: %w", err)
	}
	y, err := strconv.ParseFloat(layer.Params[1], 64)
	if err != nil {
		return fmt.Errorf("pivot y: %w", err)
	}
	for _, node := range ctx.Nodes {
		if node.Renderer != nil {
			node.Renderer.PivotX = x
			node.Renderer.PivotY = y
		}
	}
	return nil
}

// eventProcessor handles "@event(name,frame...)" layers: it adds a discrete
// timeline marker named by the first parameter to every clip whose tag
// covers one of the listed frames, at that frame's offset within the clip.
// Markers accumulate only within one run — the clip stage clears events
// before rewriting, so re-imports stay idempotent.
type eventProcessor struct{}

func (eventProcessor) Action() string { return "event" }
func (eventProcessor) Order() int     { return 0 }

func (eventProcessor) Process(ctx *Context, layer Layer) error {
	if len(layer.Params) < 2 {
		return fmt.Errorf("event expects a name and at least one frame")
	}
	name := layer.Params[0]
	for _, param := range layer.Params[1:] {
		frame, err := strconv.Atoi(param)
		if err != nil {
			return fmt.Errorf("event frame %q: %w", param, err)
		}
		for _, tag := range ctx.Doc.Tags {
			if frame < tag.From || frame > tag.To {
				continue
			}
			clip, ok := ctx.Clips[tag.Name]
			if !ok {
				continue
			}
			offset := 0
			for i := tag.From; i < frame; i++ {
				offset += ctx.Doc.Frames[i].Duration
			}
			clip.AddEvent(ClipEvent{
				Time: float64(offset) / 1000.0,
				Name: name,
			})
		}
	}
	return nil
}
