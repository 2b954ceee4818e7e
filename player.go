package metasprite

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// regionRect converts a TextureRegion to the image.Rectangle it occupies
// on its page.
func regionRect(r TextureRegion) image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.X+r.Width), int(r.Y+r.Height))
}

// defaultBlendWindow is the crossfade duration when switching states.
const defaultBlendWindow = 0.1

// Player plays generated motion clips against a node tree built by the
// prefab stage. It resolves the active sprite of every clip track by time
// and, on a state switch, fades the new pose in over a short blend window.
//
// Player is single-threaded like the rest of the package: call Update and
// Draw from one goroutine.
type Player struct {
	root  *Node
	atlas *Atlas
	graph *Graph
	clips map[string]*Clip // state name -> clip

	current *Clip
	state   string
	time    float64

	fade *gween.Tween

	// BlendWindow is the crossfade duration in seconds when switching
	// states. Zero selects the default of 0.1.
	BlendWindow float64
}

// NewPlayer creates a player over a built node tree. The clips map is keyed
// by graph state name; LoadStateClips builds it from a store.
func NewPlayer(root *Node, graph *Graph, clips map[string]*Clip, atlas *Atlas) *Player {
	return &Player{root: root, atlas: atlas, graph: graph, clips: clips}
}

// LoadStateClips loads every motion clip referenced by the graph's states,
// keyed by state name. States without a motion reference are skipped.
func LoadStateClips(graph *Graph, store Store) (map[string]*Clip, error) {
	clips := make(map[string]*Clip)
	for name, state := range graph.StateIndex() {
		if state.Motion == "" {
			continue
		}
		clip, err := store.LoadClip(state.Motion)
		if err != nil {
			return nil, err
		}
		if clip == nil {
			return nil, fmt.Errorf("metasprite: state %q references missing clip %s", name, state.Motion)
		}
		clips[name] = clip
	}
	return clips, nil
}

// State returns the name of the playing state, or "".
func (p *Player) State() string { return p.state }

// Time returns the current clip time in seconds.
func (p *Player) Time() float64 { return p.time }

// Play switches to the named graph state, restarting its clip from time
// zero with a crossfade over BlendWindow. Playing the current state is a
// no-op. Returns false if the state has no loaded clip.
func (p *Player) Play(state string) bool {
	if state == p.state && p.current != nil {
		return true
	}
	clip, ok := p.clips[state]
	if !ok {
		return false
	}
	window := p.BlendWindow
	if window <= 0 {
		window = defaultBlendWindow
	}
	if p.current != nil {
		p.fade = gween.New(0, 1, float32(window), ease.Linear)
	}
	p.current = clip
	p.state = state
	p.time = 0
	p.apply()
	return true
}

// Update advances playback by dt seconds, honoring the clip's loop mode:
// looping clips wrap, non-looping clips clamp at the final pose.
func (p *Player) Update(dt float64) {
	if p.current == nil {
		return
	}
	p.time += dt
	if p.current.Loop {
		if p.current.Duration > 0 {
			p.time = math.Mod(p.time, p.current.Duration)
		}
	} else if p.time > p.current.Duration {
		p.time = p.current.Duration
	}

	alpha := 1.0
	if p.fade != nil {
		v, done := p.fade.Update(float32(dt))
		alpha = float64(v)
		if done {
			p.fade = nil
		}
	}
	p.root.Alpha = alpha
	p.apply()
}

// apply resolves each track's active sprite at the current time and writes
// it to the corresponding node's renderer.
func (p *Player) apply() {
	for path := range p.current.Tracks {
		node := p.root.Find(path)
		if node == nil || node.Renderer == nil {
			continue
		}
		if sprite := p.current.SpriteAt(path, p.time); sprite != "" {
			node.Renderer.Sprite = sprite
		}
	}
}

// Draw renders every renderer-bearing node of the tree onto screen,
// back-to-front by depth key, using the atlas pages for pixel data.
func (p *Player) Draw(screen *ebiten.Image) {
	if p.atlas == nil {
		return
	}
	type drawEntry struct {
		node        *Node
		x, y, alpha float64
	}
	var entries []drawEntry
	var collect func(n *Node, x, y, alpha float64)
	collect = func(n *Node, x, y, alpha float64) {
		x += n.X
		y += n.Y
		alpha *= n.Alpha
		if n.Renderer != nil {
			entries = append(entries, drawEntry{node: n, x: x, y: y, alpha: alpha})
		}
		for _, c := range n.Children() {
			collect(c, x, y, alpha)
		}
	}
	collect(p.root, 0, 0, 1)

	// Larger Z is further back; draw it first.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].node.Z > entries[j].node.Z
	})

	for _, e := range entries {
		region, ok := p.atlas.Region(e.node.Renderer.Sprite)
		if !ok || int(region.Page) >= len(p.atlas.Pages) {
			continue
		}
		page := p.atlas.Pages[region.Page]
		sub := page.SubImage(regionRect(region)).(*ebiten.Image)

		var op ebiten.DrawImageOptions
		op.GeoM.Translate(
			e.x-e.node.Renderer.PivotX*float64(region.Width),
			e.y-e.node.Renderer.PivotY*float64(region.Height),
		)
		op.ColorScale.ScaleAlpha(float32(e.alpha))
		screen.DrawImage(sub, &op)
	}
}
