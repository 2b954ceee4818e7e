package metasprite

import (
	"fmt"
	"path"
)

// SpriteKey binds a packed sprite name to a timeline position.
type SpriteKey struct {
	Time   float64 `json:"time"`   // seconds from clip start
	Sprite string  `json:"sprite"` // packed sprite name (see SpriteName)
}

// ClipEvent is a discrete timeline marker attached to a clip, typically by
// a meta layer processor. Events are not derived from the sprite tracks, so
// the synthesizer clears them before each rewrite to keep re-imports from
// accumulating stale markers.
type ClipEvent struct {
	Time  float64 `json:"time"`
	Name  string  `json:"name"`
	Param string  `json:"param,omitempty"`
}

// Clip is one time-keyed motion clip, synthesized from a frame tag.
// Tracks are keyed by the scene path of the target group node; the path is
// computed from group names so it stays stable across runs even though the
// node tree is rebuilt each import.
type Clip struct {
	Name     string                 `json:"name"`
	FPS      float64                `json:"fps"`
	Loop     bool                   `json:"loop"` // wrap-and-blend when true, clamp otherwise
	Duration float64                `json:"duration"`
	Tracks   map[string][]SpriteKey `json:"tracks"`
	Events   []ClipEvent            `json:"events,omitempty"`
}

// AddEvent appends a discrete event marker to the clip.
func (c *Clip) AddEvent(e ClipEvent) {
	c.Events = append(c.Events, e)
}

// Track returns the sprite keys for the given scene path, or nil.
func (c *Clip) Track(scenePath string) []SpriteKey {
	return c.Tracks[scenePath]
}

// SpriteAt resolves the active sprite of a track at time t: the last key
// whose time is <= t. Returns "" for an empty track or t before the first
// key.
func (c *Clip) SpriteAt(scenePath string, t float64) string {
	keys := c.Tracks[scenePath]
	sprite := ""
	for _, k := range keys {
		if k.Time > t {
			break
		}
		sprite = k.Sprite
	}
	return sprite
}

// ClipPath returns the deterministic asset path for a tag's clip, derived
// from the source name and tag name only.
func ClipPath(dir, source, tag string) string {
	return path.Join(dir, fmt.Sprintf("%s_%s.clip.json", source, tag))
}

// synthesizeClips builds or refreshes one clip per frame tag, in tag
// declaration order. Existing clips at the deterministic path are reused:
// their discrete events are cleared (only the sprite tracks are rewritten,
// so stale markers would otherwise accumulate) and the sprite tracks are
// replaced from the timing engine output. Loop semantics always follow the
// tag's "loop" property.
func synthesizeClips(ctx *Context, store Store) error {
	doc := ctx.Doc
	fps := ctx.Settings.FPS()
	groups := ctx.contentGroups()

	for _, tag := range doc.Tags {
		clipPath := ClipPath(ctx.Settings.ClipDir, doc.Name, tag.Name)
		clip, err := store.LoadClip(clipPath)
		if err != nil {
			return err
		}
		if clip == nil {
			clip = &Clip{Name: tag.Name}
		}

		clip.Events = nil
		clip.FPS = fps
		clip.Loop = tag.IsLoop()
		clip.Duration = TagDuration(doc.TagDurations(tag))
		clip.Tracks = make(map[string][]SpriteKey, len(groups))

		keys := KeyframesFor(tag, doc, fps)
		for _, gi := range groups {
			g := doc.Groups[gi]
			sprites := ctx.Sprites[g.Name]
			track := make([]SpriteKey, 0, len(keys))
			for _, k := range keys {
				if k.Sprite >= len(sprites) {
					return &PackingError{Group: g.Name, Reason: fmt.Sprintf("sprite list shorter than frame id %d", k.Sprite)}
				}
				track = append(track, SpriteKey{Time: k.Time, Sprite: sprites[k.Sprite].Name})
			}
			clip.Tracks[ctx.ScenePath(gi)] = track
		}

		if err := store.SaveClip(clip, clipPath); err != nil {
			return err
		}
		ctx.Clips[tag.Name] = clip
	}
	return nil
}
