package metasprite

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// TextureRegion describes a sub-rectangle within an atlas page.
// Value type — stored directly on sprites and nodes, no pointer.
type TextureRegion struct {
	Page      uint16 // atlas page index (references Atlas.Pages)
	X, Y      uint16 // top-left corner of the sub-image rect within the page
	Width     uint16 // width of the sub-image rect
	Height    uint16 // height of the sub-image rect
	OriginalW uint16 // untrimmed frame width as authored
	OriginalH uint16 // untrimmed frame height as authored
	OffsetX   int16  // horizontal trim offset
	OffsetY   int16  // vertical trim offset
}

// SpriteRef identifies one packed sprite: its stable name (group + frame id)
// and where its pixels live in the atlas. Index = frame id within the group's
// ordered sprite list.
type SpriteRef struct {
	Name   string
	Index  int
	Region TextureRegion
}

// SpriteName builds the stable packed-sprite name for a group frame.
func SpriteName(group string, frame int) string {
	return fmt.Sprintf("%s_%d", group, frame)
}

// Atlas holds packed page images and a map of named regions.
type Atlas struct {
	// Pages contains the atlas page images indexed by page number.
	Pages   []*ebiten.Image
	regions map[string]TextureRegion
}

// NewAtlas creates an empty atlas with the given pages.
func NewAtlas(pages []*ebiten.Image) *Atlas {
	return &Atlas{Pages: pages, regions: make(map[string]TextureRegion)}
}

// SetRegion stores a named region, replacing any previous entry.
func (a *Atlas) SetRegion(name string, r TextureRegion) {
	a.regions[name] = r
}

// Region returns the TextureRegion for the given name. The second return
// value is false if the name is unknown.
func (a *Atlas) Region(name string) (TextureRegion, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// --- JSON structure types (TexturePacker-compatible hash format) ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonAtlas struct {
	Frames map[string]jsonFrame `json:"frames"`
}

// MarshalJSON encodes the atlas regions in the hash format so any
// TexturePacker-aware consumer can read the packed metadata back.
func (a *Atlas) MarshalJSON() ([]byte, error) {
	out := jsonAtlas{Frames: make(map[string]jsonFrame, len(a.regions))}
	for name, r := range a.regions {
		out.Frames[name] = regionToFrame(r)
	}
	return json.Marshal(out)
}

// LoadAtlasJSON parses hash-format atlas JSON and associates the given page
// images.
func LoadAtlasJSON(data []byte, pages []*ebiten.Image) (*Atlas, error) {
	var in jsonAtlas
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("metasprite: failed to parse atlas JSON: %w", err)
	}
	if in.Frames == nil {
		return nil, fmt.Errorf("metasprite: atlas JSON has no \"frames\" key")
	}
	atlas := NewAtlas(pages)
	for name, f := range in.Frames {
		atlas.regions[name] = frameToRegion(f, 0)
	}
	return atlas, nil
}

// RegionNames returns every region name in sorted order. Intended for
// deterministic iteration in tests and serialization.
func (a *Atlas) RegionNames() []string {
	names := make([]string, 0, len(a.regions))
	for name := range a.regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func regionToFrame(r TextureRegion) jsonFrame {
	return jsonFrame{
		Frame:   jsonRect{X: int(r.X), Y: int(r.Y), W: int(r.Width), H: int(r.Height)},
		Trimmed: r.Width != r.OriginalW || r.Height != r.OriginalH,
		SpriteSourceSize: jsonRect{
			X: int(r.OffsetX), Y: int(r.OffsetY),
			W: int(r.Width), H: int(r.Height),
		},
		SourceSize: jsonSize{W: int(r.OriginalW), H: int(r.OriginalH)},
	}
}

func frameToRegion(f jsonFrame, page uint16) TextureRegion {
	return TextureRegion{
		Page:      page,
		X:         uint16(f.Frame.X),
		Y:         uint16(f.Frame.Y),
		Width:     uint16(f.Frame.W),
		Height:    uint16(f.Frame.H),
		OriginalW: uint16(f.SourceSize.W),
		OriginalH: uint16(f.SourceSize.H),
		OffsetX:   int16(f.SpriteSourceSize.X),
		OffsetY:   int16(f.SpriteSourceSize.Y),
	}
}
