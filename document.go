package metasprite

import (
	"encoding/json"
	"strings"
)

// LayerKind distinguishes how a layer participates in the import.
type LayerKind uint8

const (
	// LayerContent contributes pixels to the packed atlas.
	LayerContent LayerKind = iota
	// LayerMeta drives a registered processor instead of producing pixels.
	LayerMeta
)

// Frame is a single sheet frame with its display duration.
type Frame struct {
	ID       int // frame index within the sheet, 0-based
	Duration int // milliseconds
}

// FrameTag names an inclusive frame range [From, To] and carries free-form
// string properties. The "loop" property selects wrap playback for the
// synthesized clip.
type FrameTag struct {
	Name       string
	From, To   int
	Properties []string
}

// HasProperty reports whether the tag carries the named property.
func (t FrameTag) HasProperty(name string) bool {
	for _, p := range t.Properties {
		if p == name {
			return true
		}
	}
	return false
}

// IsLoop reports whether the tag's clip should loop.
func (t FrameTag) IsLoop() bool {
	return t.HasProperty("loop")
}

// Layer is a single sheet layer. Meta layers (names starting with "@")
// carry an action name and optional parameters; content layers contribute
// pixels to their group's atlas sprites.
type Layer struct {
	Name   string
	Kind   LayerKind
	Index  int      // declaration index within the sheet
	Action string   // meta layers only: processor action name
	Params []string // meta layers only: raw parameter strings
}

// Group is one node of the sheet's layer-group tree.
type Group struct {
	Name   string
	Parent int // index into Document.Groups, -1 for the root group
	Layers []Layer
}

// HasContent reports whether the group carries at least one content layer.
func (g Group) HasContent() bool {
	for _, l := range g.Layers {
		if l.Kind == LayerContent {
			return true
		}
	}
	return false
}

// Document is the immutable parsed representation of a sprite sheet:
// ordered frames, frame tags, and the layer-group tree. Groups appear in
// declaration order; Groups[i].Parent always references an earlier index.
type Document struct {
	Name   string // source name, used for asset and node naming
	Width  int    // frame width in pixels
	Height int    // frame height in pixels
	Frames []Frame
	Tags   []FrameTag
	Groups []Group
}

// MetaLayers returns every meta layer of the document in declaration order.
func (d *Document) MetaLayers() []Layer {
	var out []Layer
	for _, g := range d.Groups {
		for _, l := range g.Layers {
			if l.Kind == LayerMeta {
				out = append(out, l)
			}
		}
	}
	return out
}

// TagDurations returns the millisecond durations of the frames spanned by
// the tag, in frame order.
func (d *Document) TagDurations(tag FrameTag) []int {
	out := make([]int, 0, tag.To-tag.From+1)
	for i := tag.From; i <= tag.To && i < len(d.Frames); i++ {
		out = append(out, d.Frames[i].Duration)
	}
	return out
}

// Parser turns raw sheet bytes into a Document. Implementations report
// malformed input with a *ParseError.
type Parser interface {
	Parse(name string, data []byte) (*Document, error)
}

// --- JSON sheet export parser ---

// sheetJSON mirrors the JSON sheet-export format (array flavor): a frames
// array with per-frame durations and a meta block with frame tags and the
// layer list. Group layers are entries that other layers reference via
// their "group" field.
type sheetJSON struct {
	Frames []sheetFrame `json:"frames"`
	Meta   sheetMeta    `json:"meta"`
}

type sheetFrame struct {
	Frame      jsonRect `json:"frame"`
	SourceSize jsonSize `json:"sourceSize"`
	Duration   int      `json:"duration"`
}

type sheetMeta struct {
	Image     string       `json:"image"`
	FrameTags []sheetTag   `json:"frameTags"`
	Layers    []sheetLayer `json:"layers"`
}

type sheetTag struct {
	Name string `json:"name"`
	From int    `json:"from"`
	To   int    `json:"to"`
	Data string `json:"data"` // comma-separated tag properties, e.g. "loop"
}

type sheetLayer struct {
	Name    string `json:"name"`
	Group   string `json:"group,omitempty"`
	Opacity *int   `json:"opacity,omitempty"` // absent on group entries
}

// rootGroupName names the implicit group that holds ungrouped layers.
const rootGroupName = "root"

// ParseSheetJSON parses the JSON sheet-export format into a Document.
// The name parameter becomes Document.Name (typically the source file base
// name without extension). Malformed input yields a *ParseError.
//
// Layer names starting with "@" parse as meta layers using the
// "@action(param,param)" convention. Ungrouped layers land in an implicit
// root group; explicit groups keep their declared nesting.
func ParseSheetJSON(name string, data []byte) (*Document, error) {
	var sheet sheetJSON
	if err := json.Unmarshal(data, &sheet); err != nil {
		return nil, &ParseError{Path: name, Reason: err.Error()}
	}
	if len(sheet.Frames) == 0 {
		return nil, &ParseError{Path: name, Reason: "sheet has no frames"}
	}

	doc := &Document{
		Name:   name,
		Width:  sheet.Frames[0].SourceSize.W,
		Height: sheet.Frames[0].SourceSize.H,
	}

	for i, f := range sheet.Frames {
		if f.Duration <= 0 {
			return nil, &ParseError{Path: name, Reason: "frame has non-positive duration"}
		}
		doc.Frames = append(doc.Frames, Frame{ID: i, Duration: f.Duration})
	}

	for _, t := range sheet.Meta.FrameTags {
		if t.From < 0 || t.To >= len(doc.Frames) || t.From > t.To {
			return nil, &ParseError{Path: name, Reason: "frame tag " + t.Name + " has an invalid range"}
		}
		doc.Tags = append(doc.Tags, FrameTag{
			Name:       t.Name,
			From:       t.From,
			To:         t.To,
			Properties: splitProperties(t.Data),
		})
	}

	if err := buildGroups(doc, sheet.Meta.Layers); err != nil {
		return nil, err
	}
	return doc, nil
}

// splitProperties splits the tag data field into trimmed, non-empty
// property strings.
func splitProperties(data string) []string {
	if data == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(data, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// buildGroups assembles the Document's group tree from the flat layer list.
// An entry is a group if any layer references it via "group"; everything
// else is a layer placed in its referenced group, or in the implicit root
// group when unreferenced.
func buildGroups(doc *Document, layers []sheetLayer) error {
	groupNames := make(map[string]bool, len(layers))
	for _, l := range layers {
		if l.Group != "" {
			groupNames[l.Group] = true
		}
	}

	doc.Groups = []Group{{Name: rootGroupName, Parent: -1}}
	index := map[string]int{rootGroupName: 0}

	// First pass: groups, in declaration order so parents precede children.
	for _, l := range layers {
		if !groupNames[l.Name] {
			continue
		}
		if _, dup := index[l.Name]; dup {
			return &ParseError{Path: doc.Name, Reason: "duplicate group name " + l.Name}
		}
		parent := 0
		if l.Group != "" {
			p, ok := index[l.Group]
			if !ok {
				return &ParseError{Path: doc.Name, Reason: "group " + l.Name + " references undeclared parent " + l.Group}
			}
			parent = p
		}
		index[l.Name] = len(doc.Groups)
		doc.Groups = append(doc.Groups, Group{Name: l.Name, Parent: parent})
	}

	// Second pass: layers into their groups.
	layerIndex := 0
	for _, l := range layers {
		if groupNames[l.Name] {
			continue
		}
		target := 0
		if l.Group != "" {
			target = index[l.Group]
		}
		layer := Layer{Name: l.Name, Index: layerIndex}
		if action, params, ok := parseMetaName(l.Name); ok {
			layer.Kind = LayerMeta
			layer.Action = action
			layer.Params = params
		}
		doc.Groups[target].Layers = append(doc.Groups[target].Layers, layer)
		layerIndex++
	}
	return nil
}

// parseMetaName parses the "@action(param,param)" meta layer convention.
// Returns ok=false for plain content layer names.
func parseMetaName(name string) (action string, params []string, ok bool) {
	if !strings.HasPrefix(name, "@") {
		return "", nil, false
	}
	body := name[1:]
	if open := strings.IndexByte(body, '('); open >= 0 {
		action = body[:open]
		inner := strings.TrimSuffix(body[open+1:], ")")
		params = splitProperties(inner)
	} else {
		action = body
	}
	return action, params, action != ""
}

// jsonParser adapts ParseSheetJSON to the Parser interface.
type jsonParser struct{}

func (jsonParser) Parse(name string, data []byte) (*Document, error) {
	return ParseSheetJSON(name, data)
}
