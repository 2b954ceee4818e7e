package metasprite

// Context is the single mutable unit of work for one import run. Every
// stage reads and writes it; meta layer processors receive it last, after
// all other stages have populated it. A Context lives for exactly one
// Import call and is never shared between runs.
type Context struct {
	// Doc is the parsed source document. Immutable after the load stage.
	Doc *Document

	// Settings is the configuration for this run.
	Settings ImportSettings

	// Atlas holds the packed pages and regions after the atlas stage.
	Atlas *Atlas

	// Sprites maps each content group name to its ordered sprite list;
	// the slice index is the frame id.
	Sprites map[string][]SpriteRef

	// Clips maps each frame tag name to its synthesized motion clip.
	Clips map[string]*Clip

	// Graph is the reconciled animation graph, nil when controller
	// generation is skipped.
	Graph *Graph

	// Nodes maps group names to their constructed scene nodes. Names are
	// unique within a run.
	Nodes map[string]*Node

	// Root is the constructed scene root, nil unless prefab generation
	// ran. Transient roots are disposed at run end unless persisted.
	Root *Node

	// Output paths resolved for this run.
	AtlasPath      string
	ControllerPath string
	PrefabPath     string
}

func newContext(doc *Document, settings ImportSettings) *Context {
	return &Context{
		Doc:      doc,
		Settings: settings,
		Sprites:  make(map[string][]SpriteRef),
		Clips:    make(map[string]*Clip),
		Nodes:    make(map[string]*Node),
	}
}

// ScenePath returns the stable slash-separated node path for a group,
// computed from group names rather than node identity so clip tracks keyed
// by path survive the scene tree being rebuilt each run.
func (c *Context) ScenePath(groupIndex int) string {
	g := c.Doc.Groups[groupIndex]
	if g.Parent < 0 {
		return g.Name
	}
	return c.ScenePath(g.Parent) + "/" + g.Name
}

// contentGroups returns the indices of groups carrying content layers, in
// declaration order.
func (c *Context) contentGroups() []int {
	var out []int
	for i, g := range c.Doc.Groups {
		if g.HasContent() {
			out = append(out, i)
		}
	}
	return out
}
