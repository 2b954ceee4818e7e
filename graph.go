package metasprite

import (
	"log"
	"path"
)

// Transition is a directed edge between two named states. Transitions are
// user data as far as the reconciler is concerned: it never creates,
// removes, or rewrites them.
type Transition struct {
	Target    string `json:"target"`
	Condition string `json:"condition,omitempty"`
}

// State is one named state of the animation graph, optionally holding a
// motion clip reference (the clip's asset path).
type State struct {
	Name        string       `json:"name"`
	Motion      string       `json:"motion,omitempty"`
	Transitions []Transition `json:"transitions,omitempty"`
}

// StateMachine holds states and nested sub-machines. State names must be
// unique across the whole graph including nested machines; duplicates are a
// logged anomaly, not an error.
type StateMachine struct {
	Name     string          `json:"name,omitempty"`
	States   []*State        `json:"states"`
	Children []*StateMachine `json:"children,omitempty"`
}

// Graph is the named-state animation graph asset.
type Graph struct {
	Name string        `json:"name"`
	Root *StateMachine `json:"root"`
}

// NewGraph creates an empty graph with a root state machine.
func NewGraph(name string) *Graph {
	return &Graph{Name: name, Root: &StateMachine{}}
}

// StateIndex builds a flat name -> state table by walking the root machine
// and all nested sub-machines in pre-order: own states first, then each
// child machine in declaration order. A duplicate name anywhere keeps the
// first-seen entry and logs a warning; the walk order makes "first"
// deterministic.
func (g *Graph) StateIndex() map[string]*State {
	index := make(map[string]*State)
	indexMachine(g.Root, index)
	return index
}

func indexMachine(m *StateMachine, index map[string]*State) {
	if m == nil {
		return
	}
	for _, s := range m.States {
		if _, dup := index[s.Name]; dup {
			log.Printf("metasprite: duplicate state name %q in graph, keeping first", s.Name)
			continue
		}
		index[s.Name] = s
	}
	for _, child := range m.Children {
		indexMachine(child, index)
	}
}

// StateNames returns every state name reachable from the root, in walk
// order. Duplicates appear once.
func (g *Graph) StateNames() []string {
	index := g.StateIndex()
	names := make([]string, 0, len(index))
	var walk func(m *StateMachine)
	seen := make(map[string]bool, len(index))
	walk = func(m *StateMachine) {
		if m == nil {
			return
		}
		for _, s := range m.States {
			if !seen[s.Name] {
				seen[s.Name] = true
				names = append(names, s.Name)
			}
		}
		for _, child := range m.Children {
			walk(child)
		}
	}
	walk(g.Root)
	return names
}

// ControllerPath returns the deterministic asset path for a source's
// animation graph.
func ControllerPath(dir, source string) string {
	return path.Join(dir, source+".controller.json")
}

// reconcileGraph merges the synthesized clips into the animation graph at
// the configured output path. Existing states keep their transitions and
// any other structure; only their motion reference is rebound. States with
// no corresponding tag are left untouched — the graph is never pruned.
//
// Controller generation is optional: with no policy or output directory
// configured this is a logged no-op.
func reconcileGraph(ctx *Context, store Store) error {
	settings := ctx.Settings
	if settings.ControllerPolicy != ControllerCreateOrOverride || settings.ControllerDir == "" {
		log.Printf("metasprite: no controller output configured, skipping graph generation")
		return nil
	}

	ctrlPath := ControllerPath(settings.ControllerDir, ctx.Doc.Name)
	graph, err := store.LoadGraph(ctrlPath)
	if err != nil {
		return err
	}
	if graph == nil {
		graph = NewGraph(ctx.Doc.Name)
	}
	if graph.Root == nil {
		graph.Root = &StateMachine{}
	}

	index := graph.StateIndex()
	for _, tag := range ctx.Doc.Tags {
		clip, ok := ctx.Clips[tag.Name]
		if !ok {
			continue
		}
		motion := ClipPath(settings.ClipDir, ctx.Doc.Name, clip.Name)
		if state, ok := index[tag.Name]; ok {
			state.Motion = motion
			continue
		}
		state := &State{Name: tag.Name, Motion: motion}
		graph.Root.States = append(graph.Root.States, state)
		index[tag.Name] = state
	}

	if err := store.SaveGraph(graph, ctrlPath); err != nil {
		return err
	}
	ctx.Graph = graph
	ctx.ControllerPath = ctrlPath
	return nil
}
