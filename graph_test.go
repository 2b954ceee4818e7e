package metasprite

import (
	"testing"
)

func reconciledSettings() ImportSettings {
	return ImportSettings{
		ClipDir:          "clips",
		ControllerDir:    "ctrl",
		ControllerPolicy: ControllerCreateOrOverride,
	}
}

func runClipAndGraphStages(t *testing.T, store Store, settings ImportSettings) *Context {
	t.Helper()
	ctx := makeTestContext(settings)
	if err := synthesizeClips(ctx, store); err != nil {
		t.Fatalf("synthesizeClips: %v", err)
	}
	if err := reconcileGraph(ctx, store); err != nil {
		t.Fatalf("reconcileGraph: %v", err)
	}
	return ctx
}

func TestReconcileGraphCreatesStates(t *testing.T) {
	store := NewMemStore()
	ctx := runClipAndGraphStages(t, store, reconciledSettings())

	if ctx.Graph == nil {
		t.Fatal("no graph on context")
	}
	names := ctx.Graph.StateNames()
	if len(names) != 2 || names[0] != "walk" || names[1] != "hit" {
		t.Fatalf("state names = %v, want [walk hit]", names)
	}

	index := ctx.Graph.StateIndex()
	if index["walk"].Motion != ClipPath("clips", "hero", "walk") {
		t.Errorf("walk motion = %q", index["walk"].Motion)
	}
}

func TestReconcileGraphSkipsWithoutOutput(t *testing.T) {
	store := NewMemStore()
	ctx := makeTestContext(ImportSettings{ClipDir: "clips"})
	if err := synthesizeClips(ctx, store); err != nil {
		t.Fatal(err)
	}
	if err := reconcileGraph(ctx, store); err != nil {
		t.Fatalf("skip should not error: %v", err)
	}
	if ctx.Graph != nil {
		t.Error("graph generated despite missing output configuration")
	}
}

func TestReconcileGraphPreservesTransitions(t *testing.T) {
	store := NewMemStore()
	runClipAndGraphStages(t, store, reconciledSettings())

	// Hand-add a transition between two generated states, the way a user
	// edits the persisted controller.
	ctrlPath := ControllerPath("ctrl", "hero")
	graph, err := store.LoadGraph(ctrlPath)
	if err != nil || graph == nil {
		t.Fatalf("LoadGraph: %v (%v)", graph, err)
	}
	index := graph.StateIndex()
	index["walk"].Transitions = append(index["walk"].Transitions, Transition{Target: "hit", Condition: "hurt"})
	if err := store.SaveGraph(graph, ctrlPath); err != nil {
		t.Fatal(err)
	}

	// Re-import.
	runClipAndGraphStages(t, store, reconciledSettings())

	graph, err = store.LoadGraph(ctrlPath)
	if err != nil {
		t.Fatal(err)
	}
	walk := graph.StateIndex()["walk"]
	if len(walk.Transitions) != 1 || walk.Transitions[0].Target != "hit" {
		t.Fatalf("hand-added transition lost: %v", walk.Transitions)
	}
	if walk.Transitions[0].Condition != "hurt" {
		t.Errorf("transition condition = %q, want hurt", walk.Transitions[0].Condition)
	}
}

func TestReconcileGraphNeverPrunes(t *testing.T) {
	store := NewMemStore()
	runClipAndGraphStages(t, store, reconciledSettings())

	// Add a state the source knows nothing about.
	ctrlPath := ControllerPath("ctrl", "hero")
	graph, _ := store.LoadGraph(ctrlPath)
	graph.Root.States = append(graph.Root.States, &State{Name: "custom", Motion: "hand/made.clip.json"})
	if err := store.SaveGraph(graph, ctrlPath); err != nil {
		t.Fatal(err)
	}

	runClipAndGraphStages(t, store, reconciledSettings())

	graph, _ = store.LoadGraph(ctrlPath)
	custom := graph.StateIndex()["custom"]
	if custom == nil {
		t.Fatal("unrelated state was pruned")
	}
	if custom.Motion != "hand/made.clip.json" {
		t.Errorf("unrelated state motion rewritten: %q", custom.Motion)
	}
}

func TestReconcileGraphRebindsNestedStates(t *testing.T) {
	store := NewMemStore()

	// Pre-create a controller where "walk" lives in a nested sub-machine.
	graph := NewGraph("hero")
	nested := &StateMachine{Name: "locomotion", States: []*State{{Name: "walk", Motion: "stale"}}}
	graph.Root.Children = append(graph.Root.Children, nested)
	if err := store.SaveGraph(graph, ControllerPath("ctrl", "hero")); err != nil {
		t.Fatal(err)
	}

	runClipAndGraphStages(t, store, reconciledSettings())

	graph, _ = store.LoadGraph(ControllerPath("ctrl", "hero"))
	// The nested state is rebound in place, not duplicated at the root.
	if len(graph.Root.Children) != 1 || len(graph.Root.Children[0].States) != 1 {
		t.Fatal("nested machine structure changed")
	}
	nestedWalk := graph.Root.Children[0].States[0]
	if nestedWalk.Motion != ClipPath("clips", "hero", "walk") {
		t.Errorf("nested walk motion = %q", nestedWalk.Motion)
	}
	for _, s := range graph.Root.States {
		if s.Name == "walk" {
			t.Error("walk duplicated at root level")
		}
	}
}

func TestStateIndexPreOrderKeepsFirst(t *testing.T) {
	graph := NewGraph("g")
	graph.Root.States = []*State{{Name: "a", Motion: "root-a"}}
	graph.Root.Children = []*StateMachine{
		{States: []*State{{Name: "a", Motion: "nested-a"}, {Name: "b"}}},
	}

	index := graph.StateIndex()
	if index["a"].Motion != "root-a" {
		t.Errorf("duplicate resolution kept %q, want root-a (pre-order first)", index["a"].Motion)
	}
	if _, ok := index["b"]; !ok {
		t.Error("nested state b missing from index")
	}
}

func TestReconcileGraphIdempotentStateNames(t *testing.T) {
	store := NewMemStore()
	runClipAndGraphStages(t, store, reconciledSettings())
	graph1, _ := store.LoadGraph(ControllerPath("ctrl", "hero"))
	names1 := graph1.StateNames()

	runClipAndGraphStages(t, store, reconciledSettings())
	graph2, _ := store.LoadGraph(ControllerPath("ctrl", "hero"))
	names2 := graph2.StateNames()

	if len(names1) != len(names2) {
		t.Fatalf("state count changed: %v -> %v", names1, names2)
	}
	for i := range names1 {
		if names1[i] != names2[i] {
			t.Errorf("state names diverged: %v vs %v", names1, names2)
			break
		}
	}
}
