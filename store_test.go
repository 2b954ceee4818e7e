package metasprite

import (
	"path/filepath"
	"testing"
)

func TestFileStoreClipRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	clip := &Clip{
		Name: "walk", FPS: 30, Loop: true, Duration: 0.35,
		Tracks: map[string][]SpriteKey{
			"root/char": {{Time: 0, Sprite: "char_0"}, {Time: 0.1, Sprite: "char_1"}},
		},
	}
	if err := store.SaveClip(clip, "clips/hero_walk.clip.json"); err != nil {
		t.Fatalf("SaveClip: %v", err)
	}

	got, err := store.LoadClip("clips/hero_walk.clip.json")
	if err != nil {
		t.Fatalf("LoadClip: %v", err)
	}
	if got == nil {
		t.Fatal("clip not found after save")
	}
	if !got.Loop || got.Name != "walk" || len(got.Tracks["root/char"]) != 2 {
		t.Errorf("round-trip mismatch: %+v", got)
	}
}

func TestFileStoreLoadAbsent(t *testing.T) {
	store := NewFileStore(t.TempDir())

	clip, err := store.LoadClip("nope.json")
	if err != nil {
		t.Fatalf("absent asset should not error: %v", err)
	}
	if clip != nil {
		t.Error("absent asset returned a clip")
	}
	graph, err := store.LoadGraph("nope.json")
	if err != nil || graph != nil {
		t.Errorf("absent graph: %v, %v", graph, err)
	}
}

func TestFileStoreGraphRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	graph := NewGraph("hero")
	graph.Root.States = []*State{{Name: "walk", Motion: "clips/w.json", Transitions: []Transition{{Target: "hit"}}}}
	graph.Root.Children = []*StateMachine{{Name: "nested", States: []*State{{Name: "dash"}}}}

	if err := store.SaveGraph(graph, "ctrl/hero.controller.json"); err != nil {
		t.Fatal(err)
	}
	got, err := store.LoadGraph("ctrl/hero.controller.json")
	if err != nil || got == nil {
		t.Fatalf("LoadGraph: %v, %v", got, err)
	}

	index := got.StateIndex()
	if index["walk"] == nil || index["dash"] == nil {
		t.Fatalf("states lost in round-trip: %v", got.StateNames())
	}
	if len(index["walk"].Transitions) != 1 {
		t.Error("transitions lost in round-trip")
	}
}

func TestFileStoreTemplateKeepsIdentity(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	root := NewNode("hero")
	root.AddChild(NewNode("body"))
	if err := store.SaveTemplate(root, "prefabs/hero.prefab.json"); err != nil {
		t.Fatal(err)
	}

	// Simulate the user renaming the in-memory root: the persisted
	// identity must survive the second save.
	root2 := NewNode("hero-edited")
	if err := store.SaveTemplate(root2, "prefabs/hero.prefab.json"); err != nil {
		t.Fatal(err)
	}

	var f templateFile
	ok, err := store.read("prefabs/hero.prefab.json", &f)
	if err != nil || !ok {
		t.Fatalf("read template: %v", err)
	}
	if f.ID != "hero" {
		t.Errorf("template identity changed: %q", f.ID)
	}
	if f.Root.Name != "hero-edited" {
		t.Errorf("template content not updated: %q", f.Root.Name)
	}
}

func TestFileStoreCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	if err := store.SaveClip(&Clip{Name: "x"}, "a/b/c/x.json"); err != nil {
		t.Fatalf("nested save: %v", err)
	}
	if _, err := store.LoadClip(filepath.Join("a", "b", "c", "x.json")); err != nil {
		t.Fatalf("nested load: %v", err)
	}
}

func TestMemStoreIsolation(t *testing.T) {
	store := NewMemStore()
	clip := &Clip{Name: "walk", Loop: true}
	if err := store.SaveClip(clip, "c.json"); err != nil {
		t.Fatal(err)
	}

	// Mutating the original must not affect the stored copy.
	clip.Loop = false
	got, _ := store.LoadClip("c.json")
	if !got.Loop {
		t.Error("stored clip aliases the caller's value")
	}
}
