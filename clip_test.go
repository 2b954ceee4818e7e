package metasprite

import (
	"testing"
)

func TestSynthesizeClipsBuildsTracks(t *testing.T) {
	ctx := makeTestContext(ImportSettings{ClipDir: "clips"})
	store := NewMemStore()

	if err := synthesizeClips(ctx, store); err != nil {
		t.Fatalf("synthesizeClips: %v", err)
	}

	walk := ctx.Clips["walk"]
	if walk == nil {
		t.Fatal("no walk clip")
	}
	if !walk.Loop {
		t.Error("walk should loop")
	}
	if !floatEq(walk.Duration, 0.35) {
		t.Errorf("walk duration = %f, want 0.35", walk.Duration)
	}

	// One track per content group, keyed by the stable scene path.
	if len(walk.Tracks) != 2 {
		t.Fatalf("walk has %d tracks, want 2", len(walk.Tracks))
	}
	track := walk.Track("root/char")
	if track == nil {
		t.Fatal("no track for root/char")
	}
	if len(track) != 4 {
		t.Fatalf("track has %d keys, want 4", len(track))
	}
	if track[0].Sprite != "char_0" || track[2].Sprite != "char_2" || track[3].Sprite != "char_2" {
		t.Errorf("track sprites = %v", track)
	}
	if !floatEq(track[3].Time, 0.35-1.0/30) {
		t.Errorf("closing key time = %f, want %f", track[3].Time, 0.35-1.0/30)
	}

	hit := ctx.Clips["hit"]
	if hit == nil {
		t.Fatal("no hit clip")
	}
	if hit.Loop {
		t.Error("hit should not loop")
	}
	if len(hit.Track("root")) != 2 {
		t.Errorf("single-frame tag should still emit two keys, got %d", len(hit.Track("root")))
	}
}

func TestSynthesizeClipsPersists(t *testing.T) {
	ctx := makeTestContext(ImportSettings{ClipDir: "clips"})
	store := NewMemStore()

	if err := synthesizeClips(ctx, store); err != nil {
		t.Fatalf("synthesizeClips: %v", err)
	}

	clip, err := store.LoadClip(ClipPath("clips", "hero", "walk"))
	if err != nil {
		t.Fatalf("LoadClip: %v", err)
	}
	if clip == nil {
		t.Fatal("walk clip not persisted")
	}
	if len(clip.Tracks["root/char"]) != 4 {
		t.Errorf("persisted track has %d keys, want 4", len(clip.Tracks["root/char"]))
	}
}

func TestSynthesizeClipsClearsStaleEvents(t *testing.T) {
	store := NewMemStore()
	stale := &Clip{
		Name:   "walk",
		Events: []ClipEvent{{Time: 0.1, Name: "old-marker"}},
	}
	if err := store.SaveClip(stale, ClipPath("clips", "hero", "walk")); err != nil {
		t.Fatal(err)
	}

	ctx := makeTestContext(ImportSettings{ClipDir: "clips"})
	if err := synthesizeClips(ctx, store); err != nil {
		t.Fatalf("synthesizeClips: %v", err)
	}

	if got := len(ctx.Clips["walk"].Events); got != 0 {
		t.Errorf("stale events not cleared: %d remain", got)
	}
}

func TestSynthesizeClipsIdempotent(t *testing.T) {
	store := NewMemStore()

	ctx1 := makeTestContext(ImportSettings{ClipDir: "clips"})
	if err := synthesizeClips(ctx1, store); err != nil {
		t.Fatal(err)
	}
	before := store.Len()

	ctx2 := makeTestContext(ImportSettings{ClipDir: "clips"})
	if err := synthesizeClips(ctx2, store); err != nil {
		t.Fatal(err)
	}
	if store.Len() != before {
		t.Errorf("second run changed asset count: %d -> %d", before, store.Len())
	}

	for name, c1 := range ctx1.Clips {
		c2 := ctx2.Clips[name]
		if c2 == nil {
			t.Fatalf("clip %s missing on second run", name)
		}
		if c1.Loop != c2.Loop || !floatEq(c1.Duration, c2.Duration) {
			t.Errorf("clip %s changed between runs", name)
		}
	}
}

func TestClipSpriteAt(t *testing.T) {
	clip := &Clip{
		Tracks: map[string][]SpriteKey{
			"root": {
				{Time: 0, Sprite: "a"},
				{Time: 0.1, Sprite: "b"},
				{Time: 0.25, Sprite: "c"},
			},
		},
	}
	cases := []struct {
		t    float64
		want string
	}{
		{0, "a"},
		{0.05, "a"},
		{0.1, "b"},
		{0.2, "b"},
		{0.3, "c"},
	}
	for _, tc := range cases {
		if got := clip.SpriteAt("root", tc.t); got != tc.want {
			t.Errorf("SpriteAt(%f) = %q, want %q", tc.t, got, tc.want)
		}
	}
}
