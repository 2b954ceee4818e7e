package metasprite

// Shared fixtures for the clip, graph, and scene tests.

// makeTestDoc builds a document with two content groups (root "fx" layer
// and a "char" group) and two tags: a looping 3-frame "walk" and a
// single-frame "hit".
func makeTestDoc() *Document {
	return &Document{
		Name:   "hero",
		Width:  16,
		Height: 16,
		Frames: []Frame{{0, 100}, {1, 150}, {2, 100}},
		Tags: []FrameTag{
			{Name: "walk", From: 0, To: 2, Properties: []string{"loop"}},
			{Name: "hit", From: 1, To: 1},
		},
		Groups: []Group{
			{Name: "root", Parent: -1, Layers: []Layer{{Name: "fx", Index: 0}}},
			{Name: "char", Parent: 0, Layers: []Layer{{Name: "body", Index: 1}}},
		},
	}
}

// makeTestContext builds a context over makeTestDoc with packed sprite
// lists generated by the reference row packer (metadata only).
func makeTestContext(settings ImportSettings) *Context {
	ctx := newContext(makeTestDoc(), settings)
	packer := &RowPacker{}
	atlas, sprites, err := packer.GenerateAtlas(ctx, "")
	if err != nil {
		panic(err)
	}
	ctx.Atlas = atlas
	ctx.Sprites = sprites
	return ctx
}
