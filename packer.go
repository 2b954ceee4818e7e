package metasprite

import (
	"os"
	"path"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
)

// AtlasGenerator packs per-frame images for every content group of the
// document into atlas pages, returning one ordered sprite list per group
// (slice index = frame id). Implementations report oversized or empty input
// with a *PackingError.
type AtlasGenerator interface {
	GenerateAtlas(ctx *Context, outputPath string) (*Atlas, map[string][]SpriteRef, error)
}

// ImageSource provides the pixel data for one group frame. The reference
// packer composites these onto its pages; a nil source packs metadata only,
// which is what headless imports and tests use.
type ImageSource interface {
	FrameImage(group string, frame int) *ebiten.Image
}

// AtlasJSONPath returns the deterministic path for a source's atlas
// metadata.
func AtlasJSONPath(dir, source string) string {
	return path.Join(dir, source+".atlas.json")
}

// RowPacker is a reference AtlasGenerator using simple row (shelf)
// placement: frames are laid out left to right in rows of the frame
// height, wrapping to a new row and then a new page when full. It exists
// to make the pipeline self-contained and deterministic; production
// packers plug in through the AtlasGenerator interface.
type RowPacker struct {
	// PageWidth and PageHeight size the atlas pages. Zero selects 1024.
	PageWidth, PageHeight int
	// Source supplies frame pixels. Nil packs metadata only (no pages).
	Source ImageSource
}

func (p *RowPacker) pageSize() (int, int) {
	w, h := p.PageWidth, p.PageHeight
	if w <= 0 {
		w = 1024
	}
	if h <= 0 {
		h = 1024
	}
	return w, h
}

// GenerateAtlas packs every content group's frames and writes the atlas
// metadata JSON to outputPath (skipped when outputPath is empty).
func (p *RowPacker) GenerateAtlas(ctx *Context, outputPath string) (*Atlas, map[string][]SpriteRef, error) {
	doc := ctx.Doc
	groups := ctx.contentGroups()
	if len(groups) == 0 || len(doc.Frames) == 0 {
		return nil, nil, &PackingError{Reason: "nothing to pack"}
	}

	pageW, pageH := p.pageSize()
	fw, fh := doc.Width, doc.Height
	if fw > pageW || fh > pageH {
		return nil, nil, &PackingError{Reason: "frame larger than atlas page"}
	}

	atlas := NewAtlas(nil)
	sprites := make(map[string][]SpriteRef, len(groups))

	x, y, page := 0, 0, 0
	var curPage *ebiten.Image
	newPage := func() {
		if p.Source == nil {
			return
		}
		curPage = ebiten.NewImage(pageW, pageH)
		atlas.Pages = append(atlas.Pages, curPage)
	}
	newPage()

	for _, gi := range groups {
		g := doc.Groups[gi]
		list := make([]SpriteRef, 0, len(doc.Frames))
		for _, frame := range doc.Frames {
			if x+fw > pageW {
				x = 0
				y += fh
			}
			if y+fh > pageH {
				x, y = 0, 0
				page++
				newPage()
			}

			region := TextureRegion{
				Page:      uint16(page),
				X:         uint16(x),
				Y:         uint16(y),
				Width:     uint16(fw),
				Height:    uint16(fh),
				OriginalW: uint16(fw),
				OriginalH: uint16(fh),
			}
			name := SpriteName(g.Name, frame.ID)
			atlas.SetRegion(name, region)
			list = append(list, SpriteRef{Name: name, Index: frame.ID, Region: region})

			if p.Source != nil {
				if img := p.Source.FrameImage(g.Name, frame.ID); img != nil {
					var op ebiten.DrawImageOptions
					op.GeoM.Translate(float64(x), float64(y))
					curPage.DrawImage(img, &op)
				}
			}
			x += fw
		}
		sprites[g.Name] = list
	}

	if outputPath != "" {
		b, err := atlas.MarshalJSON()
		if err != nil {
			return nil, nil, err
		}
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			return nil, nil, err
		}
		if err := os.WriteFile(outputPath, b, 0o644); err != nil {
			return nil, nil, err
		}
	}
	return atlas, sprites, nil
}
