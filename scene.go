package metasprite

import (
	"path"
)

// zStep is the depth spacing between sibling content nodes. Strictly
// monotonic front-to-back so siblings never z-fight.
const zStep = 0.01

// PrefabPath returns the deterministic asset path for a source's node
// template.
func PrefabPath(dir, source string) string {
	return path.Join(dir, source+".prefab.json")
}

// buildScene synthesizes the scene node tree mirroring the source's group
// hierarchy: a root named for the source with the animator bound to the
// reconciled graph, one node per group parented per the group tree, and a
// sprite renderer on each content-bearing group showing sprite 0 of that
// group's list. The root is persisted as a reusable template through the
// store, linked so later saves update the same persisted identity.
func buildScene(ctx *Context, store Store) error {
	doc := ctx.Doc
	settings := ctx.Settings

	root := NewNode(doc.Name)
	if ctx.ControllerPath != "" {
		root.Animator = &Animator{Controller: ctx.ControllerPath}
	}
	ctx.Root = root

	siblingIndex := make(map[int]int, len(doc.Groups)) // parent group -> next slot
	for i, g := range doc.Groups {
		node := NewNode(g.Name)

		parent := root
		if g.Parent >= 0 {
			parent = ctx.Nodes[doc.Groups[g.Parent].Name]
		}
		parent.AddChild(node)

		if g.HasContent() {
			sib := siblingIndex[g.Parent]
			siblingIndex[g.Parent] = sib + 1

			sprite := ""
			if sprites := ctx.Sprites[g.Name]; len(sprites) > 0 {
				sprite = sprites[0].Name
			}
			node.Z = -zStep * float64(sib)
			node.Renderer = &SpriteRenderer{
				Sprite:       sprite,
				SortingLayer: settings.SortingLayer,
				SortingOrder: i * settings.OrderInterval,
			}
		}

		ctx.Nodes[g.Name] = node
	}

	prefabPath := PrefabPath(settings.PrefabDir, doc.Name)
	if err := store.SaveTemplate(root, prefabPath); err != nil {
		return err
	}
	ctx.PrefabPath = prefabPath
	return nil
}
