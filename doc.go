// Package metasprite converts parsed sprite-sheet documents into runtime
// assets: packed texture atlases, time-keyed motion clips, a named-state
// animation graph, and a hierarchical scene node tree.
//
// The import pipeline is staged and idempotent: re-running an import against
// an unchanged source neither duplicates nor corrupts previously generated
// artifacts, and hand-edits to those artifacts that are not strictly derived
// from the source (loop flags, hand-added graph transitions) survive.
//
// # Quick start
//
//	p := metasprite.NewPipeline(metasprite.PipelineConfig{
//		Store: metasprite.NewFileStore("assets"),
//	})
//	err := p.Import("hero.sheet.json", metasprite.ImportSettings{
//		AtlasDir:       "assets/atlas",
//		ClipDir:        "assets/clips",
//		ControllerDir:  "assets/controllers",
//		GeneratePrefab: true,
//		PrefabDir:      "assets/prefabs",
//	})
//
// Import runs six stages in a fixed order: load file, generate atlas,
// generate clips, generate controller, generate prefab, invoke meta layer
// processors. Stage transitions are reported through an optional
// [ProgressSink]; a parse or packing failure aborts the run (already written
// artifacts remain), while registry and graph anomalies are logged warnings.
//
// # Documents
//
// A [Document] is the immutable parsed form of a sheet: ordered frames with
// millisecond durations, inclusive frame-tag ranges, and a tree of layer
// groups. [ParseSheetJSON] reads the common JSON sheet-export format; other
// front ends plug in through the [Parser] interface. Layers named
// "@action(args)" are meta layers and drive registered [MetaProcessor]
// implementations instead of contributing pixels.
//
// # Derived assets
//
// Each frame tag yields one [Clip] whose keyframe times are synthesized from
// the tag's frame durations; the closing keyframe sits one frame-period
// before the clip end so the last visual frame holds for its full duration.
// Clips merge into a [Graph] of named states: existing states are rebound,
// never recreated, so user-added transitions persist across imports. When
// prefab generation is enabled, a [Node] tree mirroring the group hierarchy
// is built and persisted as a template.
//
// # Runtime playback
//
// [Player] plays generated clips against a built node tree, resolving the
// active sprite per track by time and crossfading between graph states (via
// [gween]).
//
// [gween]: https://github.com/tanema/gween
package metasprite
