package metasprite

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store is the persistent asset store the pipeline synchronizes its
// artifacts against. Load methods return (nil, nil) when no asset exists at
// the path; Save methods are idempotent for identical inputs. The pipeline
// assumes single-writer access per path within a run.
type Store interface {
	LoadClip(path string) (*Clip, error)
	SaveClip(clip *Clip, path string) error
	LoadGraph(path string) (*Graph, error)
	SaveGraph(graph *Graph, path string) error
	// SaveTemplate persists the node tree as a reusable template,
	// linking it to any previously persisted identity at the path so
	// repeated saves update one template instead of creating duplicates.
	SaveTemplate(root *Node, path string) error
	// LoadTemplate instantiates a fresh node tree from a persisted
	// template.
	LoadTemplate(path string) (*Node, error)
}

// --- template serialization ---

type nodeTemplate struct {
	Name     string          `json:"name"`
	X        float64         `json:"x,omitempty"`
	Y        float64         `json:"y,omitempty"`
	Z        float64         `json:"z,omitempty"`
	Renderer *SpriteRenderer `json:"renderer,omitempty"`
	Animator *Animator       `json:"animator,omitempty"`
	Children []nodeTemplate  `json:"children,omitempty"`
}

type templateFile struct {
	// ID is the template's persisted identity. It is assigned on first
	// save and preserved by every later save to the same path.
	ID   string       `json:"id"`
	Root nodeTemplate `json:"root"`
}

func nodeToTemplate(n *Node) nodeTemplate {
	t := nodeTemplate{
		Name: n.Name, X: n.X, Y: n.Y, Z: n.Z,
		Renderer: n.Renderer, Animator: n.Animator,
	}
	for _, c := range n.Children() {
		t.Children = append(t.Children, nodeToTemplate(c))
	}
	return t
}

func templateToNode(t nodeTemplate) *Node {
	n := NewNode(t.Name)
	n.X, n.Y, n.Z = t.X, t.Y, t.Z
	n.Renderer = t.Renderer
	n.Animator = t.Animator
	for _, c := range t.Children {
		n.AddChild(templateToNode(c))
	}
	return n
}

// --- FileStore ---

// FileStore persists assets as JSON files. Paths passed to the Store
// methods are taken as-is; Root, when non-empty, is prepended.
type FileStore struct {
	Root string
}

// NewFileStore creates a file store rooted at dir. An empty dir uses paths
// as given.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Root: dir}
}

func (s *FileStore) resolve(path string) string {
	if s.Root == "" {
		return path
	}
	return filepath.Join(s.Root, path)
}

func (s *FileStore) read(path string, v any) (bool, error) {
	b, err := os.ReadFile(s.resolve(path))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("metasprite: failed to parse asset %s: %w", path, err)
	}
	return true, nil
}

func (s *FileStore) write(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	full := s.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, b, 0o644)
}

func (s *FileStore) LoadClip(path string) (*Clip, error) {
	var clip Clip
	ok, err := s.read(path, &clip)
	if err != nil || !ok {
		return nil, err
	}
	return &clip, nil
}

func (s *FileStore) SaveClip(clip *Clip, path string) error {
	return s.write(path, clip)
}

func (s *FileStore) LoadGraph(path string) (*Graph, error) {
	var graph Graph
	ok, err := s.read(path, &graph)
	if err != nil || !ok {
		return nil, err
	}
	return &graph, nil
}

func (s *FileStore) SaveGraph(graph *Graph, path string) error {
	return s.write(path, graph)
}

func (s *FileStore) SaveTemplate(root *Node, path string) error {
	var existing templateFile
	ok, err := s.read(path, &existing)
	if err != nil {
		return err
	}
	id := root.Name
	if ok && existing.ID != "" {
		id = existing.ID
	}
	return s.write(path, templateFile{ID: id, Root: nodeToTemplate(root)})
}

func (s *FileStore) LoadTemplate(path string) (*Node, error) {
	var f templateFile
	ok, err := s.read(path, &f)
	if err != nil || !ok {
		return nil, err
	}
	return templateToNode(f.Root), nil
}

// --- MemStore ---

// MemStore is an in-memory Store for tests. Assets round-trip through JSON
// so stored values are isolated from caller mutation, matching FileStore
// semantics.
type MemStore struct {
	objects map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string][]byte)}
}

// Len returns the number of stored assets.
func (s *MemStore) Len() int { return len(s.objects) }

// Has reports whether an asset exists at the path.
func (s *MemStore) Has(path string) bool {
	_, ok := s.objects[path]
	return ok
}

func (s *MemStore) read(path string, v any) (bool, error) {
	b, ok := s.objects[path]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("metasprite: failed to parse asset %s: %w", path, err)
	}
	return true, nil
}

func (s *MemStore) write(path string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.objects[path] = b
	return nil
}

func (s *MemStore) LoadClip(path string) (*Clip, error) {
	var clip Clip
	ok, err := s.read(path, &clip)
	if err != nil || !ok {
		return nil, err
	}
	return &clip, nil
}

func (s *MemStore) SaveClip(clip *Clip, path string) error {
	return s.write(path, clip)
}

func (s *MemStore) LoadGraph(path string) (*Graph, error) {
	var graph Graph
	ok, err := s.read(path, &graph)
	if err != nil || !ok {
		return nil, err
	}
	return &graph, nil
}

func (s *MemStore) SaveGraph(graph *Graph, path string) error {
	return s.write(path, graph)
}

func (s *MemStore) SaveTemplate(root *Node, path string) error {
	var existing templateFile
	ok, err := s.read(path, &existing)
	if err != nil {
		return err
	}
	id := root.Name
	if ok && existing.ID != "" {
		id = existing.ID
	}
	return s.write(path, templateFile{ID: id, Root: nodeToTemplate(root)})
}

func (s *MemStore) LoadTemplate(path string) (*Node, error) {
	var f templateFile
	ok, err := s.read(path, &f)
	if err != nil || !ok {
		return nil, err
	}
	return templateToNode(f.Root), nil
}
