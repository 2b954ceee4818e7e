package metasprite

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ControllerPolicy selects how the animation controller (graph) output is
// handled.
type ControllerPolicy string

const (
	// ControllerSkip disables controller generation.
	ControllerSkip ControllerPolicy = ""
	// ControllerCreateOrOverride creates the controller if absent and
	// reconciles it in place if present.
	ControllerCreateOrOverride ControllerPolicy = "create-or-override"
)

// ImportSettings configures one import run.
type ImportSettings struct {
	// AtlasDir receives the packed atlas pages and metadata.
	AtlasDir string `yaml:"atlas_dir"`
	// ClipDir receives the generated motion clips.
	ClipDir string `yaml:"clip_dir"`
	// ControllerPolicy selects controller generation. An empty value
	// skips the controller stage with a warning.
	ControllerPolicy ControllerPolicy `yaml:"controller_policy"`
	// ControllerDir receives the animation graph asset.
	ControllerDir string `yaml:"controller_dir"`
	// GeneratePrefab toggles scene-node tree generation.
	GeneratePrefab bool `yaml:"generate_prefab"`
	// PrefabDir receives the persisted node template.
	PrefabDir string `yaml:"prefab_dir"`
	// SortingLayer is applied to every generated sprite renderer.
	SortingLayer int `yaml:"sorting_layer"`
	// OrderInterval spaces sibling sorting orders: order = index * interval.
	OrderInterval int `yaml:"order_interval"`
	// ClipFPS is the declared playback rate of generated clips.
	// Zero selects the default of 30.
	ClipFPS float64 `yaml:"clip_fps"`
}

// FPS returns the effective clip playback rate.
func (s ImportSettings) FPS() float64 {
	if s.ClipFPS <= 0 {
		return 30
	}
	return s.ClipFPS
}

// settingsFile is the on-disk YAML wrapper around ImportSettings.
type settingsFile struct {
	Version int            `yaml:"version"`
	Import  ImportSettings `yaml:"import"`
}

// LoadSettings reads ImportSettings from a YAML file.
func LoadSettings(path string) (ImportSettings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ImportSettings{}, err
	}

	var f settingsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return ImportSettings{}, err
	}
	if f.Version != 1 {
		return ImportSettings{}, fmt.Errorf("metasprite: unsupported settings version: %d", f.Version)
	}
	return f.Import, nil
}

// SaveSettings writes ImportSettings to a YAML file.
func SaveSettings(path string, s ImportSettings) error {
	b, err := yaml.Marshal(settingsFile{Version: 1, Import: s})
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
