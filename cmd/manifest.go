package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/averden/mediapull/internal/assets"
)

// batchManifest is the on-disk format for a multi-asset download. Top-level
// fields override the matching global flags for the whole batch.
type batchManifest struct {
	Folder  string          `yaml:"folder,omitempty"`
	Prefix  string          `yaml:"prefix,omitempty"`
	Chunked *bool           `yaml:"chunked,omitempty"`
	Assets  []*assets.Asset `yaml:"assets"`
}

func loadAssetManifest(path string) (*assets.Asset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading manifest %s: %w", path, err)
	}
	var asset assets.Asset
	if err := yaml.Unmarshal(raw, &asset); err != nil {
		return nil, fmt.Errorf("error parsing manifest %s: %w", path, err)
	}
	return &asset, nil
}

func loadBatchManifest(path string) (*batchManifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading batch file %s: %w", path, err)
	}
	var manifest batchManifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("error parsing batch file %s: %w", path, err)
	}
	if len(manifest.Assets) == 0 {
		return nil, fmt.Errorf("batch file %s lists no assets", path)
	}
	return &manifest, nil
}
