package harmonize

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AliasFile is the curated alias list, maintained offline. Fuzzy matches
// observed at request time are never written back here.
type AliasFile struct {
	States    map[string][]string `yaml:"states,omitempty"`
	Districts map[string][]string `yaml:"districts,omitempty"`
	Crops     map[string][]string `yaml:"crops,omitempty"`
}

// LoadAliasFile parses a curated alias YAML file
func LoadAliasFile(path string) (*AliasFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias file: %w", err)
	}

	var af AliasFile
	if err := yaml.Unmarshal(data, &af); err != nil {
		return nil, fmt.Errorf("failed to parse alias file: %w", err)
	}

	return &af, nil
}

// Apply attaches every curated alias to its canonical dimension in the
// index. Entries whose canonical name is absent from the index are
// skipped.
func (af *AliasFile) Apply(x *Index) {
	if af == nil {
		return
	}
	for canonical, aliases := range af.States {
		x.AttachAliases(KindState, canonical, aliases)
	}
	for canonical, aliases := range af.Districts {
		x.AttachAliases(KindDistrict, canonical, aliases)
	}
	for canonical, aliases := range af.Crops {
		x.AttachAliases(KindCrop, canonical, aliases)
	}
}
