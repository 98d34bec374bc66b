package cfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/feedscout/feedscout/app/urlutil"
)

// LoadReplacements reads an ordered base URL replacement list from a YAML
// file of the form:
//
//	- old: https://www.reddit.com/
//	  new: https://old.reddit.com/
//
// YAML sequences keep their order, which matters: replacements are applied
// top to bottom.
func LoadReplacements(path string) (urlutil.ReplacementMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read replacements file: %w", err)
	}

	var replacements urlutil.ReplacementMap
	if err := yaml.Unmarshal(data, &replacements); err != nil {
		return nil, fmt.Errorf("failed to parse replacements file %s: %w", path, err)
	}

	for i, r := range replacements {
		if r.Old == "" || r.New == "" {
			return nil, fmt.Errorf("replacement %d in %s is missing old or new", i, path)
		}
	}

	return replacements, nil
}
