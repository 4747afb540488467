// Package config loads whyc's optional project-level settings from a
// whyc.yaml file, layered underneath explicit CLI flags: a flag the user
// actually passed always wins over the file.
//
// The file itself is a small yaml.v3-tagged struct read with
// yaml.Unmarshal; a missing file is not an error, since every setting it
// can carry has a sensible flag-level default.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the shape of whyc.yaml.
type File struct {
	// LanguageVersion is a semver constraint (e.g. "^0.3") the compiler's
	// own CompilerVersion must satisfy, validated by cmd/whyc against
	// github.com/Masterminds/semver/v3.
	LanguageVersion string `yaml:"language_version,omitempty"`
}

// Load reads path and parses it as YAML. A missing file is not an error: it
// returns a zero File so callers fall back entirely to flag defaults.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &f, nil
}

// MergeLanguageVersion returns the --lang-version flag value if the caller
// actually passed one (flagValue != ""), else falls back to whatever
// whyc.yaml set, else "" if neither is present.
func (f *File) MergeLanguageVersion(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return f.LanguageVersion
}
