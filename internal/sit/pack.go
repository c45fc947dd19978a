package sit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pack is a YAML file of SIT definitions.
//
//	name: financial
//	description: Card and bank identifiers
//	version: "1.0"
//	sits:
//	  - id: SIT_CCN
//	    name: Credit Card Number
//	    regex: '\b(?:\d{4}[ -]?){3}\d{4}\b'
//	    generator: {builtin: luhn_card, decoy: "0000 0000 0000 0000"}
type Pack struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Version     string    `yaml:"version"`
	Author      string    `yaml:"author"`
	SITs        []PackSIT `yaml:"sits"`
}

// PackSIT is one SIT entry inside a pack.
type PackSIT struct {
	ID            string        `yaml:"id"`
	Name          string        `yaml:"name"`
	Regex         string        `yaml:"regex"`
	CaseSensitive bool          `yaml:"case_sensitive,omitempty"`
	Generator     GeneratorSpec `yaml:"generator"`
	Description   string        `yaml:"description,omitempty"`
	Tags          []string      `yaml:"tags,omitempty"`
}

// PackInfo is a summary of a pack for listing.
type PackInfo struct {
	Name        string
	Description string
	Version     string
	Author      string
	Enabled     bool
	Path        string
	SITCount    int
}

// Definition compiles the entry into a Definition.
func (p PackSIT) Definition() (*Definition, error) {
	re, err := CompilePattern(p.Regex, p.CaseSensitive)
	if err != nil {
		return nil, &ConfigError{Key: p.ID, Reason: "regex does not compile", Err: err}
	}
	gen, err := p.Generator.Build()
	if err != nil {
		return nil, &ConfigError{Key: p.ID, Reason: "invalid generator", Err: err}
	}
	return NewDefinition(p.ID, re, gen,
		WithName(p.Name), WithDescription(p.Description), WithTags(p.Tags...),
		WithDecoy(p.Generator.BuildDecoy()))
}

// LoadPacks reads every .yaml/.yml file in dir and layers its SITs over base.
// A pack whose file name starts with "_" is disabled: it is listed but not
// loaded. A pack SIT whose id already exists in base replaces the base
// definition in place; the same id defined by two enabled packs is a
// ConfigError. A missing directory yields base unchanged.
func LoadPacks(dir string, base *Registry) (*Registry, []PackInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil, nil
		}
		return nil, nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && isYAMLFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	defs := base.Definitions()
	index := make(map[string]int, len(defs))
	for i, d := range defs {
		index[d.ID()] = i
	}
	fromPack := map[string]string{}

	var infos []PackInfo
	for _, name := range names {
		path := filepath.Join(dir, name)
		baseName := strings.TrimSuffix(name, filepath.Ext(name))
		enabled := !strings.HasPrefix(baseName, "_")

		pack, err := loadPack(path)
		if err != nil {
			if !enabled {
				infos = append(infos, PackInfo{Name: baseName, Path: path})
				continue
			}
			return nil, nil, &ConfigError{Key: path, Reason: "cannot load pack", Err: err}
		}

		info := PackInfo{
			Name:        pack.Name,
			Description: pack.Description,
			Version:     pack.Version,
			Author:      pack.Author,
			Enabled:     enabled,
			Path:        path,
			SITCount:    len(pack.SITs),
		}
		if info.Name == "" {
			info.Name = baseName
		}
		infos = append(infos, info)

		if !enabled {
			continue
		}

		for _, ps := range pack.SITs {
			d, err := ps.Definition()
			if err != nil {
				return nil, nil, fmt.Errorf("pack %s: %w", path, err)
			}
			if prev, dup := fromPack[d.ID()]; dup {
				return nil, nil, &ConfigError{
					Key:    d.ID(),
					Reason: fmt.Sprintf("defined by both %s and %s", prev, path),
				}
			}
			fromPack[d.ID()] = path

			if i, ok := index[d.ID()]; ok {
				defs[i] = d
				continue
			}
			index[d.ID()] = len(defs)
			defs = append(defs, d)
		}
	}

	reg, err := NewRegistry(defs...)
	if err != nil {
		return nil, nil, err
	}
	return reg, infos, nil
}

func loadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("failed to parse pack %s: %w", path, err)
	}
	return &pack, nil
}

func isYAMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
