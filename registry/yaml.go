package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is the top-level structure of a strum.yaml definition file.
//
// Example:
//
//	definitions:
//	  - name: record
//	    pattern:
//	      - "{id} | {info} | {email}"
//	      - json
//	    fields:
//	      - name: info
//	        json_first: true
//	        pattern:
//	          - "{name} | {age} | {city}"
//	          - "{name} {age} {city}"
//	    schema:
//	      type: object
//	      required: [id, info]
//	      properties:
//	        id: {type: integer}
//	        info:
//	          type: object
//	          properties:
//	            name: {type: string}
//	            age: {type: integer}
//	            city: {type: string}
type File struct {
	Definitions []Definition `yaml:"definitions"`
}

// Load reads and parses a definition file from the given path. If the path
// is a directory, it looks for strum.yaml or strum.yml in that directory.
func Load(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	configPath := path
	if info.IsDir() {
		yamlPath := filepath.Join(path, "strum.yaml")
		if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else {
			ymlPath := filepath.Join(path, "strum.yml")
			if _, err := os.Stat(ymlPath); err != nil {
				return nil, fmt.Errorf("no strum.yaml or strum.yml found in %s", path)
			}
			configPath = ymlPath
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse parses definition file content.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse definition file: %w", err)
	}

	for i, def := range f.Definitions {
		if def.Name == "" {
			return nil, fmt.Errorf("definition %d has no name", i)
		}
	}

	return &f, nil
}

// LoadFile loads a definition file and registers every definition it
// contains. Registration stops at the first invalid definition.
func (r *Registry) LoadFile(path string) error {
	f, err := Load(path)
	if err != nil {
		return err
	}

	for _, def := range f.Definitions {
		if err := r.Register(def); err != nil {
			return fmt.Errorf("definition %q: %w", def.Name, err)
		}
	}

	return nil
}
