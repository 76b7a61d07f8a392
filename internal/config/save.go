package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// SavePartTypes updates the part_types section of the config file.
// This preserves comments and formatting in other sections by using yaml.Node.
func SavePartTypes(configPath string, types []PartTypeConfig) error {
	node, err := buildPartTypesNode(types)
	if err != nil {
		return fmt.Errorf("building part types node: %w", err)
	}
	return saveSection(configPath, "part_types", node)
}

// AddPartType inserts pt at index (len(all) appends) and saves.
func AddPartType(configPath string, index int, pt PartTypeConfig, all []PartTypeConfig) error {
	if index < 0 || index > len(all) {
		return fmt.Errorf("part type index %d out of range (have %d part types)", index, len(all))
	}
	if slices.ContainsFunc(all, func(x PartTypeConfig) bool { return x.Name == pt.Name }) {
		return fmt.Errorf("%w: part type %q already exists", ErrInvalidConfig, pt.Name)
	}
	updated := slices.Insert(slices.Clone(all), index, pt)
	if err := ValidatePartTypes(updated); err != nil {
		return err
	}
	return SavePartTypes(configPath, updated)
}

// RemovePartType removes the part type named name and saves.
func RemovePartType(configPath string, name string, all []PartTypeConfig) error {
	idx := slices.IndexFunc(all, func(x PartTypeConfig) bool { return x.Name == name })
	if idx < 0 {
		return fmt.Errorf("part type %q not found", name)
	}
	updated := slices.Delete(slices.Clone(all), idx, idx+1)
	if err := ValidatePartTypes(updated); err != nil {
		return err
	}
	return SavePartTypes(configPath, updated)
}

// buildPartTypesNode creates a yaml.Node representing the part types array.
func buildPartTypesNode(types []PartTypeConfig) (*yaml.Node, error) {
	node := &yaml.Node{}
	if err := node.Encode(types); err != nil {
		return nil, err
	}
	return node, nil
}

// saveSection replaces (or appends) the top-level key with value and writes
// the file atomically.
func saveSection(configPath, key string, value *yaml.Node) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	// Parse into yaml.Node to preserve comments
	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{
				{
					Kind: yaml.MappingNode,
					Content: []*yaml.Node{
						{Kind: yaml.ScalarNode, Value: key},
						value,
					},
				},
			},
		}
	} else if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root := doc.Content[0]
		if root.Kind != yaml.MappingNode {
			return fmt.Errorf("parsing config: top level is not a mapping")
		}
		found := false
		for i := 0; i < len(root.Content)-1; i += 2 {
			if root.Content[i].Value == key {
				root.Content[i+1] = value
				found = true
				break
			}
		}
		if !found {
			root.Content = append(root.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: key},
				value,
			)
		}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	// Write atomically (write to temp, then rename)
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".mentions.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(buf.Bytes()); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
