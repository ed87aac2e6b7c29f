// Package phrases reads question pool files.
//
// A YAML file (.yaml, .yml) is either a list of phrases or a document with a
// "phrases" list. Any other file holds one phrase per line; blank lines and
// lines starting with "#" are skipped.
package phrases

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrEmpty = fmt.Errorf("no phrases")

type document struct {
	Phrases []string `yaml:"phrases"`
}

func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read phrase file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseText(bytes.NewReader(data))
	}
}

func ParseYAML(data []byte) ([]string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	if len(node.Content) == 0 {
		return nil, ErrEmpty
	}

	var list []string
	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&list); err != nil {
			return nil, fmt.Errorf("decode phrase list: %w", err)
		}
	case yaml.MappingNode:
		var doc document
		if err := root.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode phrase document: %w", err)
		}
		list = doc.Phrases
	default:
		return nil, fmt.Errorf("unexpected yaml document at line %d", root.Line)
	}

	return clean(list)
}

func ParseText(r io.Reader) ([]string, error) {
	var list []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		list = append(list, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan phrases: %w", err)
	}

	return clean(list)
}

func clean(list []string) ([]string, error) {
	phrases := list[:0]
	for _, p := range list {
		if p = strings.TrimSpace(p); p != "" {
			phrases = append(phrases, p)
		}
	}

	if len(phrases) == 0 {
		return nil, ErrEmpty
	}

	return phrases, nil
}
