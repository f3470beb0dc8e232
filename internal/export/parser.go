package export

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fakeyudi/intervals/internal/session"
)

// Parser deserializes an export back into sessions. A file may hold a single
// session or a list of them, as the browser app's storage does.
type Parser interface {
	Parse(data []byte) ([]*session.Session, error)
}

// JSONParser parses a JSON session object or array.
type JSONParser struct{}

func (p *JSONParser) Parse(data []byte) ([]*session.Session, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var list []*session.Session
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("failed to parse JSON sessions: %w", err)
		}
		return normalized(list)
	}
	var s session.Session
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, fmt.Errorf("failed to parse JSON sessions: %w", err)
	}
	return normalized([]*session.Session{&s})
}

// YAMLParser parses a YAML session mapping or sequence.
type YAMLParser struct{}

func (p *YAMLParser) Parse(data []byte) ([]*session.Session, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse YAML sessions: %w", err)
	}
	if node.Kind != yaml.DocumentNode || len(node.Content) == 0 {
		return nil, fmt.Errorf("failed to parse YAML sessions: empty document")
	}
	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var list []*session.Session
		if err := root.Decode(&list); err != nil {
			return nil, fmt.Errorf("failed to parse YAML sessions: %w", err)
		}
		return normalized(list)
	case yaml.MappingNode:
		var s session.Session
		if err := root.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to parse YAML sessions: %w", err)
		}
		return normalized([]*session.Session{&s})
	default:
		return nil, fmt.Errorf("failed to parse YAML sessions: expected a mapping or a list")
	}
}

// MarkdownParser extracts the embedded payload of a Markdown export.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(data []byte) ([]*session.Session, error) {
	content := string(data)

	if !strings.Contains(content, versionSentinel) {
		return nil, fmt.Errorf("not a valid intervals export: missing version sentinel")
	}

	start := strings.Index(content, dataPrefix)
	if start == -1 {
		return nil, fmt.Errorf("not a valid intervals export: missing data payload")
	}
	start += len(dataPrefix)
	end := strings.Index(content[start:], dataSuffix)
	if end == -1 {
		return nil, fmt.Errorf("not a valid intervals export: malformed data payload")
	}
	encoded := content[start : start+end]

	jsonBytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("not a valid intervals export: corrupted base64 payload: %w", err)
	}

	var s session.Session
	if err := json.Unmarshal(jsonBytes, &s); err != nil {
		return nil, fmt.Errorf("not a valid intervals export: failed to parse embedded JSON: %w", err)
	}
	return normalized([]*session.Session{&s})
}

func normalized(list []*session.Session) ([]*session.Session, error) {
	out := make([]*session.Session, 0, len(list))
	for i, s := range list {
		if s == nil {
			return nil, fmt.Errorf("session %d is empty", i+1)
		}
		s.Normalize()
		out = append(out, s)
	}
	return out, nil
}
