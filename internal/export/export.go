// Package export renders sessions to shareable files and parses them back.
package export

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Markers embedded in Markdown exports so they can be imported again.
const (
	versionSentinel = "<!-- intervals-session-version: 1 -->"
	dataPrefix      = "<!-- intervals-data: "
	dataSuffix      = " -->"
)

// ParseFormat accepts a format name or a common alias.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, yaml, markdown or text)", name)
	}
}

// FormatForPath picks a format from a file extension. Unknown extensions
// yield def.
func FormatForPath(path string, def Format) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".md", ".markdown":
		return FormatMarkdown
	case ".txt":
		return FormatText
	default:
		return def
	}
}

// Extension returns the conventional file extension for f.
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return ".yaml"
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return ".json"
	}
}

// RendererFor returns the renderer for f.
func RendererFor(f Format) (Renderer, error) {
	switch f {
	case FormatJSON:
		return &JSONRenderer{}, nil
	case FormatYAML:
		return &YAMLRenderer{}, nil
	case FormatMarkdown:
		return &MarkdownRenderer{}, nil
	case FormatText:
		return &TextRenderer{}, nil
	default:
		return nil, fmt.Errorf("no renderer for format %q", f)
	}
}

// ParserFor chooses a parser from the file extension, falling back to
// sniffing the content when the extension says nothing.
func ParserFor(path string, data []byte) (Parser, error) {
	switch FormatForPath(path, "") {
	case FormatJSON:
		return &JSONParser{}, nil
	case FormatYAML:
		return &YAMLParser{}, nil
	case FormatMarkdown:
		return &MarkdownParser{}, nil
	case FormatText:
		return nil, fmt.Errorf("%s: text exports cannot be imported", path)
	}
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Contains(trimmed, []byte(versionSentinel)):
		return &MarkdownParser{}, nil
	case bytes.HasPrefix(trimmed, []byte("{")), bytes.HasPrefix(trimmed, []byte("[")):
		return &JSONParser{}, nil
	default:
		return &YAMLParser{}, nil
	}
}
