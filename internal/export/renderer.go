package export

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/fakeyudi/intervals/internal/plan"
	"github.com/fakeyudi/intervals/internal/session"
	"github.com/fakeyudi/intervals/internal/timecode"
)

// Renderer serializes a session to bytes.
type Renderer interface {
	Render(s *session.Session) ([]byte, error)
}

// JSONRenderer renders a session as indented JSON in the browser app's shape.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(s *session.Session) ([]byte, error) {
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return append(out, '\n'), nil
}

// YAMLRenderer renders a session as YAML, convenient for hand editing.
type YAMLRenderer struct{}

func (r *YAMLRenderer) Render(s *session.Session) ([]byte, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return out, nil
}

// MarkdownRenderer renders a readable workout sheet with an embedded base64
// JSON payload so the file can be imported without loss.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(s *session.Session) ([]byte, error) {
	jsonBytes, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(jsonBytes)

	var sb strings.Builder
	sb.WriteString(versionSentinel + "\n")
	fmt.Fprintf(&sb, "%s%s%s\n\n", dataPrefix, encoded, dataSuffix)

	fmt.Fprintf(&sb, "# %s\n\n", s.Name)
	if s.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", s.Description)
	}

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- Total time: %s\n", timecode.FormatTotal(session.TotalSeconds(s)))
	fmt.Fprintf(&sb, "- Items: %d\n", len(s.Items))
	if !s.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "- Created: %s\n", s.CreatedAt.Format("2006-01-02 15:04"))
	}
	if s.LastUsedAt != nil {
		fmt.Fprintf(&sb, "- Last used: %s\n", s.LastUsedAt.Format("2006-01-02 15:04"))
	}
	sb.WriteString("\n")

	sb.WriteString("## Items\n\n")
	if len(s.Items) == 0 {
		sb.WriteString("_No items._\n")
	} else {
		sb.WriteString("| # | Type | Description | Sets | Time | Speed | Incline |\n")
		sb.WriteString("|---|------|-------------|------|------|-------|---------|\n")
		for i, item := range s.Items {
			fmt.Fprintf(&sb, "| %d | %s | %s | %d | %s | %s | %s |\n",
				i+1, item.Kind, escapeCell(item.Description), item.Sets,
				timecode.Format(item.Duration), speedText(item.Speed, s.ShowPace), inclineText(item.Incline))
			for _, sub := range item.SubItems {
				omit := ""
				if sub.OmitInLastSet {
					omit = " (not in last set)"
				}
				fmt.Fprintf(&sb, "|  | ↳ | %s%s |  | %s | %s | %s |\n",
					escapeCell(sub.Description), omit,
					timecode.Format(sub.Duration), speedText(sub.Speed, s.ShowPace), inclineText(sub.Incline))
			}
		}
	}
	sb.WriteString("\n")

	steps := plan.Build(s)
	sb.WriteString("## Plan\n\n")
	if len(steps) == 0 {
		sb.WriteString("_Nothing to run._\n")
		return []byte(sb.String()), nil
	}
	sb.WriteString("| # | Step | Set | Duration | Starts at |\n")
	sb.WriteString("|---|------|-----|----------|-----------|\n")
	at := 0
	for i, st := range steps {
		fmt.Fprintf(&sb, "| %d | %s | %d/%d | %s | %s |\n",
			i+1, escapeCell(st.Label()), st.Set, st.TotalSets, timecode.Format(st.Duration), timecode.Format(at))
		at += st.Duration
	}
	return []byte(sb.String()), nil
}

// TextRenderer renders the terminal view used by `intervals show`.
type TextRenderer struct{}

var titleStyle = lipgloss.NewStyle().Bold(true)

func (r *TextRenderer) Render(s *session.Session) ([]byte, error) {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(s.Name) + "\n")
	if s.Description != "" {
		sb.WriteString(s.Description + "\n")
	}
	fmt.Fprintf(&sb, "id %s · total %s\n\n", s.ID, timecode.FormatTotal(session.TotalSeconds(s)))

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "STEP", "SET", "TIME", "SPEED", "INCLINE")
	for i, st := range plan.Build(s) {
		set := ""
		if st.TotalSets > 1 {
			set = fmt.Sprintf("%d/%d", st.Set, st.TotalSets)
		}
		t.Row(strconv.Itoa(i+1), st.Label(), set, timecode.Format(st.Duration),
			speedText(st.Speed, s.ShowPace), inclineText(st.Incline))
	}
	sb.WriteString(t.String() + "\n")
	return []byte(sb.String()), nil
}

func speedText(kph float64, showPace bool) string {
	if kph <= 0 {
		return ""
	}
	out := strconv.FormatFloat(kph, 'f', -1, 64) + " km/h"
	if showPace {
		out += " (" + timecode.Pace(kph) + "/km)"
	}
	return out
}

func inclineText(pct float64) string {
	if pct <= 0 {
		return ""
	}
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
