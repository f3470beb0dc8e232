package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configurable intervals settings.
type Config struct {
	DataDir       string `yaml:"data_dir,omitempty"`
	Store         string `yaml:"store,omitempty"` // "json" | "sqlite"
	Countdown     *bool  `yaml:"countdown,omitempty"`
	CountdownFrom int    `yaml:"countdown_from,omitempty"`
	PreCueSeconds *int   `yaml:"pre_cue_seconds,omitempty"`
	Audio         Audio  `yaml:"audio,omitempty"`
	Log           Log    `yaml:"log,omitempty"`
	List          List   `yaml:"list,omitempty"`
	Remote        Remote `yaml:"remote,omitempty"`
}

type Audio struct {
	Mode           string            `yaml:"mode,omitempty"`    // "bell" | "command" | "off"
	Command        []string          `yaml:"command,omitempty"` // argv prefix, the cue file is appended
	Files          map[string]string `yaml:"files,omitempty"`   // cue name -> sound file
	TimeoutSeconds int               `yaml:"timeout_seconds,omitempty"`
}

type Log struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"` // "text" | "json"
}

type List struct {
	Sort  string `yaml:"sort,omitempty"`
	Order string `yaml:"order,omitempty"` // "asc" | "desc"
}

type Remote struct {
	Listen string `yaml:"listen,omitempty"`
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		Store:         "json",
		Countdown:     boolPtr(true),
		CountdownFrom: 3,
		PreCueSeconds: intPtr(3),
		Audio: Audio{
			Mode:           "bell",
			Files:          map[string]string{},
			TimeoutSeconds: 5,
		},
		Log:  Log{Level: "info", Format: "text"},
		List: List{Sort: "last-used", Order: "desc"},
	}
}

// CountdownEnabled reports whether runs start with the 3-2-1 countdown.
func (c Config) CountdownEnabled() bool {
	return c.Countdown == nil || *c.Countdown
}

// PreCueWindow is the number of trailing seconds of a step that get a warning cue.
func (c Config) PreCueWindow() int {
	if c.PreCueSeconds == nil {
		return 3
	}
	return *c.PreCueSeconds
}

// AudioTimeout bounds a single cue.
func (c Config) AudioTimeout() time.Duration {
	return time.Duration(c.Audio.TimeoutSeconds) * time.Second
}

// GlobalPath returns the user config file, honouring XDG_CONFIG_HOME.
func GlobalPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); strings.TrimSpace(xdg) != "" {
		return filepath.Join(xdg, "intervals", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "intervals", "config.yaml"), nil
}

// ProjectFile is the per-directory override file.
const ProjectFile = ".intervals.yaml"

// LoadGlobal reads the user config file.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	return loadFile(path, true)
}

// LoadProject reads .intervals.yaml in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(ProjectFile, false)
}

// Load merges the global and project files and applies environment
// overrides, then validates the result.
func Load() (Config, error) {
	global, err := LoadGlobal()
	if err != nil {
		return Config{}, err
	}
	project, err := LoadProject()
	if err != nil {
		return Config{}, err
	}
	cfg := Merge(global, project)
	if err := ApplyEnv(&cfg, os.Getenv); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFile reads and parses a YAML config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, layer := range []*Config{global, project} {
		if layer != nil {
			overlay(&result, layer)
		}
	}
	return result
}

func overlay(dst, src *Config) {
	if src.DataDir != "" {
		dst.DataDir = src.DataDir
	}
	if src.Store != "" {
		dst.Store = src.Store
	}
	if src.Countdown != nil {
		dst.Countdown = boolPtr(*src.Countdown)
	}
	if src.CountdownFrom != 0 {
		dst.CountdownFrom = src.CountdownFrom
	}
	if src.PreCueSeconds != nil {
		dst.PreCueSeconds = intPtr(*src.PreCueSeconds)
	}
	if src.Audio.Mode != "" {
		dst.Audio.Mode = src.Audio.Mode
	}
	if len(src.Audio.Command) > 0 {
		dst.Audio.Command = src.Audio.Command
	}
	if len(src.Audio.Files) > 0 {
		files := make(map[string]string, len(dst.Audio.Files)+len(src.Audio.Files))
		for k, v := range dst.Audio.Files {
			files[k] = v
		}
		for k, v := range src.Audio.Files {
			files[k] = v
		}
		dst.Audio.Files = files
	}
	if src.Audio.TimeoutSeconds != 0 {
		dst.Audio.TimeoutSeconds = src.Audio.TimeoutSeconds
	}
	if src.Log.Level != "" {
		dst.Log.Level = src.Log.Level
	}
	if src.Log.Format != "" {
		dst.Log.Format = src.Log.Format
	}
	if src.List.Sort != "" {
		dst.List.Sort = src.List.Sort
	}
	if src.List.Order != "" {
		dst.List.Order = src.List.Order
	}
	if src.Remote.Listen != "" {
		dst.Remote.Listen = src.Remote.Listen
	}
}

// ApplyEnv applies INTERVALS_* environment overrides on top of cfg.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if value := strings.TrimSpace(getenv("INTERVALS_DATA_DIR")); value != "" {
		cfg.DataDir = value
	}
	if value := strings.TrimSpace(getenv("INTERVALS_STORE")); value != "" {
		cfg.Store = value
	}
	if value := strings.TrimSpace(getenv("INTERVALS_LOG_LEVEL")); value != "" {
		cfg.Log.Level = value
	}
	if value := strings.TrimSpace(getenv("INTERVALS_AUDIO")); value != "" {
		cfg.Audio.Mode = value
	}
	if value := strings.TrimSpace(getenv("INTERVALS_COUNTDOWN")); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid INTERVALS_COUNTDOWN value %q: %w", value, err)
		}
		cfg.Countdown = boolPtr(parsed)
	}
	return nil
}

// ValidationError lists every problem found in a merged config.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "invalid config"
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(e.Problems, "; "))
}

// Validate checks enumerations and ranges of a merged config.
func Validate(cfg Config) error {
	problems := []string{}

	switch cfg.Store {
	case "json", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("store must be json or sqlite, got %q", cfg.Store))
	}
	if cfg.CountdownFrom < 1 || cfg.CountdownFrom > 10 {
		problems = append(problems, "countdown_from must be between 1 and 10")
	}
	if cfg.PreCueWindow() < 0 {
		problems = append(problems, "pre_cue_seconds must be >= 0")
	}
	switch cfg.Audio.Mode {
	case "bell", "off":
	case "command":
		if len(cfg.Audio.Command) == 0 {
			problems = append(problems, "audio.command is required when audio.mode is command")
		}
	default:
		problems = append(problems, fmt.Sprintf("audio.mode must be bell, command or off, got %q", cfg.Audio.Mode))
	}
	if cfg.Audio.TimeoutSeconds <= 0 {
		problems = append(problems, "audio.timeout_seconds must be > 0")
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", cfg.Log.Level))
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format must be text or json, got %q", cfg.Log.Format))
	}
	switch cfg.List.Sort {
	case "last-used", "created", "duration", "name":
	default:
		problems = append(problems, fmt.Sprintf("list.sort %q is not a known sort key", cfg.List.Sort))
	}
	switch cfg.List.Order {
	case "asc", "desc":
	default:
		problems = append(problems, fmt.Sprintf("list.order must be asc or desc, got %q", cfg.List.Order))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func boolPtr(v bool) *bool {
	return &v
}

func intPtr(v int) *int {
	return &v
}
