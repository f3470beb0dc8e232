package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Save writes cfg as YAML to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// RunSetup asks for the common settings on out, reading answers from in.
// Each prompt defaults to the value in existing. The result is validated.
func RunSetup(in io.Reader, out io.Writer, existing Config) (Config, error) {
	r := bufio.NewReader(in)

	ask := func(prompt, defaultVal string) (string, error) {
		if defaultVal != "" {
			fmt.Fprintf(out, "%s [%s]: ", prompt, defaultVal)
		} else {
			fmt.Fprintf(out, "%s: ", prompt)
		}
		line, err := r.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return defaultVal, nil
		}
		return line, nil
	}

	askBool := func(prompt string, defaultVal bool) (bool, error) {
		def := "n"
		if defaultVal {
			def = "y"
		}
		ans, err := ask(prompt+" (y/n)", def)
		if err != nil {
			return false, err
		}
		ans = strings.ToLower(ans)
		return ans == "y" || ans == "yes", nil
	}

	cfg := existing

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  ┌─────────────────────────────────┐")
	fmt.Fprintln(out, "  │        intervals setup          │")
	fmt.Fprintln(out, "  └─────────────────────────────────┘")
	fmt.Fprintln(out)

	var err error

	if cfg.Store, err = ask("  Session store (json/sqlite)", cfg.Store); err != nil {
		return Config{}, err
	}

	countdown, err := askBool("  Count down 3-2-1 before a run", cfg.CountdownEnabled())
	if err != nil {
		return Config{}, err
	}
	cfg.Countdown = boolPtr(countdown)

	preCue, err := ask("  Warning beeps before a step ends (seconds, 0 for none)", strconv.Itoa(cfg.PreCueWindow()))
	if err != nil {
		return Config{}, err
	}
	n, convErr := strconv.Atoi(preCue)
	if convErr != nil {
		return Config{}, fmt.Errorf("pre-cue seconds: %w", convErr)
	}
	cfg.PreCueSeconds = intPtr(n)

	if cfg.Audio.Mode, err = ask("  Audio (bell/command/off)", cfg.Audio.Mode); err != nil {
		return Config{}, err
	}
	if cfg.Audio.Mode == "command" {
		player, err := ask("  Player command (the sound file is appended)", strings.Join(cfg.Audio.Command, " "))
		if err != nil {
			return Config{}, err
		}
		cfg.Audio.Command = strings.Fields(player)
	}

	fmt.Fprintln(out)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
