package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
)

// ErrNoEnvFile is returned when none of the candidate .env files exist.
var ErrNoEnvFile = errors.New("no env file found")

// OverrideVars name environment variables that point at an explicit .env file.
// They win over the --env flag.
var OverrideVars = []string{"PDFDESK_ENV_FILE", "HORSE_ENV_FILE"}

// EnvLoader resolves the --env flag into a loaded .env file.
type EnvLoader struct {
	fs          *flag.FlagSet
	value       *string
	defaultPath string
}

// AddEnvFlag registers --env on fs (flag.CommandLine when nil).
func AddEnvFlag(fs *flag.FlagSet, defaultPath, description string) *EnvLoader {
	if fs == nil {
		fs = flag.CommandLine
	}
	if defaultPath == "" {
		defaultPath = ".env"
	}
	if description == "" {
		description = "Path to the .env file"
	}
	return &EnvLoader{
		fs:          fs,
		value:       fs.String("env", defaultPath, description),
		defaultPath: defaultPath,
	}
}

// Load applies the first env file found, overriding the process
// environment. OverrideVars win over --env. When --env was not given and no
// file exists the result is ErrNoEnvFile, which callers treat as "use the
// process environment".
func (l *EnvLoader) Load() (string, error) {
	if l == nil {
		return "", errors.New("env loader is nil")
	}

	for _, name := range OverrideVars {
		if path := strings.TrimSpace(os.Getenv(name)); path != "" {
			if err := godotenv.Overload(path); err != nil {
				return "", fmt.Errorf("load %s=%s: %w", name, path, err)
			}
			return path, nil
		}
	}

	requested := l.defaultPath
	if l.value != nil && strings.TrimSpace(*l.value) != "" {
		requested = strings.TrimSpace(*l.value)
	}
	for _, candidate := range l.candidates(requested) {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if err := godotenv.Overload(candidate); err != nil {
			return "", fmt.Errorf("parse env file %s: %w", candidate, err)
		}
		return candidate, nil
	}

	if l.flagSet() {
		return "", fmt.Errorf("load env file %s: %w", requested, ErrNoEnvFile)
	}
	return "", ErrNoEnvFile
}

// candidates lists requested, its base name in the working directory and the
// default path, without duplicates.
func (l *EnvLoader) candidates(requested string) []string {
	out := []string{requested}
	for _, extra := range []string{filepath.Base(requested), l.defaultPath} {
		if extra != "" && !slices.Contains(out, extra) {
			out = append(out, extra)
		}
	}
	return out
}

func (l *EnvLoader) flagSet() bool {
	set := false
	if l.fs != nil {
		l.fs.Visit(func(f *flag.Flag) { set = set || f.Name == "env" })
	}
	return set
}
