package envutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFileType is returned when the file extension is not recognized.
var ErrUnknownFileType = errors.New("env file doesn't have a known file suffix")

// LoadEnvFile reads variables from a file and returns them as a map.
// The format is chosen by extension:
//   - .env files are parsed by godotenv (KEY=VALUE lines, comments, quoting, export)
//   - .yml/.yaml files must carry an "env" mapping of string values
func LoadEnvFile(path string) (map[string]string, error) {
	name := strings.ToLower(filepath.Base(path))

	switch {
	case strings.HasSuffix(name, ".env"):
		return godotenv.Read(path)
	case strings.HasSuffix(name, ".yml"), strings.HasSuffix(name, ".yaml"):
		return loadYAMLFile(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFileType, filepath.Base(path))
	}
}

// WithEnvFile loads path and returns a context carrying its variables as overrides.
func WithEnvFile(ctx context.Context, path string) (context.Context, error) {
	vars, err := LoadEnvFile(path)
	if err != nil {
		return ctx, err
	}

	return WithOverrides(ctx, vars), nil
}

type yamlEnvFile struct {
	Env map[string]string `yaml:"env"`
}

func loadYAMLFile(path string) (map[string]string, error) {
	bts, err := os.ReadFile(path) // #nosec G304 -- path is the intended file to load
	if err != nil {
		return nil, err
	}

	var env yamlEnvFile

	if err := yaml.Unmarshal(bts, &env); err != nil {
		return nil, err
	}

	return env.Env, nil
}
