package script

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the name of the manifest inside the script directory.
const ManifestFile = "actions.yaml"

// Manifest declares the scripted actions in a directory.
type Manifest struct {
	Actions []ActionSpec `yaml:"actions"`
}

// ActionSpec is one manifest entry.
type ActionSpec struct {
	ID       string   `yaml:"id" validate:"required"`
	Label    string   `yaml:"label" validate:"required"`
	Icon     string   `yaml:"icon"`
	Color    string   `yaml:"color" validate:"omitempty,oneof=alert warning success"`
	Order    int      `yaml:"order"`
	Groups   []string `yaml:"groups" validate:"dive,oneof=message menu"`
	Contexts []string `yaml:"contexts" validate:"dive,oneof=message message-mobile threads"`
	Script   string   `yaml:"script" validate:"required,endswith=.tengo"`
}

var validate = validator.New()

// LoadManifest reads the manifest in dir. A missing manifest yields an empty
// one. Entries that fail validation or repeat an id are logged and dropped.
func LoadManifest(fs afero.Fs, dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, NewScriptError(ErrorTypeManifest, "", path, "failed to read manifest", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, NewScriptError(ErrorTypeManifest, "", path, "failed to parse manifest", err)
	}

	seen := make(map[string]bool, len(m.Actions))
	valid := m.Actions[:0]
	for i, spec := range m.Actions {
		if err := validate.Struct(spec); err != nil {
			slog.Warn("Skipping invalid manifest entry", "index", i, "id", spec.ID, "error", err)
			continue
		}
		if seen[spec.ID] {
			slog.Warn("Skipping duplicate manifest entry", "index", i, "id", spec.ID)
			continue
		}
		seen[spec.ID] = true
		valid = append(valid, spec)
	}
	m.Actions = valid

	return &m, nil
}

func (s ActionSpec) scriptPath(dir string) string {
	return filepath.Join(dir, filepath.Clean("/"+s.Script))
}

func (s ActionSpec) String() string {
	return fmt.Sprintf("%s (%s)", s.ID, s.Script)
}
