package script

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/nfrund/parley/internal/actions"
	"github.com/spf13/afero"
)

// Loader keeps the registry in step with the scripted actions declared in a
// directory.
type Loader struct {
	fs       afero.Fs
	dir      string
	engine   *Engine
	registry *actions.Registry
	logger   *slog.Logger

	mu     sync.Mutex
	loaded []string
}

// NewLoader creates a loader that registers scripted actions into registry.
func NewLoader(fs afero.Fs, dir string, engine *Engine, registry *actions.Registry, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		fs:       fs,
		dir:      dir,
		engine:   engine,
		registry: registry,
		logger:   logger.With("component", "script-loader", "dir", dir),
	}
}

// Dir returns the directory the loader reads.
func (l *Loader) Dir() string {
	return l.dir
}

// Loaded returns the ids currently registered from scripts.
func (l *Loader) Loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.loaded)
}

// Load reads the manifest, compiles every script and swaps the scripted
// actions in the registry. Entries whose script fails to compile are logged
// and skipped. A manifest that cannot be read leaves the registry untouched.
func (l *Loader) Load() (int, error) {
	manifest, err := LoadManifest(l.fs, l.dir)
	if err != nil {
		return 0, err
	}

	descriptors := make([]actions.Descriptor, 0, len(manifest.Actions))
	for _, spec := range manifest.Actions {
		d, err := l.build(spec)
		if err != nil {
			l.logger.Warn("Skipping scripted action", "action", spec.ID, "error", err)
			continue
		}
		descriptors = append(descriptors, d)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]string, len(descriptors))
	for i, d := range descriptors {
		ids[i] = d.ID
	}
	for _, id := range l.loaded {
		if !slices.Contains(ids, id) {
			l.registry.Remove(id)
		}
	}
	for _, d := range descriptors {
		l.registry.Register(d)
	}
	l.loaded = ids

	l.logger.Info("Loaded scripted actions", "count", len(ids))
	return len(ids), nil
}

// Unload removes every scripted action from the registry.
func (l *Loader) Unload() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range l.loaded {
		l.registry.Remove(id)
	}
	l.loaded = nil
}

func (l *Loader) build(spec ActionSpec) (actions.Descriptor, error) {
	path := spec.scriptPath(l.dir)
	src, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return actions.Descriptor{}, NewScriptError(ErrorTypeNotFound, spec.ID, spec.Script, "failed to read script", err)
	}
	prog, err := l.engine.Compile(spec.ID, spec.Script, src)
	if err != nil {
		return actions.Descriptor{}, err
	}

	d := actions.Descriptor{
		ID:     spec.ID,
		Icon:   spec.Icon,
		Label:  spec.Label,
		Color:  spec.Color,
		Order:  spec.Order,
		Groups: make([]actions.Group, len(spec.Groups)),
	}
	for i, g := range spec.Groups {
		d.Groups[i] = actions.Group(g)
	}
	if len(spec.Contexts) > 0 {
		d.Contexts = make([]actions.Context, len(spec.Contexts))
		for i, c := range spec.Contexts {
			d.Contexts[i] = actions.Context(c)
		}
	}

	logger := l.logger.With("action", spec.ID)
	d.Condition = func(ec *actions.EvalContext) bool {
		out, err := prog.Run(context.Background(), ec)
		if err != nil {
			logger.Warn("Scripted condition failed", "error", err)
			return false
		}
		return out.Visible
	}
	d.Action = func(ctx context.Context, ec *actions.EvalContext) (*actions.Result, error) {
		out, err := prog.Run(ctx, ec)
		if err != nil {
			return nil, err
		}
		return &actions.Result{
			Toast: out.Toast,
			Data:  map[string]any{"script": spec.Script},
		}, nil
	}
	return d, nil
}
