package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"

	"github.com/cybersonic/lucli/internal/lock"
	"github.com/cybersonic/lucli/internal/luerr"
)

// ManifestFileName is the project manifest's on-disk filename.
const ManifestFileName = "lucee.json"

// ResolveOptions are the inputs to Loader.Resolve (§4.1 "Inputs").
type ResolveOptions struct {
	ProjectDir     string
	Environment    string // optional environment name
	BaseConfigPath string // optional external base configuration file
	Overrides      []Override
}

// Loader produces a validated, fully merged Manifest from on-disk
// project state and CLI inputs.
type Loader struct{}

// NewLoader returns a Loader. It holds no state; all inputs are passed
// to Resolve explicitly so multiple projects can be resolved
// concurrently without shared mutable state.
func NewLoader() *Loader {
	return &Loader{}
}

// Resolved is the output of Resolve: the decoded, validated Manifest
// plus the raw merged tree (used by EnvironmentResolver for
// protected-zone-aware substitution) and the project manifest's
// original ordered form (used by WriteBack).
type Resolved struct {
	Manifest *Manifest
	Tree     map[string]any
	Original *OrderedMap // nil if the project manifest file did not exist yet
}

// Resolve implements the five-step merge algorithm of §4.1.
func (l *Loader) Resolve(_ context.Context, opts ResolveOptions) (*Resolved, error) {
	tree := defaultTree()

	if opts.BaseConfigPath != "" {
		base, err := loadJSONTree(opts.BaseConfigPath)
		if err != nil {
			return nil, luerr.New(luerr.ManifestInvalid, luerr.WithCause(err),
				luerr.WithKeyPath("configurationFile"))
		}
		if tree, err = deepMerge(tree, base); err != nil {
			return nil, err
		}
	}

	manifestPath := filepath.Join(opts.ProjectDir, ManifestFileName)
	var original *OrderedMap
	if _, err := os.Stat(manifestPath); err == nil {
		projectTree, err := loadJSONTree(manifestPath)
		if err != nil {
			return nil, luerr.New(luerr.ManifestInvalid, luerr.WithCause(err))
		}
		if tree, err = deepMerge(tree, projectTree); err != nil {
			return nil, err
		}

		//nolint:gosec // G304: manifestPath is built from the project directory the CLI targets
		raw, err := os.ReadFile(manifestPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", manifestPath, err)
		}
		original = NewOrderedMap()
		if err := original.UnmarshalJSON(raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", manifestPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat %s: %w", manifestPath, err)
	}

	if opts.Environment != "" {
		envsRaw, _ := tree["environments"].(map[string]any)
		overlay, ok := envsRaw[opts.Environment].(map[string]any)
		if !ok {
			return nil, luerr.New(luerr.UnknownEnvironment,
				luerr.WithKeyPath("environments."+opts.Environment),
				luerr.WithRemedy("available environments: "+joinNames(AvailableEnvironments(tree))))
		}
		var err error
		if tree, err = deepMerge(tree, overlay); err != nil {
			return nil, err
		}
	}

	for _, ov := range opts.Overrides {
		setPath(tree, ov.Key, parseOverrideValue(ov.Value))
	}

	m, err := Decode(tree)
	if err != nil {
		return nil, err
	}

	if m.Name == "" {
		m.Name = filepath.Base(filepath.Clean(opts.ProjectDir))
	}

	if err := Finalize(m); err != nil {
		return nil, err
	}

	return &Resolved{Manifest: m, Tree: tree, Original: original}, nil
}

// Finalize auto-adjusts undefined secondary ports and validates m in
// place. Decode alone does neither, so callers that re-decode a
// Manifest after EnvironmentResolver substitutes placeholders into the
// same Tree Resolve returned must call Finalize on the result before
// using it, the same way Resolve does internally.
func Finalize(m *Manifest) error {
	applyPortDefaults(m)
	return Validate(m)
}

// Decode mapstructure-decodes a merged manifest tree into a Manifest,
// without applying port defaults or validation. Callers re-decode after
// EnvironmentResolver (C2) substitutes placeholders in place in the same
// Tree that Resolve returned, so the final Manifest reflects resolved
// values rather than literal `#env:`/`${...}` tokens.
func Decode(tree map[string]any) (*Manifest, error) {
	var m Manifest
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &m,
	})
	if err != nil {
		return nil, fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(tree); err != nil {
		return nil, luerr.New(luerr.ManifestInvalid, luerr.WithCause(err))
	}
	return &m, nil
}

// applyPortDefaults auto-adjusts undefined secondary ports based on the
// primary port, per the invariant in §3 ("the core enforces this by
// auto-adjusting undefined secondary ports based on the primary").
func applyPortDefaults(m *Manifest) {
	if m.ShutdownPort == 0 || m.ShutdownPort == m.Port {
		m.ShutdownPort = m.Port + 1
	}
	if m.HTTPSPort == 0 || m.HTTPSPort == m.Port || m.HTTPSPort == m.ShutdownPort {
		m.HTTPSPort = m.Port + 363 // conventional 8080->8443-style offset
	}
	if m.Monitoring.Enabled && (m.Monitoring.JMX.Port == 0 || m.Monitoring.JMX.Port == m.Port) {
		m.Monitoring.JMX.Port = m.Port + 1111
	}
}

// WriteBack persists the merged project-level overrides (not
// environment-specific ones) into the on-disk project manifest
// atomically, preserving key order where possible (§4.1 "Persistence").
func WriteBack(projectDir string, original *OrderedMap, overrides []Override) error {
	if len(overrides) == 0 {
		return nil
	}

	doc := original
	if doc == nil {
		doc = NewOrderedMap()
	}

	for _, ov := range overrides {
		doc.SetPath(ov.Key, parseOverrideValue(ov.Value))
	}

	data, err := doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	pretty, err := reindent(data)
	if err != nil {
		return fmt.Errorf("format manifest: %w", err)
	}

	path := filepath.Join(projectDir, ManifestFileName)
	return lock.AtomicWriteFile(path, pretty, 0o640)
}
