package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cybersonic/lucli/internal/envsubst"
	"github.com/cybersonic/lucli/internal/exec"
	"github.com/cybersonic/lucli/internal/imageregistry"
	"github.com/cybersonic/lucli/internal/manifest"
	"github.com/cybersonic/lucli/internal/materialize"
	"github.com/cybersonic/lucli/internal/process"
	"github.com/cybersonic/lucli/internal/registry"
	"github.com/cybersonic/lucli/internal/runtime"
	"github.com/cybersonic/lucli/internal/secrets"
)

// projectDir returns the current working directory, the implicit
// project root every `server`/`deps`/`modules` command operates on.
func projectDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return dir, nil
}

// requireSecretsStore resolves the store's encryption passphrase and
// returns a Store bound to it. Resolution (env var, interactive prompt,
// or device-bound fallback) happens once per command invocation, not
// eagerly in PersistentPreRunE, so commands that never touch secrets
// never pay for it.
func requireSecretsStore(ctx context.Context) (*secrets.Store, error) {
	home := HomeDirFromContext(ctx)
	storeDir := filepath.Join(home, "secrets")
	passphrase, err := secrets.ResolvePassphrase(ctx, storeDir, PrompterFromContext(ctx))
	if err != nil {
		return nil, err
	}
	return secrets.NewStore(home, passphrase), nil
}

// resolvedProject bundles the fully substituted Manifest its caller
// needs, alongside the registry Instance the server commands target
// and the raw inputs WriteBack needs to persist project-level overrides
// after a successful start.
type resolvedProject struct {
	manifest  *manifest.Manifest
	instance  *registry.Instance
	dir       string
	original  *manifest.OrderedMap
	overrides []manifest.Override
}

// startFlags are the manifest-overriding flags shared by every command
// that resolves a project (§4.1 "Inputs").
type startFlags struct {
	name       string
	env        string
	baseConfig string
	force      bool
	overrides  []string
}

func bindStartFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "override the instance name (default: manifest name, else directory name)")
	cmd.Flags().String("env", "", "select a named environment overlay from lucee.json")
	cmd.Flags().String("config", "", "external base configuration file merged before the project manifest")
	cmd.Flags().Bool("force", false, "reuse an instance name already claimed by a different project directory")
	cmd.Flags().StringArray("set", nil, "override a manifest key, e.g. --set jvm.maxMemory=1024m")
}

func readStartFlags(cmd *cobra.Command) (startFlags, error) {
	var f startFlags
	var err error
	if f.name, err = cmd.Flags().GetString("name"); err != nil {
		return f, err
	}
	if f.env, err = cmd.Flags().GetString("env"); err != nil {
		return f, err
	}
	if f.baseConfig, err = cmd.Flags().GetString("config"); err != nil {
		return f, err
	}
	if f.force, err = cmd.Flags().GetBool("force"); err != nil {
		return f, err
	}
	if f.overrides, err = cmd.Flags().GetStringArray("set"); err != nil {
		return f, err
	}
	return f, nil
}

// resolveProject runs the C1→C2→C4 pipeline: load and merge the
// manifest, substitute environment/secret placeholders, re-decode the
// substituted tree, then resolve the target Instance. It does not
// reserve the instance or start anything.
func resolveProject(cmd *cobra.Command, f startFlags) (*resolvedProject, error) {
	ctx := cmd.Context()

	dir, err := projectDir()
	if err != nil {
		return nil, err
	}

	env := f.env
	if env == "" {
		env = EnvNameFromContext(ctx)
	}

	overrides := make([]manifest.Override, 0, len(f.overrides))
	for _, kv := range f.overrides {
		key, value, ok := splitOverride(kv)
		if !ok {
			return nil, fmt.Errorf("invalid --set %q, expected key=value", kv)
		}
		overrides = append(overrides, manifest.Override{Key: key, Value: value})
	}

	loader := manifest.NewLoader()
	resolved, err := loader.Resolve(ctx, manifest.ResolveOptions{
		ProjectDir:     dir,
		Environment:    env,
		BaseConfigPath: f.baseConfig,
		Overrides:      overrides,
	})
	if err != nil {
		return nil, err
	}

	store, err := requireSecretsStore(ctx)
	if err != nil {
		return nil, err
	}

	sub, err := envsubst.New(dir, store)
	if err != nil {
		return nil, err
	}
	if err := sub.Resolve(ctx, resolved.Tree); err != nil {
		return nil, err
	}

	m, err := manifest.Decode(resolved.Tree)
	if err != nil {
		return nil, err
	}
	if m.Name == "" {
		m.Name = resolved.Manifest.Name
	}
	if err := manifest.Finalize(m); err != nil {
		return nil, err
	}

	if m.Runtime.Type == "external-container" && m.Runtime.CatalinaHome == "" {
		m.Runtime.CatalinaHome = os.Getenv("CATALINA_HOME")
	}

	reg := RegistryFromContext(ctx)
	inst, err := reg.Resolve(ctx, dir, m.Name, f.name, f.force)
	if err != nil {
		return nil, err
	}
	if env != "" {
		if err := reg.WriteEnvironmentMarker(inst, env); err != nil {
			return nil, err
		}
	}

	return &resolvedProject{
		manifest:  m,
		instance:  inst,
		dir:       dir,
		original:  resolved.Original,
		overrides: overrides,
	}, nil
}

// writeBackOverrides returns the project-level overrides WriteBack
// should persist for rp: the explicit --set overrides plus, when the
// project manifest did not exist yet, a synthetic "name" override so a
// fresh directory's first start still produces a lucee.json recording
// the name it fell back to (§4.1 "Persistence", §8 scenario 1).
func writeBackOverrides(rp *resolvedProject) []manifest.Override {
	if rp.original != nil {
		return rp.overrides
	}
	overrides := make([]manifest.Override, 0, len(rp.overrides)+1)
	overrides = append(overrides, manifest.Override{Key: "name", Value: rp.manifest.Name})
	overrides = append(overrides, rp.overrides...)
	return overrides
}

// splitOverride parses a `key=value` --set argument.
func splitOverride(kv string) (key, value string, ok bool) {
	for i := range kv {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:], true
		}
	}
	return "", "", false
}

// buildProvider constructs the RuntimeProvider variant the project's
// manifest selects (§4.5), wiring the engine cache directory and image
// registry client every variant potentially needs.
func buildProvider(ctx context.Context, m *manifest.Manifest) (runtime.Provider, error) {
	home := HomeDirFromContext(ctx)
	e := exec.New()
	images := imageregistry.NewClient(imageregistry.ClientConfig{})
	return runtime.New(m.Runtime.Type, home, e, images, m.Runtime.Variant)
}

// controllerFor builds the ProcessController for m's runtime variant.
func controllerFor(ctx context.Context, m *manifest.Manifest) (*process.Controller, error) {
	provider, err := buildProvider(ctx, m)
	if err != nil {
		return nil, err
	}
	return process.New(RegistryFromContext(ctx), provider), nil
}

// materializerFor constructs a Materializer rooted at LUCLI_HOME,
// gating HTTPS keystore regeneration behind the interactive prompter.
func materializerFor(ctx context.Context) *materialize.Materializer {
	return materialize.New(HomeDirFromContext(ctx), PrompterFromContext(ctx))
}
