// Package materialize implements the ConfigMaterializer component: it
// turns a resolved Manifest into the concrete on-disk state an instance's
// RuntimeProvider needs in order to start — patched server/web
// descriptors, synthesized rewrite rules, merged engine configuration,
// a placed engine JAR, a JVM options script, and (when HTTPS is
// enabled) a self-signed keystore.
package materialize

import (
	"context"

	"github.com/cybersonic/lucli/internal/luerr"
	"github.com/cybersonic/lucli/internal/manifest"
	"github.com/cybersonic/lucli/internal/prompt"
	"github.com/cybersonic/lucli/internal/registry"
)

// DependencyMapping is one virtual-path → physical-path entry the
// engine configuration needs, computed by the dependency resolver from
// installed CFML dependencies.
type DependencyMapping struct {
	VirtualPath  string
	PhysicalPath string
}

// Materializer produces an instance's on-disk state from a Manifest.
type Materializer struct {
	luHome   string
	prompter prompt.Prompter
}

// New returns a Materializer rooted at luHome (LUCLI_HOME, for the
// /modules and /builtin engine mappings). prompter gates HTTPS keystore
// regeneration (§Open Question a) when the configured host has changed;
// with nil, a changed host regenerates without asking. An unchanged host
// never regenerates.
func New(luHome string, prompter prompt.Prompter) *Materializer {
	return &Materializer{luHome: luHome, prompter: prompter}
}

func (mz *Materializer) homeDir() string { return mz.luHome }

// Input bundles everything Materialize needs beyond the Manifest
// itself: the instance it is materializing into, the runtime's vendor
// tree (for server.xml/web.xml templates and the engine JAR source),
// and the dependency mappings C7 computed.
type Input struct {
	Instance   *registry.Instance
	VendorRoot string
	Mappings   []DependencyMapping
}

// Materialize runs all seven outputs in §4.6 order. Each step writes
// atomically (temp-then-rename via internal/lock.AtomicWriteFile), so a
// failure partway through leaves every previously-written file intact
// per the atomicity invariant; it does not roll back earlier steps.
func (mz *Materializer) Materialize(ctx context.Context, m *manifest.Manifest, in *Input) error {
	fail := func(step string, err error) error {
		return luerr.New(luerr.MaterializationFailed,
			luerr.WithInstance(in.Instance.Name),
			luerr.WithKeyPath(step),
			luerr.WithCause(err),
		)
	}

	if err := mz.patchServerXML(m, in); err != nil {
		return fail("server descriptor", err)
	}
	if err := mz.patchWebXML(m, in); err != nil {
		return fail("web descriptor", err)
	}
	if err := mz.synthesizeRewriteRules(m, in); err != nil {
		return fail("rewrite rules", err)
	}
	if err := mz.writeEngineConfig(m, in); err != nil {
		return fail("engine configuration", err)
	}
	if err := mz.placeEngineJAR(m, in); err != nil {
		return fail("engine jar", err)
	}
	if err := mz.writeJVMOptions(m, in); err != nil {
		return fail("jvm options", err)
	}
	if m.HTTPS.Enabled && m.HTTPS.Keystore == "" {
		if err := mz.ensureKeystore(ctx, m, in); err != nil {
			return fail("https keystore", err)
		}
	}
	return nil
}
