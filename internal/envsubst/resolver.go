// Package envsubst implements the EnvironmentResolver component: it
// walks a merged manifest tree and substitutes `#env:NAME[:-default]#`,
// legacy `${NAME[:-default]}`, and `${secret:NAME}` placeholders in
// every string value outside the two protected zones reserved for the
// downstream engine (§4.1 "Placeholder substitution").
package envsubst

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/cybersonic/lucli/internal/luerr"
	"github.com/cybersonic/lucli/internal/slogger"
)

// SecretLookup is the subset of C3 (SecretStore) the resolver needs to
// satisfy `${secret:NAME}` tokens. get(name) returns (value, found, err).
type SecretLookup interface {
	Get(ctx context.Context, name string) ([]byte, bool, error)
}

// Resolver substitutes placeholders sourced from a project's .env file,
// the process environment, and a SecretStore, in that precedence order.
type Resolver struct {
	dotenv  map[string]string
	secrets SecretLookup

	legacyWarnOnce sync.Once
}

// New loads the project's .env file (if any) and returns a Resolver
// bound to it and to secrets for `${secret:NAME}` lookups.
func New(projectDir string, secrets SecretLookup) (*Resolver, error) {
	dotenv, err := loadDotEnv(projectDir)
	if err != nil {
		return nil, err
	}
	return &Resolver{dotenv: dotenv, secrets: secrets}, nil
}

// Resolve substitutes every eligible string value in tree in place.
func (r *Resolver) Resolve(ctx context.Context, tree map[string]any) error {
	_, err := r.walk(ctx, tree, nil)
	return err
}

// walk recurses through tree, skipping descent into protected
// subtrees (the value is left untouched, tokens and all) and
// substituting every string it reaches elsewhere.
func (r *Resolver) walk(ctx context.Context, node any, path []string) (any, error) {
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			childPath := append(append([]string(nil), path...), k)
			if isProtected(childPath) {
				continue
			}
			newChild, err := r.walk(ctx, child, childPath)
			if err != nil {
				return nil, err
			}
			v[k] = newChild
		}
		return v, nil
	case []any:
		for i, child := range v {
			newChild, err := r.walk(ctx, child, path)
			if err != nil {
				return nil, err
			}
			v[i] = newChild
		}
		return v, nil
	case string:
		return r.substitute(ctx, v, path)
	default:
		return v, nil
	}
}

// isProtected reports whether path falls inside one of the two
// protected zones: the entire `configuration` block, or
// `jvm.additionalArgs` specifically (not the rest of `jvm`).
func isProtected(path []string) bool {
	if len(path) == 0 {
		return false
	}
	if path[0] == "configuration" {
		return true
	}
	if len(path) >= 2 && path[0] == "jvm" && path[1] == "additionalArgs" {
		return true
	}
	return false
}

// substitute applies secret, primary, then legacy token substitution
// to a single string value, in that order (secret tokens never collide
// with the other two grammars).
func (r *Resolver) substitute(ctx context.Context, s string, path []string) (string, error) {
	keyPath := strings.Join(path, ".")

	s, err := r.substituteSecrets(ctx, s, keyPath)
	if err != nil {
		return "", err
	}

	s, err = r.substituteEnv(s, keyPath)
	if err != nil {
		return "", err
	}

	return r.substituteLegacy(ctx, s, keyPath)
}

func (r *Resolver) substituteSecrets(ctx context.Context, s, keyPath string) (string, error) {
	var outerErr error
	result := secretTokenRe.ReplaceAllStringFunc(s, func(tok string) string {
		if outerErr != nil {
			return tok
		}
		m := secretTokenRe.FindStringSubmatch(tok)
		name := m[1]

		value, ok, err := r.secrets.Get(ctx, name)
		if err != nil {
			outerErr = fmt.Errorf("resolve secret %q: %w", name, err)
			return tok
		}
		if !ok {
			outerErr = luerr.New(luerr.MissingSecret,
				luerr.WithKeyPath(keyPath),
				luerr.WithRemedy(fmt.Sprintf("lucli secrets put %s", name)))
			return tok
		}
		return string(value)
	})
	if outerErr != nil {
		return "", outerErr
	}
	return result, nil
}

func (r *Resolver) substituteEnv(s, keyPath string) (string, error) {
	var outerErr error
	result := envTokenRe.ReplaceAllStringFunc(s, func(tok string) string {
		if outerErr != nil {
			return tok
		}
		m := envTokenRe.FindStringSubmatch(tok)
		name, hasDefault, def := m[1], strings.Contains(tok, ":-"), m[2]

		if value, ok := r.lookup(name); ok {
			return value
		}
		if hasDefault {
			return def
		}
		outerErr = luerr.New(luerr.MissingVariable,
			luerr.WithKeyPath(keyPath),
			luerr.WithRemedy(fmt.Sprintf("set %s in .env or the process environment", name)))
		return tok
	})
	if outerErr != nil {
		return "", outerErr
	}
	return result, nil
}

// substituteLegacy honors `${NAME[:-default]}` with the same lookup
// precedence as the primary form, emitting a one-time deprecation
// warning per Resolver instance.
func (r *Resolver) substituteLegacy(ctx context.Context, s, keyPath string) (string, error) {
	if !legacyTokenRe.MatchString(s) {
		return s, nil
	}

	r.legacyWarnOnce.Do(func() {
		slogger.FromContext(ctx).Warn(
			"legacy ${VAR} placeholder syntax is deprecated, use #env:VAR# instead",
			"keyPath", keyPath)
	})

	var outerErr error
	result := legacyTokenRe.ReplaceAllStringFunc(s, func(tok string) string {
		if outerErr != nil {
			return tok
		}
		m := legacyTokenRe.FindStringSubmatch(tok)
		name, hasDefault, def := m[1], strings.Contains(tok, ":-"), m[2]

		if value, ok := r.lookup(name); ok {
			return value
		}
		if hasDefault {
			return def
		}
		outerErr = luerr.New(luerr.MissingVariable,
			luerr.WithKeyPath(keyPath),
			luerr.WithRemedy(fmt.Sprintf("set %s in .env or the process environment", name)))
		return tok
	})
	if outerErr != nil {
		return "", outerErr
	}
	return result, nil
}

// lookup resolves a variable name against the .env file first, then
// the process environment (§4.2 "Sources in order of precedence").
func (r *Resolver) lookup(name string) (string, bool) {
	if v, ok := r.dotenv[name]; ok {
		return v, true
	}
	if v, ok := os.LookupEnv(name); ok {
		return v, true
	}
	return "", false
}
