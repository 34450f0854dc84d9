package cmd

import (
	"context"

	"github.com/cybersonic/lucli/internal/prompt"
	"github.com/cybersonic/lucli/internal/registry"
	"github.com/cybersonic/lucli/internal/settings"
)

type contextKey string

const (
	homeDirKey  contextKey = "homeDir"
	settingsKey contextKey = "settings"
	registryKey contextKey = "registry"
	prompterKey contextKey = "prompter"
	envNameKey  contextKey = "envName"
)

// WithHomeDir adds LUCLI_HOME to the context.
func WithHomeDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, homeDirKey, dir)
}

// HomeDirFromContext retrieves LUCLI_HOME from context.
func HomeDirFromContext(ctx context.Context) string {
	dir, _ := ctx.Value(homeDirKey).(string)
	return dir
}

// WithSettings adds the loaded user-wide settings to the context.
func WithSettings(ctx context.Context, s *settings.Settings) context.Context {
	return context.WithValue(ctx, settingsKey, s)
}

// SettingsFromContext retrieves the user-wide settings from context.
func SettingsFromContext(ctx context.Context) *settings.Settings {
	s, _ := ctx.Value(settingsKey).(*settings.Settings)
	return s
}

// WithRegistry adds the instance registry to the context.
func WithRegistry(ctx context.Context, reg *registry.Registry) context.Context {
	return context.WithValue(ctx, registryKey, reg)
}

// RegistryFromContext retrieves the instance registry from context.
func RegistryFromContext(ctx context.Context) *registry.Registry {
	reg, _ := ctx.Value(registryKey).(*registry.Registry)
	return reg
}

// WithPrompter adds the interactive prompter to the context.
func WithPrompter(ctx context.Context, p prompt.Prompter) context.Context {
	return context.WithValue(ctx, prompterKey, p)
}

// PrompterFromContext retrieves the interactive prompter from context.
func PrompterFromContext(ctx context.Context) prompt.Prompter {
	p, _ := ctx.Value(prompterKey).(prompt.Prompter)
	return p
}

// WithEnvName adds the preselected environment name (LUCLI_ENV) to the context.
func WithEnvName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, envNameKey, name)
}

// EnvNameFromContext retrieves the preselected environment name from context.
func EnvNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(envNameKey).(string)
	return name
}
