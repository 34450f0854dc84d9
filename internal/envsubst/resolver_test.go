package envsubst_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybersonic/lucli/internal/envsubst"
	"github.com/cybersonic/lucli/internal/luerr"
)

type fakeSecrets struct {
	values map[string][]byte
}

func (f *fakeSecrets) Get(_ context.Context, name string) ([]byte, bool, error) {
	v, ok := f.values[name]
	return v, ok, nil
}

func TestResolve_PrimaryTokenWithDefault(t *testing.T) {
	dir := t.TempDir()
	r, err := envsubst.New(dir, &fakeSecrets{})
	require.NoError(t, err)

	tree := map[string]any{
		"host": "#env:HTTP_HOST:-localhost#",
	}
	require.NoError(t, r.Resolve(context.Background(), tree))
	assert.Equal(t, "localhost", tree["host"])
}

func TestResolve_PrimaryTokenMissingIsFatal(t *testing.T) {
	dir := t.TempDir()
	r, err := envsubst.New(dir, &fakeSecrets{})
	require.NoError(t, err)

	tree := map[string]any{"host": "#env:DOES_NOT_EXIST#"}
	err = r.Resolve(context.Background(), tree)
	require.Error(t, err)
	assert.ErrorIs(t, err, luerr.KindOf(luerr.MissingVariable))
}

func TestResolve_DotEnvTakesPrecedenceOverProcessEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HTTP_HOST=from-dotenv\n"), 0o600))
	t.Setenv("HTTP_HOST", "from-process-env")

	r, err := envsubst.New(dir, &fakeSecrets{})
	require.NoError(t, err)

	tree := map[string]any{"host": "#env:HTTP_HOST#"}
	require.NoError(t, r.Resolve(context.Background(), tree))
	assert.Equal(t, "from-dotenv", tree["host"])
}

func TestResolve_ProtectedZonesAreLeftAlone(t *testing.T) {
	dir := t.TempDir()
	r, err := envsubst.New(dir, &fakeSecrets{})
	require.NoError(t, err)

	tree := map[string]any{
		"configuration": map[string]any{
			"datasource": "${LUCEE_PW}",
		},
		"jvm": map[string]any{
			"minMemory":      "#env:MIN_MEM:-512m#",
			"additionalArgs": []any{"-Dpw=${LUCEE_PW}"},
		},
	}
	require.NoError(t, r.Resolve(context.Background(), tree))

	cfg := tree["configuration"].(map[string]any)
	assert.Equal(t, "${LUCEE_PW}", cfg["datasource"])

	jvm := tree["jvm"].(map[string]any)
	assert.Equal(t, "512m", jvm["minMemory"]) // not protected, substituted normally
	args := jvm["additionalArgs"].([]any)
	assert.Equal(t, "-Dpw=${LUCEE_PW}", args[0])
}

func TestResolve_SecretToken(t *testing.T) {
	dir := t.TempDir()
	secrets := &fakeSecrets{values: map[string][]byte{"db-password": []byte("hunter2")}}
	r, err := envsubst.New(dir, secrets)
	require.NoError(t, err)

	tree := map[string]any{"admin": map[string]any{"password": "${secret:db-password}"}}
	require.NoError(t, r.Resolve(context.Background(), tree))
	assert.Equal(t, "hunter2", tree["admin"].(map[string]any)["password"])
}

func TestResolve_MissingSecretIsFatal(t *testing.T) {
	dir := t.TempDir()
	r, err := envsubst.New(dir, &fakeSecrets{})
	require.NoError(t, err)

	tree := map[string]any{"admin": map[string]any{"password": "${secret:missing}"}}
	err = r.Resolve(context.Background(), tree)
	require.Error(t, err)
	assert.ErrorIs(t, err, luerr.KindOf(luerr.MissingSecret))
}

func TestResolve_LegacySyntaxStillResolves(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PORT_OVERRIDE", "9999")
	r, err := envsubst.New(dir, &fakeSecrets{})
	require.NoError(t, err)

	tree := map[string]any{"host": "${PORT_OVERRIDE}"}
	require.NoError(t, r.Resolve(context.Background(), tree))
	assert.Equal(t, "9999", tree["host"])
}
