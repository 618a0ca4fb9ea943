package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasbasham/formjson"
)

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "form", cfg.Selector)
	assert.False(t, cfg.Encoding.IgnoreDeepKey)
	assert.True(t, cfg.Encoding.Compact)
	assert.Equal(t, formjson.DefaultMaxIndex, cfg.Encoding.MaxIndex)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Listen)
	assert.Equal(t, "/encode", cfg.Server.Path)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_LoadFromYAML(t *testing.T) {
	yamlContent := `
selector: "#signup"
encoding:
  ignore_deep_key: true
  compact: false
  max_index: 50
output:
  indent: "  "
server:
  listen: ":9000"
log:
  level: debug
`
	path := filepath.Join(t.TempDir(), "formjson.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "#signup", cfg.Selector)
	assert.True(t, cfg.Encoding.IgnoreDeepKey)
	assert.False(t, cfg.Encoding.Compact)
	assert.Equal(t, 50, cfg.Encoding.MaxIndex)
	assert.Equal(t, "  ", cfg.Output.Indent)
	assert.Equal(t, ":9000", cfg.Server.Listen)
	// Unset keys keep their defaults.
	assert.Equal(t, "/encode", cfg.Server.Path)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestConfig_LoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("encoding: [unclosed"), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	negative := filepath.Join(dir, "negative.yml")
	require.NoError(t, os.WriteFile(negative, []byte("encoding:\n  max_index: -1\n"), 0o644))
	_, err = LoadConfig(negative)
	assert.ErrorContains(t, err, "max_index")
}

func TestConfig_Validate(t *testing.T) {
	cfg := NewConfig()
	cfg.Log.Level = "loud"
	assert.Error(t, cfg.Validate())

	cfg = NewConfig()
	cfg.Server.Path = "encode"
	assert.Error(t, cfg.Validate())

	cfg = NewConfig()
	cfg.Selector = "  "
	assert.Error(t, cfg.Validate())
}

func TestConfig_EncodeOptions(t *testing.T) {
	values := formjson.NewValues()
	values.Add("a.b", "1")
	values.Add("tags[0]", "")
	values.Add("tags[1]", "x")

	cfg := NewConfig()
	got, err := formjson.Marshal(values, cfg.EncodeOptions()...)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":{"b":"1"},"tags":["x"]}`, string(got))

	cfg.Encoding.Compact = false
	got, err = formjson.Marshal(values, cfg.EncodeOptions()...)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":{"b":"1"},"tags":["","x"]}`, string(got))

	cfg.Encoding.IgnoreDeepKey = true
	got, err = formjson.Marshal(values, cfg.EncodeOptions()...)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a.b":"1","tags[0]":"","tags[1]":"x"}`, string(got))
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".formjson.yml"), []byte("selector: form\n"), 0o644))

	chdir(t, nested)
	found := FindConfigFile()
	// t.TempDir may sit behind a symlink, so compare resolved paths.
	want, err := filepath.EvalSymlinks(filepath.Join(dir, ".formjson.yml"))
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(found)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
