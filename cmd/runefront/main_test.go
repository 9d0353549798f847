package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malphas-lang/runefront/internal/dispatch"
	"github.com/malphas-lang/runefront/internal/hash"
	"github.com/malphas-lang/runefront/internal/protocol"
)

const manifest = `[package]
name = "fixture"
version = "0.1.0"

[sources]
root = "."
include = ["**/*.rn"]

[output]
format = "json"
color = false
`

// project writes a manifest and the given sources into a temp dir and
// returns the manifest path.
func project(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "Rune.toml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))
	for rel, src := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(src), 0o644))
	}
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	cfg := project(t, nil)
	out, _, err := execute(t, "version", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "runefront version "+Version)
}

func TestInvalidLogLevel(t *testing.T) {
	cfg := project(t, nil)
	_, _, err := execute(t, "protocols", "--config", cfg, "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestTokens(t *testing.T) {
	cfg := project(t, map[string]string{"lib.rn": "mod a;"})
	src := filepath.Join(filepath.Dir(cfg), "lib.rn")

	out, _, err := execute(t, "tokens", "--config", cfg, src)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5, "header, three tokens and EOF")
	assert.Contains(t, lines[1], "MOD")
	assert.Contains(t, lines[2], `"a"`)
	assert.Contains(t, lines[4], "EOF")
}

func TestTokensReportsLexErrors(t *testing.T) {
	cfg := project(t, map[string]string{"lib.rn": "mod $a;"})
	src := filepath.Join(filepath.Dir(cfg), "lib.rn")

	_, stderr, err := execute(t, "tokens", "--config", cfg, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has errors")
	assert.NotEmpty(t, stderr)
}

func TestParse(t *testing.T) {
	cfg := project(t, map[string]string{"lib.rn": "#[cfg(test)] mod tests { mod inner; }"})
	src := filepath.Join(filepath.Dir(cfg), "lib.rn")

	out, _, err := execute(t, "parse", "--config", cfg, src)
	require.NoError(t, err)

	var outline struct {
		Kind     string `json:"kind"`
		Children []struct {
			Kind string `json:"kind"`
			Name string `json:"name"`
			ID   int    `json:"id"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &outline))
	assert.Equal(t, "File", outline.Kind)
	require.Len(t, outline.Children, 1)
	assert.Equal(t, "ItemMod", outline.Children[0].Kind)
	assert.Equal(t, "tests", outline.Children[0].Name)
	assert.Equal(t, 1, outline.Children[0].ID)

	out, _, err = execute(t, "parse", "--config", cfg, "--format", "yaml", src)
	require.NoError(t, err)
	assert.Contains(t, out, "kind: ItemMod")
}

func TestParseReportsErrors(t *testing.T) {
	cfg := project(t, map[string]string{"lib.rn": "mod a"})
	src := filepath.Join(filepath.Dir(cfg), "lib.rn")

	_, stderr, err := execute(t, "parse", "--config", cfg, src)
	require.Error(t, err)
	assert.Contains(t, stderr, "expected `{` or `;`")
}

func TestFmt(t *testing.T) {
	cfg := project(t, map[string]string{"lib.rn": "mod a{mod b;}"})
	src := filepath.Join(filepath.Dir(cfg), "lib.rn")

	out, _, err := execute(t, "fmt", "--config", cfg, src)
	require.NoError(t, err)
	assert.Equal(t, "mod a {\n    mod b;\n}\n", out)

	_, _, err = execute(t, "fmt", "--config", cfg, "--check", src)
	require.Error(t, err)

	_, _, err = execute(t, "fmt", "--config", cfg, "--write", src)
	require.NoError(t, err)
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "mod a {\n    mod b;\n}\n", string(data))

	out, _, err = execute(t, "fmt", "--config", cfg, "--check", src)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFmtKeepsComments(t *testing.T) {
	cfg := project(t, map[string]string{
		"lib.rn":  "// SPDX: keep me\nmod a{ // open\nmod b;}",
		"body.rn": "fn f() {\n    // in body\n}\n",
	})
	root := filepath.Dir(cfg)
	lib := filepath.Join(root, "lib.rn")
	body := filepath.Join(root, "body.rn")

	_, _, err := execute(t, "fmt", "--config", cfg, "--write", lib)
	require.NoError(t, err)
	data, err := os.ReadFile(lib)
	require.NoError(t, err)
	assert.Equal(t, "// SPDX: keep me\nmod a { // open\n    mod b;\n}\n", string(data))

	_, stderr, err := execute(t, "fmt", "--config", cfg, "--write", body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 files have errors")
	assert.Contains(t, stderr, "FORMAT_UNPLACED_COMMENT")
	data, err = os.ReadFile(body)
	require.NoError(t, err)
	assert.Equal(t, "fn f() {\n    // in body\n}\n", string(data), "file left untouched")
}

func TestCheck(t *testing.T) {
	cfg := project(t, map[string]string{
		"lib.rn":     "mod a; mod b { fn f() {} }",
		"sub/ok.rn":  "pub mod c;",
		"sub/bad.rn": "mod broken {",
	})

	out, stderr, err := execute(t, "check", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 files failed")
	assert.Contains(t, out, "checked 3 files")
	assert.Contains(t, out, "1 failed")
	assert.Contains(t, stderr, "sub/bad.rn")

	root := filepath.Dir(cfg)
	require.NoError(t, os.Remove(filepath.Join(root, "sub", "bad.rn")))
	out, _, err = execute(t, "check", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "checked 2 files")
	assert.Contains(t, out, "4 items, ok")
}

func TestCheckRootOverride(t *testing.T) {
	cfg := project(t, nil)
	other := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(other, "x.rn"), []byte("mod x;"), 0o644))

	out, _, err := execute(t, "check", "--config", cfg, "--root", other)
	require.NoError(t, err)
	assert.Contains(t, out, "checked 1 files")
}

func TestProtocols(t *testing.T) {
	cfg := project(t, nil)

	out, _, err := execute(t, "protocols", "--config", cfg, "--format", "json")
	require.NoError(t, err)

	var infos []protocol.Info
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, len(protocol.All()))
	assert.Equal(t, protocol.Get.Info(), infos[0])

	out, _, err = execute(t, "protocols", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "INDEX_GET")
	assert.Contains(t, out, protocol.IndexGet.Hash().String())
}

func TestHash(t *testing.T) {
	cfg := project(t, nil)

	add, err := dispatch.WithParams(dispatch.Hook(protocol.Add), dispatch.TypeParam("i64"))
	require.NoError(t, err)

	out, _, err := execute(t, "hash", "--config", cfg, "ADD", "--params", "i64", "--owner", "Vec")
	require.NoError(t, err)
	assert.Contains(t, out, "ADD<i64>")
	assert.Contains(t, out, add.Hash().String())
	assert.Contains(t, out, add.Key(hash.Ident("Vec")).String())

	push, err := dispatch.Name("push").ToInstance()
	require.NoError(t, err)
	out, _, err = execute(t, "hash", "--config", cfg, "push")
	require.NoError(t, err)
	assert.Contains(t, out, push.Hash().String())

	getX := dispatch.AssociatedFunctionName{Associated: dispatch.FieldFn(protocol.Get, "x")}
	out, _, err = execute(t, "hash", "--config", cfg, "GET", "--field", "x")
	require.NoError(t, err)
	assert.Contains(t, out, "GET.x")
	assert.Contains(t, out, getX.Hash().String())

	_, _, err = execute(t, "hash", "--config", cfg, "push", "--index", "0")
	require.Error(t, err)
}

func TestHashLookup(t *testing.T) {
	cfg := project(t, nil)

	out, _, err := execute(t, "hash", "--config", cfg, protocol.IndexSet.Hash().String())
	require.NoError(t, err)
	assert.Equal(t, "INDEX_SET\n", out)

	_, _, err = execute(t, "hash", "--config", cfg, "0x0000000000000000")
	require.Error(t, err)
}
