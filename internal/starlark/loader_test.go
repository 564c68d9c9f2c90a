package starlark

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStar(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoader_Load(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T) string
		wantNames []string
		wantNil   bool
		errSubstr string
	}{
		{
			name:     "empty directory",
			setupDir: func(t *testing.T) string { return t.TempDir() },
		},
		{
			name:     "non-existent directory",
			setupDir: func(*testing.T) string { return "/nonexistent/path/to/functions" },
			wantNil:  true,
		},
		{
			name: "not a directory",
			setupDir: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "functions")
				require.NoError(t, os.WriteFile(path, []byte("not a dir"), 0o644))
				return path
			},
			errSubstr: "not a directory",
		},
		{
			name: "public functions across files",
			setupDir: func(t *testing.T) string {
				dir := t.TempDir()
				writeStar(t, dir, "dates.star", `
def str_to_date(args):
    return args + ["'%Y-%m-%d'"]

def _helper(args):
    return args

FORMAT = "%Y"
`)
				writeStar(t, dir, "nulls.star", `
def Coalesce(args):
    return args + ["0"]
`)
				writeStar(t, dir, "README.md", "ignored")
				return dir
			},
			wantNames: []string{"coalesce", "str_to_date"},
		},
		{
			name: "syntax error",
			setupDir: func(t *testing.T) string {
				dir := t.TempDir()
				writeStar(t, dir, "bad.star", "def broken(:\n")
				return dir
			},
			errSubstr: "functions/bad.star",
		},
		{
			name: "duplicate function",
			setupDir: func(t *testing.T) string {
				dir := t.TempDir()
				writeStar(t, dir, "a.star", "def f(args):\n    return args\n")
				writeStar(t, dir, "b.star", "def F(args):\n    return args\n")
				return dir
			},
			errSubstr: "already defined in a.star",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			functions, err := NewLoader(tt.setupDir(t)).Load()
			if tt.errSubstr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, functions)
				return
			}

			var names []string
			for name := range functions {
				names = append(names, name)
			}
			assert.ElementsMatch(t, tt.wantNames, names)
		})
	}
}

func TestLoadError_Error(t *testing.T) {
	err := &LoadError{File: "/project/functions/dates.star", Message: "boom"}
	assert.Equal(t, "functions/dates.star: boom", err.Error())
}
