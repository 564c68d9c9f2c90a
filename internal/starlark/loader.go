// Package starlark loads Starlark function callbacks that rewrite the
// arguments of renamed SQL function calls.
//
// Every top-level function in a .star file of the functions directory
// becomes a callback named after the function. A callback receives the
// SQL text of the call's arguments as a list of strings and returns the
// new argument list:
//
//	def coalesce(args):
//	    return args + ["0"]
package starlark

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.starlark.net/starlark"
)

// Loader scans a directory for .star files and collects their functions.
type Loader struct {
	dir string
}

// NewLoader creates a loader for the specified directory.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Function is one callback defined in a .star file.
type Function struct {
	Name string
	Path string
	fn   starlark.Callable
}

// Load executes every .star file in the directory and returns its public
// functions keyed by lower-cased name. A missing directory yields no
// functions. Names starting with _ are private to their file.
func (l *Loader) Load() (map[string]*Function, error) {
	info, err := os.Stat(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to access functions directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("functions path is not a directory: %s", l.dir)
	}

	files, err := filepath.Glob(filepath.Join(l.dir, "*.star"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan functions directory: %w", err)
	}

	functions := make(map[string]*Function)
	for _, file := range files {
		found, err := l.loadFile(file)
		if err != nil {
			return nil, err
		}
		for _, fn := range found {
			key := strings.ToLower(fn.Name)
			if prev, ok := functions[key]; ok {
				return nil, &LoadError{
					File:    file,
					Message: fmt.Sprintf("function %s already defined in %s", fn.Name, filepath.Base(prev.Path)),
				}
			}
			functions[key] = fn
		}
	}
	return functions, nil
}

// loadFile executes a single .star file and extracts its functions.
func (l *Loader) loadFile(path string) ([]*Function, error) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from filepath.Glob within the functions directory
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("failed to read file: %v", err)}
	}

	thread := &starlark.Thread{
		Name:  "load:" + filepath.Base(path),
		Print: func(_ *starlark.Thread, _ string) {},
	}
	globals, err := starlark.ExecFile(thread, path, content, nil) //nolint:staticcheck // SA1019: will migrate to ExecFileOptions later
	if err != nil {
		return nil, &LoadError{File: path, Message: fmt.Sprintf("Starlark execution error: %v", err)}
	}
	// Callbacks run on many threads at once.
	globals.Freeze()

	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)

	var functions []*Function
	for _, name := range names {
		if strings.HasPrefix(name, "_") {
			continue
		}
		fn, ok := globals[name].(starlark.Callable)
		if !ok {
			continue
		}
		functions = append(functions, &Function{Name: name, Path: path, fn: fn})
	}
	return functions, nil
}

// LoadError represents an error loading a functions file.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("functions/%s: %s", filepath.Base(e.File), e.Message)
}
