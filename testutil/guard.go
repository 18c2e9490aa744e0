// Package testutil provides test helpers that pin the layering of the park
// engine: the domain stays dependency free and transports never reach the
// storage drivers directly.
package testutil

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// Module is the import path prefix of this repository.
const Module = "parkcore"

// Predicate reports whether an import path is forbidden.
type Predicate func(importPath string) bool

// AnyOf combines predicates.
func AnyOf(preds ...Predicate) Predicate {
	return func(path string) bool {
		for _, p := range preds {
			if p(path) {
				return true
			}
		}
		return false
	}
}

// InternalImport matches packages under parkcore/internal.
func InternalImport(path string) bool {
	return strings.HasPrefix(path, Module+"/internal/")
}

// ThirdPartyImport matches any import path that is neither standard library
// nor part of this module.
func ThirdPartyImport(path string) bool {
	if path == Module || strings.HasPrefix(path, Module+"/") {
		return false
	}
	first, _, _ := strings.Cut(path, "/")
	return strings.Contains(first, ".")
}

// StorageDriverImport matches the persistence drivers and the database
// clients behind them.
func StorageDriverImport(path string) bool {
	for _, prefix := range []string{
		Module + "/internal/infra/",
		"modernc.org/sqlite",
		"github.com/jackc/pgx",
		"github.com/dgraph-io/badger",
		"database/sql",
	} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// TransportImport matches HTTP, websocket and CLI frameworks.
func TransportImport(path string) bool {
	for _, prefix := range []string{
		"github.com/gin-gonic/",
		"github.com/gorilla/websocket",
		"github.com/spf13/cobra",
		"net/http",
	} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// AssertNoDirectImports scans the non-test .go files in dir and fails if any
// import satisfies forbidden.
func AssertNoDirectImports(t testing.TB, dir string, forbidden Predicate, reason string) {
	t.Helper()
	viols, err := DirectImportViolations(dir, forbidden)
	if err != nil {
		t.Fatalf("scan %s: %v", dir, err)
	}
	if len(viols) > 0 {
		t.Fatalf("forbidden direct imports (%s):\n%s", reason, strings.Join(viols, "\n"))
	}
}

// DirectImportViolations lists "import (in file)" entries in dir that
// satisfy forbidden. Build tags are not evaluated.
func DirectImportViolations(dir string, forbidden Predicate) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	var viols []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		if err != nil {
			return nil, err
		}
		for _, imp := range file.Imports {
			path := strings.Trim(imp.Path.Value, `"`)
			if forbidden(path) {
				viols = append(viols, fmt.Sprintf("%s (in %s)", path, name))
			}
		}
	}
	return viols, nil
}

// AssertNoTransitiveDependency loads pattern relative to dir and fails if
// any package in its dependency graph satisfies forbidden.
func AssertNoTransitiveDependency(t testing.TB, dir, pattern string, forbidden Predicate, reason string) {
	t.Helper()
	viols, err := TransitiveViolations(dir, pattern, forbidden)
	if err != nil {
		t.Fatalf("load %s: %v", pattern, err)
	}
	if len(viols) > 0 {
		t.Fatalf("forbidden transitive dependencies (%s):\n%s", reason, strings.Join(viols, "\n"))
	}
}

// TransitiveViolations walks the import graph of pattern and returns the
// sorted set of forbidden package paths reached from it.
func TransitiveViolations(dir, pattern string, forbidden Predicate) ([]string, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports | packages.NeedDeps,
		Dir:  dir,
	}
	roots, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, err
	}
	var loadErrs []string
	found := map[string]struct{}{}
	packages.Visit(roots, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			loadErrs = append(loadErrs, e.Error())
		}
		if forbidden(pkg.PkgPath) {
			found[pkg.PkgPath] = struct{}{}
		}
	})
	if len(loadErrs) > 0 {
		return nil, fmt.Errorf("package errors: %s", strings.Join(loadErrs, "; "))
	}
	viols := make([]string, 0, len(found))
	for p := range found {
		viols = append(viols, p)
	}
	sort.Strings(viols)
	return viols, nil
}
