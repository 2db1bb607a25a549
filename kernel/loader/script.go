package loader

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"sort"
	"strconv"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// allowedScriptImports keeps scripts deterministic: no wall clock, no
// math/rand, no filesystem or network.
var allowedScriptImports = map[string]bool{
	"errors":  true,
	"fmt":     true,
	"math":    true,
	"sort":    true,
	"strconv": true,
	"strings": true,
}

// ScriptNamespace exposes the top-level declarations of a Go source file,
// interpreted with yaegi, as loader attributes. A script such as
//
//	package sensors
//
//	import "math"
//
//	func Ramp(tick int64) float64 { return math.Min(float64(tick), 10) }
//	var Domains = []string{"default", "net"}
//
// registered as "scripts" resolves "scripts:Ramp" to a func(int64) float64.
type ScriptNamespace struct {
	pkg    string
	names  map[string]bool
	interp *interp.Interpreter
}

// NewScriptNamespace parses and evaluates src. Imports outside
// allowedScriptImports are rejected before evaluation.
func NewScriptNamespace(src string) (*ScriptNamespace, error) {
	file, err := parser.ParseFile(token.NewFileSet(), "script.go", src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	if err := validateScriptImports(file); err != nil {
		return nil, err
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("loading stdlib symbols: %w", err)
	}
	if _, err := i.Eval(src); err != nil {
		return nil, fmt.Errorf("evaluating script package %s: %w", file.Name.Name, err)
	}

	return &ScriptNamespace{
		pkg:    file.Name.Name,
		names:  topLevelNames(file),
		interp: i,
	}, nil
}

// ReadScript returns the source of the script at path.
func ReadScript(path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading script: %w", err)
	}
	return string(src), nil
}

// LoadScriptFile reads path and calls NewScriptNamespace.
func LoadScriptFile(path string) (*ScriptNamespace, error) {
	src, err := ReadScript(path)
	if err != nil {
		return nil, err
	}
	ns, err := NewScriptNamespace(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ns, nil
}

// Package returns the script's package name.
func (s *ScriptNamespace) Package() string { return s.pkg }

// Lookup implements Namespace. Only names declared at the top level of the
// script resolve; anything else (including stdlib symbols) does not.
func (s *ScriptNamespace) Lookup(attr string) (any, bool) {
	if !s.names[attr] {
		return nil, false
	}
	v, err := s.interp.Eval(s.pkg + "." + attr)
	if err != nil || !v.IsValid() || !v.CanInterface() {
		return nil, false
	}
	return v.Interface(), true
}

// Attributes implements Namespace.
func (s *ScriptNamespace) Attributes() []string {
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validateScriptImports(file *ast.File) error {
	var forbidden []string
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			return fmt.Errorf("bad import %s: %w", imp.Path.Value, err)
		}
		if !allowedScriptImports[path] {
			forbidden = append(forbidden, path)
		}
	}
	if len(forbidden) > 0 {
		return fmt.Errorf("forbidden imports in script: %v", forbidden)
	}
	return nil
}

func topLevelNames(file *ast.File) map[string]bool {
	names := make(map[string]bool)
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil {
				names[d.Name.Name] = true
			}
		case *ast.GenDecl:
			if d.Tok == token.IMPORT || d.Tok == token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				if vs, ok := spec.(*ast.ValueSpec); ok {
					for _, n := range vs.Names {
						if n.Name != "_" {
							names[n.Name] = true
						}
					}
				}
			}
		}
	}
	return names
}
