package architecture_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulesPrefix = "keyloop/internal/modules/"

var layers = []string{"adapter/in", "adapter/out", "usecase", "service", "domain", "port/in", "port/out", "dto"}

// importsUnder calls fn for every module import of every non-test file below root.
func importsUnder(t *testing.T, root string, fn func(file, importPath string)) {
	t.Helper()
	fset := token.NewFileSet()
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		node, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, imp := range node.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			if strings.HasPrefix(importPath, modulesPrefix) {
				fn(filepath.ToSlash(path), importPath)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
}

func TestHexagonalLayerImports(t *testing.T) {
	t.Parallel()
	importsUnder(t, filepath.Join("..", "modules"), func(file, importPath string) {
		module, layer := moduleName(file), detectLayer(file)
		if module == "" || layer == "" {
			return
		}
		if violatesLayerRule(module, layer, importPath) {
			t.Errorf("forbidden import in %s (%s): %s", file, layer, importPath)
		}
	})
}

func TestUIOnlyTalksToModuleContracts(t *testing.T) {
	t.Parallel()
	importsUnder(t, filepath.Join("..", "ui"), func(file, importPath string) {
		if !isPortIn(importPath) && !isDTO(importPath) {
			t.Errorf("ui file %s imports module internals: %s", file, importPath)
		}
	})
}

func TestDomainStaysFreeOfOtherModules(t *testing.T) {
	t.Parallel()
	importsUnder(t, filepath.Join("..", "modules"), func(file, importPath string) {
		if detectLayer(file) != "domain" {
			return
		}
		if !strings.HasPrefix(importPath, modulesPrefix+moduleName(file)+"/") {
			t.Errorf("domain file %s depends on another module: %s", file, importPath)
		}
	})
}

func moduleName(path string) string {
	parts := strings.Split(path, "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] == "modules" {
			return parts[i+1]
		}
	}
	return ""
}

func detectLayer(path string) string {
	for _, layer := range layers {
		if strings.Contains(path, "/"+layer+"/") {
			return layer
		}
	}
	return ""
}

func isPortIn(path string) bool {
	return strings.Contains(path, "/port/in/") || strings.HasSuffix(path, "/port/in")
}

func isDTO(path string) bool {
	return strings.Contains(path, "/dto/") || strings.HasSuffix(path, "/dto")
}

func violatesLayerRule(module, layer, importPath string) bool {
	if !strings.HasPrefix(importPath, modulesPrefix+module+"/") {
		// other modules are reachable only through their contracts
		return !isPortIn(importPath) && !isDTO(importPath)
	}
	switch layer {
	case "adapter/in":
		return !isPortIn(importPath) && !isDTO(importPath)
	case "usecase":
		return strings.Contains(importPath, "/adapter/")
	case "service":
		return strings.Contains(importPath, "/adapter/") || strings.Contains(importPath, "/usecase/")
	case "domain", "dto", "port/in", "port/out":
		return strings.Contains(importPath, "/adapter/") || strings.Contains(importPath, "/usecase/") || strings.Contains(importPath, "/service/")
	default:
		return false
	}
}
