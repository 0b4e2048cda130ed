package runner

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"sift/internal/engine"
)

var (
	goTestFunc = regexp.MustCompile(`^func\s+(Test[A-Za-z0-9_]*)\s*\(`)

	pyTestClass = regexp.MustCompile(`^class\s+(Test[A-Za-z0-9_]*)\b`)
	pyTestFunc  = regexp.MustCompile(`^(\s*)def\s+(test_[A-Za-z0-9_]*)\s*\(`)

	jsTestCall = regexp.MustCompile(`(?:^|[\s;(])(?:it|test)\s*\(\s*['"]([^'"]+)['"]`)
)

// Collect extracts the test items declared in file. Item IDs are
// root-relative with forward slashes, e.g. "web/test_app.py::test_login"
// or "web/test_app.py::TestLogin::test_ok" for class-scoped items.
func Collect(root, file string) ([]engine.Item, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = file
	}
	prefix := filepath.ToSlash(rel)

	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var items []engine.Item
	add := func(scope, name string) {
		id := prefix + "::" + name
		if scope != "" {
			id = prefix + "::" + scope + "::" + name
		}
		items = append(items, engine.Item{ID: id, Path: file})
	}

	ext := strings.ToLower(filepath.Ext(file))
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	// currentClass tracks the enclosing python test class; a def at
	// indent zero leaves it.
	currentClass := ""

	for scanner.Scan() {
		line := scanner.Text()
		switch ext {
		case ".go":
			if m := goTestFunc.FindStringSubmatch(line); m != nil {
				add("", m[1])
			}
		case ".py", ".pyx":
			if m := pyTestClass.FindStringSubmatch(line); m != nil {
				currentClass = m[1]
				continue
			}
			if m := pyTestFunc.FindStringSubmatch(line); m != nil {
				if m[1] == "" {
					currentClass = ""
					add("", m[2])
				} else if currentClass != "" {
					add(currentClass, m[2])
				} else {
					add("", m[2])
				}
				continue
			}
			// Any other top-level statement ends the class body.
			if len(line) > 0 && !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") &&
				!strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "@") {
				currentClass = ""
			}
		case ".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs":
			for _, m := range jsTestCall.FindAllStringSubmatch(line, -1) {
				add("", m[1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// CollectAll collects items across files, preserving file order.
func CollectAll(root string, files []string) ([]engine.Item, error) {
	var items []engine.Item
	for _, file := range files {
		fileItems, err := Collect(root, file)
		if err != nil {
			return nil, err
		}
		items = append(items, fileItems...)
	}
	return items, nil
}
