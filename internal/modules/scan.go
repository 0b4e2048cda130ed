package modules

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// languagePattern defines import-extraction patterns for one language
type languagePattern struct {
	extensions []string
	patterns   []*regexp.Regexp
}

var importPatterns = []languagePattern{
	{
		// Go
		extensions: []string{".go"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^\s*import\s+"([^"]+)"`),
			// Lines inside an import block: optional alias then "path"
			regexp.MustCompile(`^\s*(?:[\w.]+\s+)?"([^"]+)"\s*$`),
		},
	},
	{
		// Python
		extensions: []string{".py", ".pyx"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^\s*from\s+([^\s]+)\s+import`),
			regexp.MustCompile(`^\s*import\s+([^\s,;#]+)`),
		},
	},
	{
		// TypeScript / JavaScript
		extensions: []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`import\s+.*?from\s+['"]([^'"]+)['"]`),
			regexp.MustCompile(`export\s+.*?from\s+['"]([^'"]+)['"]`),
			regexp.MustCompile(`require\s*\(\s*['"]([^'"]+)['"]\s*\)`),
			regexp.MustCompile(`import\s*\(\s*['"]([^'"]+)['"]\s*\)`),
		},
	},
}

var (
	pyFromImportTail = regexp.MustCompile(`\bimport\s+(.+)$`)
	pyIdent          = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// fromImportNames extracts the imported names from a python
// "from X import a, b as c" line. Unparseable names (e.g. "*") yield nil.
func fromImportNames(line string) []string {
	m := pyFromImportTail.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	var names []string
	for _, part := range strings.Split(strings.TrimSuffix(strings.TrimSpace(m[1]), ")"), ",") {
		fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(part), "("))
		if len(fields) == 0 || !pyIdent.MatchString(fields[0]) {
			return nil
		}
		names = append(names, fields[0])
	}
	return names
}

func patternsFor(path string) ([]*regexp.Regexp, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, lp := range importPatterns {
		for _, e := range lp.extensions {
			if ext == e {
				return lp.patterns, true
			}
		}
	}
	return nil, false
}

// Supported reports whether imports can be extracted from path's language.
// Unsupported files must be treated as potentially affected by callers.
func Supported(path string) bool {
	_, ok := patternsFor(path)
	return ok
}

// ScanImports extracts the import strings from a source file, as written
// except that python "from . import x" lines expand to ".x" per imported
// name. The boolean result is false when the file's language has no
// patterns.
func ScanImports(path string) ([]string, bool, error) {
	pats, ok := patternsFor(path)
	if !ok {
		return nil, false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, true, err
	}
	defer f.Close()

	seen := make(map[string]bool)
	var imports []string

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		for _, pat := range pats {
			for _, m := range pat.FindAllStringSubmatch(line, -1) {
				imp := strings.TrimSpace(m[1])
				if imp == "" || seen[imp] {
					continue
				}
				// "from . import x" names its targets after the import
				// keyword; expand to ".x" so each resolves on its own.
				if strings.Trim(imp, ".") == "" {
					expanded := false
					for _, name := range fromImportNames(line) {
						target := imp + name
						if !seen[target] {
							seen[target] = true
							imports = append(imports, target)
						}
						expanded = true
					}
					if expanded {
						continue
					}
				}
				seen[imp] = true
				imports = append(imports, imp)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, true, err
	}

	return imports, true, nil
}
