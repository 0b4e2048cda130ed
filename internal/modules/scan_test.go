package modules

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func containsAll(got []string, want []string) []string {
	set := make(map[string]bool, len(got))
	for _, g := range got {
		set[g] = true
	}
	var missing []string
	for _, w := range want {
		if !set[w] {
			missing = append(missing, w)
		}
	}
	return missing
}

func TestScanImportsGo(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "handler_test.go", `package web

import (
	"testing"

	"sift/internal/engine"
	eng "sift/internal/report"
)

import "fmt"

func TestHandler(t *testing.T) {}
`)

	imports, supported, err := ScanImports(path)
	if err != nil {
		t.Fatal(err)
	}
	if !supported {
		t.Fatal("go files should be supported")
	}
	if missing := containsAll(imports, []string{"testing", "sift/internal/engine", "sift/internal/report", "fmt"}); missing != nil {
		t.Errorf("missing imports %v in %v", missing, imports)
	}
}

func TestScanImportsPython(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "test_app.py", `import os
import core.auth
from web.handlers import login
from . import helpers

def test_login():
    pass
`)

	imports, supported, err := ScanImports(path)
	if err != nil {
		t.Fatal(err)
	}
	if !supported {
		t.Fatal("python files should be supported")
	}
	if missing := containsAll(imports, []string{"os", "core.auth", "web.handlers", ".helpers"}); missing != nil {
		t.Errorf("missing imports %v in %v", missing, imports)
	}
}

func TestScanImportsPythonRelative(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "test_rel.py", `from . import helpers, utils as u
from .. import lib
from ..models import user
from . import *
`)

	imports, _, err := ScanImports(path)
	if err != nil {
		t.Fatal(err)
	}
	if missing := containsAll(imports, []string{".helpers", ".utils", "..lib", "..models", "."}); missing != nil {
		t.Errorf("missing imports %v in %v", missing, imports)
	}
}

func TestScanImportsTypeScript(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.test.ts", `import { mount } from "./helpers";
import React from 'react';
const legacy = require("../legacy/util");
`)

	imports, supported, err := ScanImports(path)
	if err != nil {
		t.Fatal(err)
	}
	if !supported {
		t.Fatal("ts files should be supported")
	}
	if missing := containsAll(imports, []string{"./helpers", "react", "../legacy/util"}); missing != nil {
		t.Errorf("missing imports %v in %v", missing, imports)
	}
}

func TestScanImportsUnsupportedLanguage(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "spec.rb", `require "minitest"`)

	_, supported, err := ScanImports(path)
	if err != nil {
		t.Fatal(err)
	}
	if supported {
		t.Error("ruby should be unsupported")
	}
	if Supported(path) {
		t.Error("Supported should agree with ScanImports")
	}
}

func TestScanImportsMissingFile(t *testing.T) {
	_, supported, err := ScanImports(filepath.Join(t.TempDir(), "nope.go"))
	if err == nil {
		t.Error("expected error for missing file")
	}
	if !supported {
		t.Error("missing .go file is still a supported language")
	}
}

func TestScanImportsDeduplicates(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "test_dup.py", "import os\nimport os\n")

	imports, _, err := ScanImports(path)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, imp := range imports {
		if imp == "os" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("os imported %d times in result, expected 1", count)
	}
}
