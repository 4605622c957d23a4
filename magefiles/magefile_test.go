package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountPatterns(t *testing.T) {
	counts, err := countPatterns(filepath.Join("..", patternsFile))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"therapeutic_areas": 16,
		"study_phases":      6,
		"treatment_types":   9,
		"populations":       5,
	}, counts)

	_, err = countPatterns(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCountGoLines(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("a.go", "package a\n\nfunc A() {}\n   \n")
	write("a_test.go", "package a\n\nfunc TestA() {}\n")
	write("_examples/x/x.go", "package x\nfunc X() {}\n")
	write(".hidden/h.go", "package h\n")
	write("notes.md", "not go\n")

	prod, test, err := countGoLines(root)
	require.NoError(t, err)
	assert.Equal(t, 2, prod)
	assert.Equal(t, 2, test)
}
