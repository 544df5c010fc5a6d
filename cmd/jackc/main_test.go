package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetFlags() {
	configPath = ""
	jobsFlag = 0
	verbose = false
}

func TestRun_CompilesSingleFileSuccessfully(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "Main.jack")
	assert.Nil(t, os.WriteFile(srcPath, []byte(`class Main { function void main() { return; } }`), 0644))

	var out, errOut bytes.Buffer
	code := run(&out, &errOut, []string{srcPath})

	assert.Equal(t, 0, code)
	assert.Equal(t, "", errOut.String())

	got, err := os.ReadFile(filepath.Join(dir, "Main.vm"))
	assert.Nil(t, err)
	assert.Equal(t, "function Main.main 0\npush constant 0\nreturn\n", string(got))
}

func TestRun_NonexistentPathIsExitCodeOne(t *testing.T) {
	resetFlags()
	var out, errOut bytes.Buffer
	code := run(&out, &errOut, []string{filepath.Join(t.TempDir(), "missing.jack")})
	assert.Equal(t, 1, code)
}

func TestRun_StructuralFailureIsExitCodeTwo(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "Bad.jack")
	assert.Nil(t, os.WriteFile(srcPath, []byte("class { }"), 0644))

	var out, errOut bytes.Buffer
	code := run(&out, &errOut, []string{srcPath})
	assert.Equal(t, 2, code)
}

func TestRun_DirectoryModeCompilesEveryJackFile(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	assert.Nil(t, os.WriteFile(filepath.Join(dir, "Main.jack"), []byte(`class Main { function void main() { return; } }`), 0644))
	assert.Nil(t, os.WriteFile(filepath.Join(dir, "Square.jack"), []byte(`class Square { function void draw() { return; } }`), 0644))

	var out, errOut bytes.Buffer
	code := run(&out, &errOut, []string{dir})
	assert.Equal(t, 0, code)

	_, err := os.Stat(filepath.Join(dir, "Main.vm"))
	assert.Nil(t, err)
	_, err = os.Stat(filepath.Join(dir, "Square.vm"))
	assert.Nil(t, err)
}

func TestRun_JobsFlagUsesConcurrentPathWithSameResult(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	assert.Nil(t, os.WriteFile(filepath.Join(dir, "Main.jack"), []byte(`class Main { function void main() { return; } }`), 0644))
	assert.Nil(t, os.WriteFile(filepath.Join(dir, "Square.jack"), []byte(`class Square { function void draw() { return; } }`), 0644))

	var out, errOut bytes.Buffer
	code := run(&out, &errOut, []string{"--jobs", "4", dir})
	assert.Equal(t, 0, code)

	got, err := os.ReadFile(filepath.Join(dir, "Main.vm"))
	assert.Nil(t, err)
	assert.Equal(t, "function Main.main 0\npush constant 0\nreturn\n", string(got))
}

func TestRun_InvalidConfigFileIsExitCodeOne(t *testing.T) {
	resetFlags()
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "Main.jack")
	assert.Nil(t, os.WriteFile(srcPath, []byte(`class Main { function void main() { return; } }`), 0644))

	cfgPath := filepath.Join(dir, "bad.yaml")
	assert.Nil(t, os.WriteFile(cfgPath, []byte("jobs: 0\n"), 0644))

	var out, errOut bytes.Buffer
	code := run(&out, &errOut, []string{"--config", cfgPath, srcPath})
	assert.Equal(t, 1, code)
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, 1, exitCodeFor(&invalidArgError{err: os.ErrNotExist}))
	assert.Equal(t, 2, exitCodeFor(errCompileFailed))
}
