// Package compiler wires TK, ST (via translator), and IW together to
// translate a single source file, and resolves a CLI path argument
// into the list of .jack files a directory or file path names.
package compiler

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/libklein/jackc/internal/config"
	"github.com/libklein/jackc/internal/tokenizer"
	"github.com/libklein/jackc/internal/translator"
	"github.com/libklein/jackc/internal/vmwriter"
)

const (
	sourceExt = ".jack"
	outputExt = ".vm"
)

// OutputPath returns the sibling .vm path for a .jack source path.
func OutputPath(sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	return sourcePath[:len(sourcePath)-len(ext)] + outputExt
}

// CompileFile translates one source file, writing the .vm file named
// by OutputPath beside it. trace may be nil to disable verbose tracing.
func CompileFile(sourcePath string, cfg config.Config, trace *log.Logger) (outputPath string, err error) {
	in, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("compiler: open %q for reading: %w", sourcePath, err)
	}
	defer in.Close()

	tk, err := tokenizer.New(in)
	if err != nil {
		return "", fmt.Errorf("compiler: tokenize %q: %w", sourcePath, err)
	}

	outputPath = OutputPath(sourcePath)
	out, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return outputPath, fmt.Errorf("compiler: open %q for writing: %w", outputPath, err)
	}
	defer out.Close()

	w := vmwriter.New(out)
	tr := translator.New(tk, w, cfg.ArrayTempSlot, trace)

	if err := tr.Compile(); err != nil {
		return outputPath, fmt.Errorf("compiler: %q: %w", sourcePath, err)
	}

	return outputPath, nil
}

// CollectSourceFiles resolves a CLI path argument (a single .jack file
// or a directory) into the ordered list of .jack files to compile.
// Directory traversal is non-recursive, per spec.md §6.
func CollectSourceFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("compiler: cannot stat %q: %w", path, err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("compiler: cannot read directory %q: %w", path, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != sourceExt {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}
	return files, nil
}
