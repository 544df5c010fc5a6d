// Command jackc translates .jack source files into .vm target VM
// text, per spec.md §6.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/libklein/jackc/internal/compiler"
	"github.com/libklein/jackc/internal/config"
)

var version = "0.1.0"

var (
	configPath string
	jobsFlag   int
	verbose    bool
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr, os.Args[1:]))
}

func run(out, errOut io.Writer, args []string) int {
	rootCmd := newRootCmd(out, errOut)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errCompileFailed) {
			fmt.Fprintf(errOut, "jackc: %v\n", err)
		}
		return exitCodeFor(err)
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "jackc <path>",
		Short:         "jackc compiles .jack source files to stack-VM text",
		Long:          `jackc translates a .jack class file, or every .jack file in a directory, into sibling .vm files of target-VM instructions.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return compileCommand(args[0], out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a jackc.yaml compiler configuration file")
	rootCmd.Flags().IntVar(&jobsFlag, "jobs", 0, "directory-mode worker count (default from config, else 1)")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "trace each compiled class and subroutine to stderr")

	return rootCmd
}

func compileCommand(path string, out, errOut io.Writer) error {
	cfg, err := resolveConfig(path)
	if err != nil {
		return &invalidArgError{err: err}
	}
	if verbose {
		cfg.Verbose = true
	}
	if jobsFlag > 0 {
		cfg.Jobs = jobsFlag
	}

	files, err := compiler.CollectSourceFiles(path)
	if err != nil {
		return &invalidArgError{err: err}
	}

	var trace *log.Logger
	if cfg.Verbose {
		trace = log.New(errOut, "jackc: ", 0)
	}

	if cfg.Jobs <= 1 {
		return compileSequential(files, cfg, trace, out, errOut)
	}
	return compileConcurrent(files, cfg, trace, out, errOut)
}

// resolveConfig loads --config if given, else a jackc.yaml sitting
// next to path if present, else the documented defaults.
func resolveConfig(path string) (config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}

	candidate := sidecarConfigPath(path)
	if _, err := os.Stat(candidate); err == nil {
		return config.Load(candidate)
	}
	return config.Default(), nil
}

func sidecarConfigPath(path string) string {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return path + string(os.PathSeparator) + "jackc.yaml"
	}
	return filepath.Join(filepath.Dir(path), "jackc.yaml")
}

func compileSequential(files []string, cfg config.Config, trace *log.Logger, out, errOut io.Writer) error {
	var failed bool
	for _, file := range files {
		fmt.Fprintf(out, "compiling %q\n", file)
		outputPath, err := compiler.CompileFile(file, cfg, trace)
		if err != nil {
			fmt.Fprintf(errOut, "jackc: %v\n", err)
			failed = true
			continue
		}
		fmt.Fprintf(out, "wrote %q\n", outputPath)
	}
	if failed {
		return errCompileFailed
	}
	return nil
}

// compileConcurrent fans the file list out across a bounded worker
// pool. Every file owns its own tokenizer/symbol table/translator/
// writer, so no state is shared between workers (SPEC_FULL.md §5).
func compileConcurrent(files []string, cfg config.Config, trace *log.Logger, out, errOut io.Writer) error {
	var g errgroup.Group
	g.SetLimit(cfg.Jobs)

	type result struct {
		dst io.Writer
		msg string
	}
	results := make(chan result, len(files))
	for _, file := range files {
		file := file
		g.Go(func() error {
			outputPath, err := compiler.CompileFile(file, cfg, trace)
			if err != nil {
				results <- result{errOut, fmt.Sprintf("jackc: %v", err)}
				return err
			}
			results <- result{out, fmt.Sprintf("wrote %q", outputPath)}
			return nil
		})
	}

	err := g.Wait()
	close(results)
	for r := range results {
		fmt.Fprintln(r.dst, r.msg)
	}

	if err != nil {
		return errCompileFailed
	}
	return nil
}
