package main

import "errors"

// invalidArgError marks a bad path or a malformed config file:
// spec.md §7's "invalid argument" error kind, exit code 1.
type invalidArgError struct {
	err error
}

func (e *invalidArgError) Error() string { return e.err.Error() }
func (e *invalidArgError) Unwrap() error { return e.err }

// errCompileFailed marks that at least one file failed to compile
// (I/O or structural failure, spec.md §7 kinds 1 and 3), exit code 2.
var errCompileFailed = errors.New("one or more files failed to compile")

func exitCodeFor(err error) int {
	var argErr *invalidArgError
	if errors.As(err, &argErr) {
		return 1
	}
	return 2
}
