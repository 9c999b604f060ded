package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/kaleido-lang/kaleido/pkg/ast"
)

// fileWatcher wraps fsnotify, forwarding events that may change the
// contents of one file. The parent directory is watched rather than the
// file itself because editors often replace the file on save.
type fileWatcher struct {
	w    *fsnotify.Watcher
	path string
	evC  chan string
	erC  chan error
}

func newFileWatcher(path string) (*fileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	fw := &fileWatcher{w: w, path: path, evC: make(chan string, 16), erC: make(chan error, 1)}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	go fw.loop()
	return fw, nil
}

func (fw *fileWatcher) loop() {
	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			if !sameFile(ev.Name, fw.path) || !isModify(ev.Op) {
				continue
			}
			fw.evC <- ev.Name
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			fw.erC <- err
		}
	}
}

func sameFile(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

// isModify reports whether an event means the file contents may have changed
func isModify(op fsnotify.Op) bool {
	return op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (fw *fileWatcher) Events() <-chan string { return fw.evC }
func (fw *fileWatcher) Errors() <-chan error  { return fw.erC }
func (fw *fileWatcher) Close() error          { return fw.w.Close() }

// doWatch parses the file once, then re-parses it on every change until the
// process is interrupted or the watcher fails.
func doWatch(filename string, out, errOut io.Writer) error {
	reportParse(filename, out, errOut)

	fw, err := newFileWatcher(filename)
	if err != nil {
		fmt.Fprintf(errOut, "kaleido: error watching %s: %v\n", filename, err)
		return err
	}
	defer fw.Close()

	fmt.Fprintf(errOut, "kaleido: watching %s\n", filename)
	for {
		select {
		case <-fw.Events():
			reportParse(filename, out, errOut)
		case err := <-fw.Errors():
			fmt.Fprintf(errOut, "kaleido: watch error: %v\n", err)
			return err
		}
	}
}

// reportParse parses once and prints the outcome, honoring -dast
func reportParse(filename string, out, errOut io.Writer) {
	program, err := parseInput(filename, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "kaleido: %s did not fully parse\n", filename)
		return
	}
	fmt.Fprintf(out, "kaleido: parsed %d declarations from %s\n", len(program.Decls), filename)
	if dAST {
		ast.NewPrinter(out).PrintProgram(program)
	}
}
