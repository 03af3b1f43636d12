package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// ErrInjected is the default error returned by injected faults.
var ErrInjected = errors.New("injected fault")

// Fault describes a failure to inject into file operations.
type Fault struct {
	// FailAfterBytes fails writes once this many bytes have been written.
	// Zero means writes never fail.
	FailAfterBytes int64

	// FailOnSync makes Sync return the fault error.
	FailOnSync bool

	// FailOnClose makes Close return the fault error.
	FailOnClose bool

	// Err is the error to return. Defaults to ErrInjected.
	Err error
}

// FaultyFS wraps a FileSystem and injects faults into files whose name
// contains a registered substring.
type FaultyFS struct {
	fs FileSystem

	mu    sync.Mutex
	rules map[string]Fault
}

// NewFaultyFS returns a FaultyFS wrapping fs. A nil fs wraps Default.
func NewFaultyFS(fs FileSystem) *FaultyFS {
	if fs == nil {
		fs = Default
	}
	return &FaultyFS{fs: fs, rules: make(map[string]Fault)}
}

// AddRule injects fault into every file whose name contains substr.
func (f *FaultyFS) AddRule(substr string, fault Fault) {
	if fault.Err == nil {
		fault.Err = ErrInjected
	}
	f.mu.Lock()
	f.rules[substr] = fault
	f.mu.Unlock()
}

func (f *FaultyFS) faultFor(name string) (Fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for substr, fault := range f.rules {
		if strings.Contains(name, substr) {
			return fault, true
		}
	}
	return Fault{}, false
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	file, err := f.fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	if fault, ok := f.faultFor(name); ok {
		return &faultyFile{File: file, fault: fault}, nil
	}
	return file, nil
}

func (f *FaultyFS) Remove(name string) error             { return f.fs.Remove(name) }
func (f *FaultyFS) Rename(oldpath, newpath string) error { return f.fs.Rename(oldpath, newpath) }

type faultyFile struct {
	File
	fault   Fault
	written int64
}

func (f *faultyFile) Write(p []byte) (int, error) {
	if f.fault.FailAfterBytes > 0 && f.written+int64(len(p)) > f.fault.FailAfterBytes {
		return 0, f.fault.Err
	}
	n, err := f.File.Write(p)
	f.written += int64(n)
	return n, err
}

func (f *faultyFile) Sync() error {
	if f.fault.FailOnSync {
		return f.fault.Err
	}
	return f.File.Sync()
}

func (f *faultyFile) Close() error {
	if f.fault.FailOnClose {
		f.File.Close()
		return f.fault.Err
	}
	return f.File.Close()
}
