package testutil

import (
	"fmt"
	"sync"
)

// StubLauncher records opened and revealed paths instead of touching the
// desktop. Paths in FailPaths produce an error from OpenFile.
type StubLauncher struct {
	mu        sync.Mutex
	Opened    []string
	Revealed  []string
	FailPaths map[string]bool
}

func NewStubLauncher() *StubLauncher {
	return &StubLauncher{FailPaths: make(map[string]bool)}
}

// FailOn makes subsequent OpenFile calls for absPath return an error.
func (l *StubLauncher) FailOn(absPath string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.FailPaths[absPath] = true
}

func (l *StubLauncher) OpenFile(absPath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.FailPaths[absPath] {
		return fmt.Errorf("no application available for %s", absPath)
	}
	l.Opened = append(l.Opened, absPath)
	return nil
}

func (l *StubLauncher) Reveal(absPath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Revealed = append(l.Revealed, absPath)
	return nil
}

// OpenedPaths returns a copy of the recorded OpenFile calls.
func (l *StubLauncher) OpenedPaths() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.Opened...)
}
