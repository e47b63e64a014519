package model

import (
	"fmt"
	"sort"
	"strings"
)

// Summary accumulates the source files consumed and the target files written
// during a run, for the final report printed to the user.
type Summary struct {
	sourceDir string
	action    string
	sources   map[string]struct{}
	targets   map[string]struct{}
}

// NewSummary creates a Summary for a run reading from sourceDir. The action
// label describes what the run did with the sources, e.g. "copy" or
// "convert".
func NewSummary(sourceDir, action string) *Summary {
	return &Summary{
		sourceDir: sourceDir,
		action:    action,
		sources:   make(map[string]struct{}),
		targets:   make(map[string]struct{}),
	}
}

// AddSource registers a consumed source path.
func (s *Summary) AddSource(path string) {
	s.sources[path] = struct{}{}
}

// AddTarget registers a written target path.
func (s *Summary) AddTarget(path string) {
	s.targets[path] = struct{}{}
}

// HasSource reports whether path was registered as a source.
func (s *Summary) HasSource(path string) bool {
	_, ok := s.sources[path]
	return ok
}

// HasTarget reports whether path was registered as a target.
func (s *Summary) HasTarget(path string) bool {
	_, ok := s.targets[path]
	return ok
}

func sortedPaths(set map[string]struct{}) []string {
	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// String renders the final human report.
func (s *Summary) String() string {
	if len(s.sources) == 0 {
		return fmt.Sprintf(`$$$ Summary $$$
---------------
No CSV found in %q.
---------------
Finished.`, s.sourceDir)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "$$$ Summary $$$\n---------------\n")
	fmt.Fprintf(&b, "%d files done (action: %s).\n---------------\n", len(s.sources), s.action)
	b.WriteString("Sources:\n")
	for _, p := range sortedPaths(s.sources) {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	b.WriteString("Targets:\n")
	for _, p := range sortedPaths(s.targets) {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	b.WriteString("Finished.")
	return b.String()
}
