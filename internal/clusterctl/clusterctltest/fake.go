// Package clusterctltest provides a scripted clusterctl.Runner for tests.
package clusterctltest

import (
	"context"
	"strings"
	"sync"

	"github.com/perdasilva/stubuniverse/internal/clusterctl"
)

type HandlerFunc func(args []string) clusterctl.Result

type response struct {
	prefix  string
	results []clusterctl.Result
	handler HandlerFunc
}

var _ clusterctl.Runner = &FakeRunner{}

// FakeRunner answers commands by the longest registered prefix of the joined
// argument list. Scripted results are consumed in order and the last one
// repeats. Unmatched commands exit with 127.
type FakeRunner struct {
	mu        sync.Mutex
	responses []*response
	calls     [][]string
}

func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

func (f *FakeRunner) On(prefix string, results ...clusterctl.Result) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, &response{prefix: prefix, results: results})
	return f
}

func (f *FakeRunner) OnFunc(prefix string, handler HandlerFunc) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, &response{prefix: prefix, handler: handler})
	return f
}

func (f *FakeRunner) Run(_ context.Context, args ...string) (clusterctl.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, append([]string(nil), args...))
	line := strings.Join(args, " ")

	var match *response
	for _, r := range f.responses {
		if strings.HasPrefix(line, r.prefix) && (match == nil || len(r.prefix) > len(match.prefix)) {
			match = r
		}
	}
	switch {
	case match == nil:
		return clusterctl.Result{ExitCode: 127, Stderr: "unexpected command: " + line}, nil
	case match.handler != nil:
		return match.handler(args), nil
	case len(match.results) == 0:
		return clusterctl.Result{}, nil
	}

	result := match.results[0]
	if len(match.results) > 1 {
		match.results = match.results[1:]
	}
	return result, nil
}

// Calls returns every command line seen so far.
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		lines = append(lines, strings.Join(c, " "))
	}
	return lines
}

// CallsWithPrefix returns the command lines starting with prefix.
func (f *FakeRunner) CallsWithPrefix(prefix string) []string {
	var lines []string
	for _, line := range f.Calls() {
		if strings.HasPrefix(line, prefix) {
			lines = append(lines, line)
		}
	}
	return lines
}
