package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// Labeler produces a footer label for every page by evaluating a JavaScript
// expression with page and pages bound, for example
//
//	"Page " + page + " of " + pages
//
// A nil Labeler produces no labels.
type Labeler struct {
	log  *zap.Logger
	prog *goja.Program

	mu sync.Mutex
	vm *goja.Runtime
}

// NewLabeler compiles expr. An empty expression yields a nil Labeler.
func NewLabeler(log *zap.Logger, expr string) (*Labeler, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	prog, err := goja.Compile("page_label", expr, true)
	if err != nil {
		return nil, fmt.Errorf("page label: %w", err)
	}
	l := &Labeler{log: log.Named("label"), prog: prog, vm: goja.New()}
	l.registerConsole()
	return l, nil
}

// Label evaluates the expression for page out of pages. Undefined and null
// results give an empty label.
func (l *Labeler) Label(page, pages int) (string, error) {
	if l == nil {
		return "", nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.vm.Set("page", page); err != nil {
		return "", err
	}
	if err := l.vm.Set("pages", pages); err != nil {
		return "", err
	}
	v, err := l.vm.RunProgram(l.prog)
	if err != nil {
		return "", fmt.Errorf("page label for page %d: %w", page, err)
	}
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return "", nil
	}
	return v.String(), nil
}

// registerConsole routes console.log/warn/error to the logger so label
// scripts can be debugged.
func (l *Labeler) registerConsole() {
	console := l.vm.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		l.log.Debug(formatArgs(call.Arguments))
		return goja.Undefined()
	})
	_ = console.Set("warn", func(call goja.FunctionCall) goja.Value {
		l.log.Warn(formatArgs(call.Arguments))
		return goja.Undefined()
	})
	_ = console.Set("error", func(call goja.FunctionCall) goja.Value {
		l.log.Error(formatArgs(call.Arguments))
		return goja.Undefined()
	})
	_ = l.vm.Set("console", console)
}

func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, " ")
}
