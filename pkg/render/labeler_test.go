package render

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLabeler(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{`"Page " + page + " of " + pages`, "Page 3 of 7"},
		{`page === pages ? "last" : ""`, ""},
		{`undefined`, ""},
		{`null`, ""},
		{`(function() { return "p" + (page * 2); })()`, "p6"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			lb, err := NewLabeler(zap.NewNop(), tt.expr)
			if err != nil {
				t.Fatalf("NewLabeler failed: %v", err)
			}
			got, err := lb.Label(3, 7)
			if err != nil {
				t.Fatalf("Label failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Label(3, 7) = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLabeler_Empty(t *testing.T) {
	lb, err := NewLabeler(nil, "  ")
	if err != nil || lb != nil {
		t.Fatalf("Expected a nil labeler, got %v, %v", lb, err)
	}
	if got, err := lb.Label(1, 1); got != "" || err != nil {
		t.Errorf("nil Labeler returned %q, %v", got, err)
	}
}

func TestLabeler_Errors(t *testing.T) {
	if _, err := NewLabeler(nil, `"unterminated`); err == nil {
		t.Error("Expected a compile error")
	}
	lb, err := NewLabeler(nil, `missing + 1`)
	if err != nil {
		t.Fatalf("NewLabeler failed: %v", err)
	}
	if _, err := lb.Label(1, 2); err == nil {
		t.Error("Expected a reference error")
	}
}

func TestLabeler_ConsoleLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	lb, err := NewLabeler(zap.New(core), `console.warn("page", page); "x"`)
	if err != nil {
		t.Fatalf("NewLabeler failed: %v", err)
	}
	if _, err := lb.Label(2, 4); err != nil {
		t.Fatalf("Label failed: %v", err)
	}
	if logs.FilterMessage("page 2").FilterLevelExact(zapcore.WarnLevel).Len() != 1 {
		t.Errorf("Expected console.warn to log, got %v", logs.All())
	}
}
