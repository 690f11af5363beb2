package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	if err := SetLevel("warn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if level.Level() != zapcore.WarnLevel {
		t.Errorf("expected warn, got %s", level.Level())
	}
	if err := SetLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
	if level.Level() != zapcore.WarnLevel {
		t.Error("an invalid level must not change the current one")
	}
}

func TestForReturnsLogger(t *testing.T) {
	Init("test")
	if For("cart") == nil {
		t.Fatal("expected a logger")
	}
}
