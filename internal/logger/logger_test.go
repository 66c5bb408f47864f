package logger

import (
	"testing"

	"github.com/samvad-hq/churl/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for name, want := range cases {
		if got := ParseLevel(name); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestInitSetsPackageLogger(t *testing.T) {
	defer func() { S = nil }()

	sugar, err := Init(&config.Config{AppName: "churl", LogLevel: "error"})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if sugar == nil || S != sugar {
		t.Fatalf("package logger not set")
	}
	if sugar.Desugar().Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("warn should be disabled at error level")
	}
	Global().InfoObj("ignored", "k", 1)
}

func TestHelpersWithoutInitAreNoops(t *testing.T) {
	S = nil
	InfoObj("msg", "key", 1)
	ErrorObj("msg", "key", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
