package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    zapcore.Level
		wantErr bool
	}{
		{"prod defaults to info", Options{Env: "prod"}, zapcore.InfoLevel, false},
		{"local defaults to debug", Options{Env: "local"}, zapcore.DebugLevel, false},
		{"level override", Options{Env: "prod", Level: "error"}, zapcore.ErrorLevel, false},
		{"quiet raises floor", Options{Env: "local", Quiet: true}, zapcore.WarnLevel, false},
		{"quiet keeps higher level", Options{Env: "prod", Level: "error", Quiet: true}, zapcore.ErrorLevel, false},
		{"unknown env", Options{Env: "staging"}, 0, true},
		{"bad level", Options{Env: "prod", Level: "loud"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLogger: %v", err)
			}
			if !l.Core().Enabled(tt.want) {
				t.Errorf("expected %v enabled", tt.want)
			}
			if tt.want > zapcore.DebugLevel && l.Core().Enabled(tt.want-1) {
				t.Errorf("expected %v disabled", tt.want-1)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	l := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), l)

	if FromContext(ctx) != l {
		t.Error("expected stored logger")
	}
	if FromContext(context.Background()) == nil {
		t.Error("expected nop logger, got nil")
	}

	fallback := zap.NewNop()
	if FromContextOr(context.Background(), fallback) != fallback {
		t.Error("expected fallback")
	}
	if FromContextOr(ctx, fallback) != l {
		t.Error("expected stored logger over fallback")
	}
}
