package logger

import (
	"errors"
	"testing"
)

func TestErrorWrapsCause(t *testing.T) {
	SetLevel("error")
	defer SetLevel("info")

	cause := errors.New("connection refused")
	log := New("TEST")

	tests := []struct {
		msg  string
		args []interface{}
		want string
	}{
		{"Failed to connect", nil, "Failed to connect: connection refused"},
		{"Failed to connect: %v", nil, "Failed to connect: connection refused"},
		{"Failed to connect to %s: %v", []interface{}{"db"}, "Failed to connect to db: connection refused"},
	}
	for _, tt := range tests {
		err := log.Error(tt.msg, cause, tt.args...)
		if err.Error() != tt.want {
			t.Errorf("Error(%q) = %q, want %q", tt.msg, err.Error(), tt.want)
		}
		if !errors.Is(err, cause) {
			t.Errorf("Error(%q) does not wrap the cause", tt.msg)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]int{
		"debug":   LevelDebug,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"chatty":  LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %d, want %d", in, got, want)
		}
	}
}
