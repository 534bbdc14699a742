package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomHandler_Handle(t *testing.T) {
	tests := []struct {
		name    string
		log     func(l *slog.Logger)
		want    []string
		notWant []string
	}{
		{
			name: "economy info",
			log: func(l *slog.Logger) {
				l.Info("Price cycle completed", slog.String("type", "eco"), slog.Float64("price", 0.0112))
			},
			want:    []string{"[WAGUS]", "[INFO]", "[ECO]", "Price cycle completed", "price=0.0112"},
			notWant: []string{"type="},
		},
		{
			name: "untyped defaults to system",
			log: func(l *slog.Logger) {
				l.Warn("Using defaults")
			},
			want: []string{"[WARN]", "[SYS]", "Using defaults"},
		},
		{
			name: "error folds into message",
			log: func(l *slog.Logger) {
				l.Error("Failed to persist", slog.String("type", "db"), slog.Any("error", errors.New("disk full")))
			},
			want:    []string{"[ERROR]", "[DB]", "Failed to persist", ": disk full"},
			notWant: []string{"error="},
		},
		{
			name: "status suffix",
			log: func(l *slog.Logger) {
				l.Info("HTTP request processed", slog.String("type", "api"), slog.Int("status", 200))
			},
			want:    []string{"[API]", "[Status: 200]"},
			notWant: []string{"status="},
		},
		{
			name: "type from handler attrs",
			log: func(l *slog.Logger) {
				l.With(slog.String("type", "cmd")).Info("Command executed", slog.String("command", "simulate"))
			},
			want: []string{"[CMD]", "command=simulate"},
		},
		{
			name: "groups prefix keys",
			log: func(l *slog.Logger) {
				l.WithGroup("cycle").Info("Observed", slog.Int("n", 3))
			},
			want: []string{"cycle.n=3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(slog.New(NewHandler("WAGUS", &buf, slog.LevelDebug)))

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("Handle() got = %q, want it to contain %q", out, w)
				}
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, out, nw)
			}
		})
	}
}

func TestCustomHandler_Filters(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewHandler("WAGUS", &buf, slog.LevelInfo))

	l.Debug("below level")
	l.Info("locking rest bucket")
	assert.Empty(t, buf.String())
}

func TestCustomHandler_NoColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler("WAGUS", &buf, nil)).Info("plain")
	assert.NotContains(t, buf.String(), "\033[")
}
