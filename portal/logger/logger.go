package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
)

type LogType string

const (
	TypeEconomy LogType = "ECO"
	TypeAPI     LogType = "API"
	TypeDB      LogType = "DB"
	TypeCommand LogType = "CMD"
	TypeSystem  LogType = "SYS"
	TypeError   LogType = "ERR"
)

// CustomHandler prints one colored line per record, tagged with the
// record's "type" attribute.
type CustomHandler struct {
	app    string
	out    io.Writer
	mu     *sync.Mutex
	opts   *slog.HandlerOptions
	color  bool
	attrs  []slog.Attr
	groups []string
}

func NewHandler(app string, out io.Writer, level slog.Leveler) *CustomHandler {
	if out == nil {
		out = os.Stdout
	}
	if level == nil {
		level = slog.LevelInfo
	}
	return &CustomHandler{
		app:   app,
		out:   out,
		mu:    &sync.Mutex{},
		opts:  &slog.HandlerOptions{Level: level},
		color: out == os.Stdout || out == os.Stderr,
	}
}

// New builds the process logger from the [log] config section. The "json"
// format swaps in the stock JSON handler for log shipping.
func New(app, format string, level slog.Level, addSource bool) *slog.Logger {
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     level,
			AddSource: addSource,
		})).With(slog.String("app", app))
	}
	return slog.New(NewHandler(app, os.Stdout, level))
}

func (h *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &nh
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	nh := *h
	nh.groups = append(append([]string(nil), h.groups...), name)
	return &nh
}

func (h *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	if shouldSkipLog(&r) {
		return nil
	}

	timestamp := r.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var levelColor, levelText string
	switch {
	case r.Level >= slog.LevelError:
		levelColor, levelText = colorRed, "ERROR"
	case r.Level >= slog.LevelWarn:
		levelColor, levelText = colorYellow, "WARN"
	case r.Level >= slog.LevelInfo:
		levelColor, levelText = colorGreen, "INFO"
	default:
		levelColor, levelText = colorPurple, "DEBUG"
	}

	logType := getLogType(h.attrs, &r)

	message := r.Message
	if r.Level >= slog.LevelError {
		if loc := getErrorLocation(&r); loc != "" {
			message = fmt.Sprintf("%s (%s)", message, loc)
		}
		if details := getAttr(&r, "error"); details != "" {
			message = fmt.Sprintf("%s: %s", message, details)
		}
	}
	if status := getAttr(&r, "status"); status != "" {
		message = fmt.Sprintf("%s [Status: %s]", message, status)
	}

	var sb strings.Builder
	prefix := strings.Join(h.groups, ".")
	writeAttr := func(a slog.Attr) {
		if isInternalAttr(a.Key) || (r.Level >= slog.LevelError && a.Key == "error") {
			return
		}
		key := a.Key
		if prefix != "" {
			key = prefix + "." + key
		}
		fmt.Fprintf(&sb, " %s=%v", key, a.Value.Resolve())
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})

	line := fmt.Sprintf("[%s] [%s] [%s] [%s] %s%s\n",
		h.app, timestamp.Format("15:04:05"), levelText, logType, message, sb.String())
	if h.color {
		line = fmt.Sprintf("%s[%s] [%s] [%s%s%s] [%s%s%s] %s%s%s\n",
			colorWhite, h.app, timestamp.Format("15:04:05"),
			levelColor, levelText, colorWhite,
			colorCyan, logType, colorWhite,
			message, sb.String(), colorReset)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line)
	return err
}

func shouldSkipLog(r *slog.Record) bool {
	// fasthttp and the webhook client are chatty at debug level
	skippedMessages := []string{
		"new request",
		"new response",
		"locking rest bucket",
		"unlocking rest bucket",
		"rate limit response headers",
	}

	msg := strings.ToLower(r.Message)
	for _, skip := range skippedMessages {
		if strings.Contains(msg, skip) {
			return true
		}
	}
	return false
}

func getLogType(handlerAttrs []slog.Attr, r *slog.Record) LogType {
	raw := ""
	for _, a := range handlerAttrs {
		if a.Key == "type" {
			raw = a.Value.String()
		}
	}
	if v := getAttr(r, "type"); v != "" {
		raw = v
	}

	switch raw {
	case "eco":
		return TypeEconomy
	case "api":
		return TypeAPI
	case "db":
		return TypeDB
	case "cmd":
		return TypeCommand
	case "error":
		return TypeError
	default:
		return TypeSystem
	}
}

func isInternalAttr(key string) bool {
	switch key {
	case "type", "status", "error_location":
		return true
	}
	return false
}

func getAttr(r *slog.Record, key string) string {
	var value string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			value = a.Value.Resolve().String()
			return false
		}
		return true
	})
	return value
}

func getErrorLocation(r *slog.Record) string {
	if loc := getAttr(r, "error_location"); loc != "" {
		return loc
	}
	if r.PC == 0 {
		return ""
	}
	frames := runtime.CallersFrames([]uintptr{r.PC})
	frame, _ := frames.Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}
