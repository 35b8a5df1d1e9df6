// Package drvlog implements the driver's fixed trace line format:
//
//	<sec>.<nsec> [<pid>-<tid>] <file>:<line> <function> <message>
//
// Logging is gated by NVD_LOG: "1" logs to stdout, any other value appends
// to that path, and unset disables logging entirely (a discard handler).
package drvlog

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
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

type contextKey struct{}

// switchableHandler lets package-level loggers created before Init() pick up
// the configured destination once Init runs, the same way the teacher's
// logging package lets pre-Init loggers adopt the real handler later.
type switchableHandler struct {
	state  *switchableState
	attrs  []slog.Attr
	groups []string
}

type switchableState struct {
	current atomic.Value // stores slog.Handler
}

func newSwitchableHandler(h slog.Handler) *switchableHandler {
	state := &switchableState{}
	state.current.Store(h)
	return &switchableHandler{state: state}
}

func (h *switchableHandler) set(handler slog.Handler) {
	h.state.current.Store(handler)
}

func (h *switchableHandler) base() slog.Handler {
	return h.state.current.Load().(slog.Handler)
}

func (h *switchableHandler) materialize() slog.Handler {
	handler := h.base()
	for _, group := range h.groups {
		handler = handler.WithGroup(group)
	}
	if len(h.attrs) > 0 {
		handler = handler.WithAttrs(h.attrs)
	}
	return handler
}

func (h *switchableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.materialize().Enabled(ctx, level)
}

func (h *switchableHandler) Handle(ctx context.Context, record slog.Record) error {
	return h.materialize().Handle(ctx, record)
}

func (h *switchableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	groups := append([]string(nil), h.groups...)
	return &switchableHandler{state: h.state, attrs: merged, groups: groups}
}

func (h *switchableHandler) WithGroup(name string) slog.Handler {
	attrs := append([]slog.Attr(nil), h.attrs...)
	groups := append(append([]string(nil), h.groups...), name)
	return &switchableHandler{state: h.state, attrs: attrs, groups: groups}
}

var (
	processStart  = time.Now()
	rootHandler   = newSwitchableHandler(discardHandler{})
	defaultLogger = slog.New(rootHandler)
	openFileMu    sync.Mutex
	openFile      *os.File
)

func init() {
	slog.SetDefault(defaultLogger)
	InitFromEnv()
}

// InitFromEnv wires the logger from NVD_LOG, matching spec.md's env table:
// "1" -> stdout, any other value -> append to that path, unset -> no logging.
func InitFromEnv() {
	v, set := os.LookupEnv("NVD_LOG")
	if !set {
		rootHandler.set(discardHandler{})
		return
	}
	if v == "1" {
		Init(os.Stdout)
		return
	}
	f, err := openAppend(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "drvlog: cannot open NVD_LOG path %q: %v\n", v, err)
		rootHandler.set(discardHandler{})
		return
	}
	Init(f)
}

// Init wires the logger to write the fixed trace-line format to w. Exported
// so tests and cmd/vaapi_nvdec can redirect output deterministically.
func Init(w io.Writer) {
	rootHandler.set(&lineHandler{w: w})
}

func openAppend(path string) (*os.File, error) {
	openFileMu.Lock()
	defer openFileMu.Unlock()
	if openFile != nil {
		openFile.Close()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}
	openFile = f
	return f, nil
}

// discardHandler drops every record; used when NVD_LOG is unset.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }

// lineHandler renders spec.md §6's fixed trace line:
// <sec>.<nsec> [<pid>-<tid>] <file>:<line> <function> <message> key=value...
type lineHandler struct {
	w      io.Writer
	mu     sync.Mutex
	attrs  []slog.Attr
	groups []string
}

func (h *lineHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	elapsed := r.Time.Sub(processStart)
	if elapsed < 0 {
		elapsed = 0
	}
	sec := int64(elapsed / time.Second)
	nsec := int64(elapsed % time.Second)

	file, line, fn := "???", 0, "???"
	if r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		if frame, _ := frames.Next(); frame.PC != 0 {
			file = filepath.Base(frame.File)
			line = frame.Line
			fn = frame.Function
			if idx := strings.LastIndex(fn, "."); idx >= 0 {
				fn = fn[idx+1:]
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d.%09d [%d-%d] %s:%d %s %s", sec, nsec, os.Getpid(), gettid(), file, line, fn, r.Message)

	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Any())
	}
	r.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if len(h.groups) > 0 {
			key = strings.Join(h.groups, ".") + "." + key
		}
		fmt.Fprintf(&b, " %s=%v", key, a.Value.Any())
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	if f, ok := h.w.(*os.File); ok {
		f.Sync()
	}
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &lineHandler{w: h.w, attrs: merged, groups: append([]string(nil), h.groups...)}
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	return &lineHandler{w: h.w, attrs: append([]slog.Attr(nil), h.attrs...), groups: append(append([]string(nil), h.groups...), name)}
}

func gettid() int {
	return unix.Gettid()
}

// L returns a logger tagged with the given component name, the same idiom
// as the teacher's logging.L.
func L(component string) *slog.Logger {
	return defaultLogger.With(slog.String("component", component))
}

// NewContext returns a new context carrying the given logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts the logger from context, falling back to the default.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return l
	}
	return defaultLogger
}
