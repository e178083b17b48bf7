package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Host line-protocol prefixes. Each record is a single line on stderr
// introduced by one control byte.
const (
	pluginInfoPrefix     = '\x03'
	pluginWarnPrefix     = '\x04'
	pluginErrorPrefix    = '\x05'
	pluginProgressPrefix = '\x06'
)

type pluginHandler struct {
	mu     *sync.Mutex
	writer io.Writer
	level  *slog.LevelVar
	attrs  []slog.Attr
	groups []string
}

func newPluginHandler(w io.Writer, lvl *slog.LevelVar) slog.Handler {
	return &pluginHandler{mu: &sync.Mutex{}, writer: w, level: lvl}
}

func (h *pluginHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *pluginHandler) Handle(_ context.Context, record slog.Record) error {
	kvs, component := collectAttrs(h.groups, h.attrs, record)

	var buf bytes.Buffer
	switch {
	case record.Level >= slog.LevelError:
		buf.WriteByte(pluginErrorPrefix)
	case record.Level >= slog.LevelWarn:
		buf.WriteByte(pluginWarnPrefix)
	default:
		buf.WriteByte(pluginInfoPrefix)
	}
	if component != "" {
		buf.WriteString(component)
		buf.WriteString(": ")
	}
	// The host splits on newlines, so embedded ones would start a bogus record.
	buf.WriteString(strings.ReplaceAll(strings.TrimSpace(record.Message), "\n", " "))
	writeKVs(&buf, kvs)
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *pluginHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &pluginHandler{
		mu:     h.mu,
		writer: h.writer,
		level:  h.level,
		attrs:  append(append([]slog.Attr(nil), h.attrs...), attrs...),
		groups: h.groups,
	}
}

func (h *pluginHandler) WithGroup(name string) slog.Handler {
	return &pluginHandler{
		mu:     h.mu,
		writer: h.writer,
		level:  h.level,
		attrs:  h.attrs,
		groups: append(append([]string(nil), h.groups...), name),
	}
}
