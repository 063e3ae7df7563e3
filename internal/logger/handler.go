package logger

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// Handler is a slog.Handler writing through a zerolog.Logger.
type Handler struct {
	zl     zerolog.Logger
	attrs  []boundAttr
	groups []string
}

// boundAttr is an attr from WithAttrs together with the groups that were
// open when it was added.
type boundAttr struct {
	attr   slog.Attr
	groups []string
}

func NewHandler(zl zerolog.Logger) *Handler {
	return &Handler{zl: zl}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.zl.GetLevel() <= slogToZerolog(level)
}

//nolint:gocritic // slog.Record is passed by value per slog.Handler interface
func (h *Handler) Handle(_ context.Context, rec slog.Record) error {
	var ev *zerolog.Event
	switch {
	case rec.Level >= slog.LevelError:
		ev = h.zl.Error()
	case rec.Level >= slog.LevelWarn:
		ev = h.zl.Warn()
	case rec.Level >= slog.LevelInfo:
		ev = h.zl.Info()
	default:
		ev = h.zl.Debug()
	}
	if ev == nil {
		return nil
	}

	for _, b := range h.attrs {
		ev = addAttr(ev, b.attr, b.groups)
	}
	rec.Attrs(func(a slog.Attr) bool {
		ev = addAttr(ev, a, h.groups)
		return true
	})

	ev.Msg(rec.Message)
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	merged := make([]boundAttr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, a := range attrs {
		// h.groups is never appended to in place, so sharing it is safe
		merged = append(merged, boundAttr{attr: a, groups: h.groups})
	}
	return &Handler{zl: h.zl, attrs: merged, groups: h.groups}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	groups = append(groups, name)
	return &Handler{zl: h.zl, attrs: h.attrs, groups: groups}
}

func addAttr(ev *zerolog.Event, a slog.Attr, groups []string) *zerolog.Event {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return ev
	}

	key := a.Key
	for i := len(groups) - 1; i >= 0; i-- {
		key = groups[i] + "." + key
	}

	switch a.Value.Kind() {
	case slog.KindString:
		return ev.Str(key, a.Value.String())
	case slog.KindInt64:
		return ev.Int64(key, a.Value.Int64())
	case slog.KindUint64:
		return ev.Uint64(key, a.Value.Uint64())
	case slog.KindFloat64:
		return ev.Float64(key, a.Value.Float64())
	case slog.KindBool:
		return ev.Bool(key, a.Value.Bool())
	case slog.KindDuration:
		return ev.Dur(key, a.Value.Duration())
	case slog.KindTime:
		return ev.Time(key, a.Value.Time())
	case slog.KindGroup:
		sub := append(append([]string{}, groups...), a.Key)
		for _, ga := range a.Value.Group() {
			ev = addAttr(ev, ga, sub)
		}
		return ev
	default:
		if err, ok := a.Value.Any().(error); ok {
			return ev.AnErr(key, err)
		}
		return ev.Interface(key, a.Value.Any())
	}
}

func slogToZerolog(level slog.Level) zerolog.Level {
	switch {
	case level < slog.LevelInfo:
		return zerolog.DebugLevel
	case level < slog.LevelWarn:
		return zerolog.InfoLevel
	case level < slog.LevelError:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
