package render

import (
	"context"
	"io"
	"log/slog"

	"github.com/lvillar/formfill/layout"
	"github.com/lvillar/formfill/payload"
	"github.com/lvillar/formfill/schema"
	"github.com/lvillar/formfill/style"
)

// Page is the size of a page of the base document in points.
type Page struct {
	Width, Height float64
}

// Env carries what rendering needs from the loaded document.
type Env struct {
	Fonts   *style.Registry
	Measure layout.Measurer
	Logger  *slog.Logger
}

// Plan renders fields in schema order and returns the operations for each
// page. Fields on pages that do not exist and fields whose key is absent
// from data are skipped.
func Plan(pages []Page, fields []schema.Field, data any, env Env) [][]Op {
	log := env.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ops := make([][]Op, len(pages))

	for _, f := range fields {
		if f.PageIndex < 0 || f.PageIndex >= len(pages) {
			log.Debug("skip field", "field", f.ID, "page", f.PageIndex, "reason", "page out of range")
			continue
		}
		value, ok := payload.Resolve(data, f.Key)
		if !ok {
			log.Debug("skip field", "field", f.ID, "page", f.PageIndex, "reason", "value absent")
			continue
		}
		v := Classify(f, env.Fonts)
		if u, ok := v.(UnknownVariant); ok {
			log.Debug("skip field", "field", f.ID, "page", f.PageIndex, "reason", "unknown type", "type", string(u.Type))
			continue
		}
		out := Dispatch(v, value, pages[f.PageIndex].Height, env.Measure)
		if len(out) == 0 && log.Enabled(context.Background(), slog.LevelDebug) {
			log.Debug("field drew nothing", "field", f.ID, "page", f.PageIndex, "type", string(f.Type))
		}
		ops[f.PageIndex] = append(ops[f.PageIndex], out...)
	}
	return ops
}
