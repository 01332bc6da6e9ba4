package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyEntity     = "entity"
	KeyKind       = "kind"
	KeyName       = "name"
	KeyURL        = "url"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyProject    = "project"
	KeyBuildID    = "build_id"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Entity(fqn string) slog.Attr     { return slog.String(KeyEntity, fqn) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Name(n string) slog.Attr         { return slog.String(KeyName, n) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Project(p string) slog.Attr      { return slog.String(KeyProject, p) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
