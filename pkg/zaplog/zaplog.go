// Package zaplog sends zap output to a size-rotated log file.
package zaplog

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation describes a rotating log file.
type Rotation struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Redirect returns a logger that writes JSON entries to the file described
// by r instead of the original outputs. The level filtering of lg is kept.
// Close the returned io.Closer after the last entry is written.
//
// When r.Filename is empty lg is returned unchanged along with a no-op closer.
func Redirect(lg *zap.Logger, r Rotation) (*zap.Logger, io.Closer) {
	if r.Filename == "" {
		return lg, nopCloser{}
	}

	w := &lumberjack.Logger{
		Filename:   r.Filename,
		MaxSize:    r.MaxSizeMB,
		MaxBackups: r.MaxBackups,
		MaxAge:     r.MaxAgeDays,
		Compress:   r.Compress,
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	return lg.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewCore(enc, zapcore.AddSync(w), c)
	})), w
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
