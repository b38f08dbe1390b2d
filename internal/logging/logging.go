// Package logging sets up the zap logger of a gymtap run.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Session is one run's logger and the file set it writes next to.
type Session struct {
	Logger *zap.Logger
	// BaseName is "gymtap_<timestamp>", shared by the log and the snapshot.
	BaseName string
	LogPath  string
	dir      string
	file     *os.File
}

// NewSession creates dir if needed and opens <dir>/gymtap_<ts>.log. The
// file receives JSON lines at debug level. stderr gets console lines at
// warn level, or info when verbose.
func NewSession(dir string, verbose bool) (*Session, error) {
	return newSession(dir, verbose, os.Stderr, time.Now())
}

func newSession(dir string, verbose bool, console io.Writer, now time.Time) (*Session, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "creating output dir %s", dir)
	}
	base := fmt.Sprintf("gymtap_%s", now.Format("20060102_150405"))
	logPath := filepath.Join(dir, base+".log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, eris.Wrapf(err, "opening log %s", logPath)
	}

	fileEnc := zap.NewProductionEncoderConfig()
	fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleEnc := zap.NewDevelopmentEncoderConfig()
	consoleEnc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEnc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")

	consoleLevel := zapcore.WarnLevel
	if verbose {
		consoleLevel = zapcore.InfoLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), zapcore.AddSync(f), zapcore.DebugLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEnc), zapcore.Lock(zapcore.AddSync(console)), consoleLevel),
	)
	return &Session{
		Logger:   zap.New(core),
		BaseName: base,
		LogPath:  logPath,
		dir:      dir,
		file:     f,
	}, nil
}

// Path returns a file in the session directory named after the session,
// e.g. Path(".db").
func (s *Session) Path(ext string) string {
	return filepath.Join(s.dir, s.BaseName+ext)
}

// Close flushes the logger and closes the log file.
func (s *Session) Close() error {
	_ = s.Logger.Sync()
	return s.file.Close()
}
