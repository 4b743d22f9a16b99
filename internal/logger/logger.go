package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/tracklit/internal/constants"
)

// Rotation limits for tracklit.log.
const (
	maxLogSizeMB  = 10
	maxLogBackups = 3
	maxLogAgeDays = 28
)

// Logger is the process-wide logger set by Init. It stays nil until then.
var Logger *log.Logger

var discard = log.New(io.Discard)

type Config struct {
	Debug  bool
	LogDir string
	// Stderr receives the debug mirror. Nil means os.Stderr.
	Stderr io.Writer
}

// Init points Logger at a rotating file under cfg.LogDir. With Debug set the
// level drops to debug and every line is mirrored to the console; otherwise
// only warnings and errors are kept and the console stays quiet.
func Init(cfg Config) error {
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return err
	}

	var out io.Writer = rotatingFile(cfg.LogDir)
	level := log.WarnLevel
	if cfg.Debug {
		console := cfg.Stderr
		if console == nil {
			console = os.Stderr
		}
		out = io.MultiWriter(console, out)
		level = log.DebugLevel
	}

	Logger = log.NewWithOptions(out, log.Options{
		Level:           level,
		Prefix:          constants.AppName,
		ReportTimestamp: true,
		ReportCaller:    cfg.Debug,
	})
	return nil
}

func rotatingFile(dir string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, constants.AppName+".log"),
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}
}

// Get returns Logger, or a logger that drops everything before Init.
func Get() *log.Logger {
	if Logger != nil {
		return Logger
	}
	return discard
}

func Debug(msg string, keyvals ...any) { Get().Debug(msg, keyvals...) }
func Info(msg string, keyvals ...any)  { Get().Info(msg, keyvals...) }
func Warn(msg string, keyvals ...any)  { Get().Warn(msg, keyvals...) }
func Error(msg string, keyvals ...any) { Get().Error(msg, keyvals...) }
