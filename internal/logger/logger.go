package logger

import (
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "2006/01/02 15:04:05"

type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Dir enables file logging. Logs go to <Dir>/logs/YYYY-MM-DD.log unless
	// Dir already ends in "logs".
	Dir string
}

// New builds a logger that writes colored lines to stdout and, when
// opts.Dir is set, plain lines to a daily log file.
func New(opts Options) (*zap.SugaredLogger, error) {
	lvl := zap.NewAtomicLevel()
	if opts.Level != "" {
		if err := lvl.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, err
		}
	}

	consoleCfg := encoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stdout), lvl),
	}

	if opts.Dir != "" {
		df, err := openDaily(opts.Dir)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), df, lvl))
	}

	return zap.New(zapcore.NewTee(cores...)).Sugar(), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.CallerKey = ""
	cfg.NameKey = ""
	return cfg
}

// dailyFile is a WriteSyncer that switches to a new file when the day changes.
type dailyFile struct {
	mu   sync.Mutex
	dir  string
	day  string
	file *os.File
	now  func() time.Time
}

func openDaily(dir string) (*dailyFile, error) {
	resolved := dir
	if path.Base(filepath.ToSlash(dir)) != "logs" {
		resolved = filepath.Join(dir, "logs")
	}
	if err := os.MkdirAll(resolved, 0o755); err != nil {
		return nil, err
	}
	df := &dailyFile{dir: resolved, now: time.Now}
	df.mu.Lock()
	defer df.mu.Unlock()
	if err := df.rotateLocked(); err != nil {
		return nil, err
	}
	return df, nil
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.rotateLocked(); err != nil {
		return 0, err
	}
	return d.file.Write(p)
}

func (d *dailyFile) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	return d.file.Sync()
}

func (d *dailyFile) rotateLocked() error {
	day := d.now().Format("2006-01-02")
	if d.file != nil && d.day == day {
		return nil
	}
	if d.file != nil {
		_ = d.file.Close()
		d.file = nil
	}
	f, err := os.OpenFile(filepath.Join(d.dir, day+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return err
	}
	d.file = f
	d.day = day
	return nil
}
