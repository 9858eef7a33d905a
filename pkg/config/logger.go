package config

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

const appName = "pageflow"

type LoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" validate:"omitempty,filepath"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
}

type LoggingConfig struct {
	FileLogger    LoggerConfig `yaml:"file"`
	ConsoleLogger LoggerConfig `yaml:"console"`
}

// lowest level written for each configured level name; "none" is absent.
var minLevels = map[string]zapcore.Level{
	"debug":  zapcore.DebugLevel,
	"normal": zapcore.InfoLevel,
}

// Prepare returns the program logger. Console entries below error go to
// stdout, errors to stderr. When the file destination cannot be opened the
// file log goes to a temporary file and a warning says where.
func (conf *LoggingConfig) Prepare() (*zap.Logger, error) {
	return conf.prepare(os.Stdout, os.Stderr)
}

func (conf *LoggingConfig) prepare(stdout, stderr *os.File) (*zap.Logger, error) {
	cores := conf.consoleCores(stdout, stderr)

	fileCore, redirected, err := conf.fileCore()
	if err != nil {
		return nil, err
	}
	cores = append(cores, fileCore)

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	if redirected != "" {
		log.Warn("Log file was redirected to new location", zap.String("location", redirected))
	}
	return log.Named(appName), nil
}

func (conf *LoggingConfig) consoleCores(stdout, stderr *os.File) []zapcore.Core {
	lowest, ok := minLevels[conf.ConsoleLogger.Level]
	if !ok {
		return nil
	}
	below := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lowest <= lvl && lvl < zapcore.ErrorLevel
	})
	return []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig(stdout)), zapcore.Lock(stdout), below),
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig(stderr)), zapcore.Lock(stderr), zapcore.ErrorLevel),
	}
}

// fileCore opens the file logger. redirected names the temporary file used
// in place of an unusable destination.
func (conf *LoggingConfig) fileCore() (core zapcore.Core, redirected string, err error) {
	lowest, ok := minLevels[conf.FileLogger.Level]
	if !ok {
		return zapcore.NewNopCore(), "", nil
	}
	f, err := openLog(conf.FileLogger.Destination, conf.FileLogger.Mode)
	if err != nil {
		if f, err = os.CreateTemp("", appName+".*.log"); err != nil {
			return nil, "", fmt.Errorf("unable to access file log destination (%s): %w", conf.FileLogger.Destination, err)
		}
		redirected = f.Name()
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zapcore.NewCore(enc, zapcore.Lock(f), lowest), redirected, nil
}

// consoleEncoderConfig drops callers, and colors levels on terminals where
// timestamps are left out as well.
func consoleEncoderConfig(stream *os.File) zapcore.EncoderConfig {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if term.IsTerminal(int(stream.Fd())) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	}
	return ec
}

func openLog(fname, mode string) (*os.File, error) {
	if fname == "" {
		return nil, errors.New("no destination")
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if mode == "append" {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	return os.OpenFile(fname, flags, 0644)
}
