package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"tictac-rooms/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	mu     sync.Mutex
	out    io.Writer = os.Stdout
	closer io.Closer
)

// Init configures the global zerolog logger. When cfg.File is set, output is
// also written to a size-capped file.
func Init(cfg config.LogConfig) error {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var console io.Writer = os.Stdout
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	writer := console
	var fileWriter *rotatingWriter
	if path := strings.TrimSpace(cfg.File); path != "" {
		fw, err := newRotatingWriter(path, cfg.MaxMB)
		if err != nil {
			return err
		}
		fileWriter = fw
		writer = zerolog.MultiLevelWriter(console, fw)
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(writer).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}

	mu.Lock()
	if closer != nil {
		_ = closer.Close()
		closer = nil
	}
	out = os.Stdout
	if fileWriter != nil {
		out = io.MultiWriter(os.Stdout, fileWriter)
		closer = fileWriter
	}
	mu.Unlock()

	log.Logger = logger
	return nil
}

// Writer is the raw destination for non-zerolog loggers such as the
// HTTP request logger.
func Writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return out
}

// Close releases the log file, if one was opened.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	out = os.Stdout
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}
