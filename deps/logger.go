package deps

import (
	"os"
	"sync"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("cart")

// Everything except the message has a custom color which is dependent on
// the log level.
var format = logging.MustStringFormatter(
	`%{color}%{time:15:04:05.000} %{pid} %{module}	%{shortfile}	▶ %{level:.4s} %{id:03x}%{color:reset} %{message}`,
)

var (
	leveled     *lockedBackend
	leveledOnce sync.Once
)

// lockedBackend guards the module levels of go-logging, which are a plain
// map read on every log call. The config watcher changes them at runtime.
type lockedBackend struct {
	mu      sync.RWMutex
	backend logging.LeveledBackend
}

func (b *lockedBackend) Log(level logging.Level, calldepth int, rec *logging.Record) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.backend.Log(level, calldepth+1, rec)
}

func (b *lockedBackend) GetLevel(module string) logging.Level {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.backend.GetLevel(module)
}

func (b *lockedBackend) SetLevel(level logging.Level, module string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.backend.SetLevel(level, module)
}

func (b *lockedBackend) IsEnabledFor(level logging.Level, module string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.backend.IsEnabledFor(level, module)
}

// installBackend sets the default backend the first time it is called.
func installBackend() *lockedBackend {
	leveledOnce.Do(func() {
		backend := logging.NewLogBackend(os.Stderr, "", 0)
		formatter := logging.NewBackendFormatter(backend, format)
		leveled = &lockedBackend{backend: logging.AddModuleLevel(formatter)}
		logging.SetBackend(leveled)
	})
	return leveled
}

func IgniteLogger(container Deps) (Deps, error) {
	installBackend()

	if err := SetLogLevel(container.Config().UString("log.level", "INFO")); err != nil {
		return container, err
	}

	container.LoggerProvider = log
	return container, nil
}

// SetLogLevel changes the level of every module logger. It is safe to call
// while other goroutines log.
func SetLogLevel(name string) error {
	level, err := logging.LogLevel(name)
	if err != nil {
		return err
	}

	installBackend().SetLevel(level, "")
	return nil
}
