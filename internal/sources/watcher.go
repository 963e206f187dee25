package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/logging"
)

const DefaultDebounce = 500 * time.Millisecond

// Watcher calls onChange once a burst of writes to the source files has
// settled.
type Watcher struct {
	dirs     []string
	debounce time.Duration
	onChange func(ctx context.Context)
	log      *logging.Logger
}

func NewWatcher(onChange func(ctx context.Context), log *logging.Logger, dirs ...string) *Watcher {
	if log == nil {
		log = logging.Nop()
	}
	return &Watcher{
		dirs:     dirs,
		debounce: DefaultDebounce,
		onChange: onChange,
		log:      log,
	}
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	for _, dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	w.log.Info().Strs("dirs", w.dirs).Msg("watching source files")

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !Watched(event.Name) || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) {
				continue
			}
			w.log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("source file changed")
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watcher error")

		case <-timer.C:
			w.onChange(ctx)
		}
	}
}
