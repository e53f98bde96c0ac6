// Package watcher captions images dropped into an inbox folder.
package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/inecosys/utilitytool/internal/utils"
	"github.com/inecosys/utilitytool/pkg/watermark"
)

// DefaultDebounce is how long a file must stay quiet before it is processed
const DefaultDebounce = 500 * time.Millisecond

// Captioner is the part of watermark.Captioner the watcher needs
type Captioner interface {
	NormalizeAndCaption(data []byte, caption watermark.Caption) ([]byte, error)
}

// Config configures a Watcher
type Config struct {
	Inbox    string
	Outbox   string
	Suffix   string
	Format   string // output extension, jpg when empty
	Debounce time.Duration
	Caption  watermark.Caption
}

// Result reports one processed file
type Result struct {
	Input  string
	Output string
	Err    error
}

// Watcher monitors the inbox and writes captioned copies to the outbox
type Watcher struct {
	cfg       Config
	captioner Captioner
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	results   chan Result

	mu       sync.Mutex
	pending  map[string]*time.Timer
	started  bool
	stopped  bool
	handlers sync.WaitGroup

	done     chan struct{}
	loopDone chan struct{}
	stopOnce sync.Once
}

// New creates a watcher. The inbox must exist; the outbox is created on Start.
func New(cfg Config, captioner Captioner, logger *zap.Logger) (*Watcher, error) {
	if captioner == nil {
		return nil, errors.New("watcher: captioner is nil")
	}
	if cfg.Inbox == "" || cfg.Outbox == "" {
		return nil, errors.New("watcher: inbox and outbox are required")
	}
	inAbs, err := filepath.Abs(cfg.Inbox)
	if err != nil {
		return nil, fmt.Errorf("watcher: invalid inbox: %w", err)
	}
	outAbs, err := filepath.Abs(cfg.Outbox)
	if err != nil {
		return nil, fmt.Errorf("watcher: invalid outbox: %w", err)
	}
	if inAbs == outAbs {
		return nil, errors.New("watcher: inbox and outbox must differ")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Format == "" {
		cfg.Format = "jpg"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		cfg:       cfg,
		captioner: captioner,
		logger:    logger.Named("watcher"),
		watcher:   fsWatcher,
		results:   make(chan Result, 100),
		pending:   make(map[string]*time.Timer),
		done:      make(chan struct{}),
		loopDone:  make(chan struct{}),
	}, nil
}

// Start begins monitoring the inbox
func (w *Watcher) Start() error {
	if err := os.MkdirAll(w.cfg.Outbox, 0o755); err != nil {
		return fmt.Errorf("failed to create outbox %s: %w", w.cfg.Outbox, err)
	}
	if err := w.watcher.Add(w.cfg.Inbox); err != nil {
		return fmt.Errorf("failed to watch folder %s: %w", w.cfg.Inbox, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return errors.New("watcher: already stopped")
	}
	if w.started {
		return errors.New("watcher: already started")
	}
	w.started = true

	w.logger.Info("watching folder", zap.String("inbox", w.cfg.Inbox), zap.String("outbox", w.cfg.Outbox))
	go w.processEvents()
	return nil
}

// Results delivers one Result per processed file. It is closed by Stop.
func (w *Watcher) Results() <-chan Result {
	return w.results
}

// Stop cancels pending files, waits for in-flight work and closes Results
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()

		w.mu.Lock()
		w.stopped = true
		started := w.started
		for name, timer := range w.pending {
			if timer.Stop() {
				w.handlers.Done()
			}
			delete(w.pending, name)
		}
		w.mu.Unlock()

		if started {
			<-w.loopDone
		}
		w.handlers.Wait()
		close(w.results)
	})
	return err
}

func (w *Watcher) processEvents() {
	defer close(w.loopDone)

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !utils.IsImageFile(event.Name) || utils.IsHidden(event.Name) {
				continue
			}
			w.schedule(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// schedule (re)arms the debounce timer for path
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}

	// A timer that already fired owns its own Done
	if timer, exists := w.pending[path]; exists && timer.Stop() {
		w.handlers.Done()
	}

	w.handlers.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.cfg.Debounce, func() {
		defer w.handlers.Done()

		w.mu.Lock()
		if w.pending[path] == timer {
			delete(w.pending, path)
		}
		stopped := w.stopped
		w.mu.Unlock()
		if stopped {
			return
		}

		w.publish(w.handleFile(path))
	})
	w.pending[path] = timer
}

func (w *Watcher) handleFile(path string) Result {
	res := Result{Input: path}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("failed to read %s: %w", path, err)
		w.logger.Error("read failed", zap.String("file", path), zap.Error(err))
		return res
	}

	out, err := w.captioner.NormalizeAndCaption(data, w.cfg.Caption)
	if err != nil {
		res.Err = fmt.Errorf("failed to caption %s: %w", path, err)
		w.logger.Error("caption failed", zap.String("file", path), zap.Error(err))
		return res
	}

	res.Output = utils.OutputPath(path, w.cfg.Outbox, w.cfg.Suffix, w.cfg.Format)
	if err := writeAtomic(res.Output, out); err != nil {
		res.Err = err
		w.logger.Error("write failed", zap.String("file", res.Output), zap.Error(err))
		return res
	}

	w.logger.Info("captioned",
		zap.String("input", path),
		zap.String("output", res.Output),
		zap.String("size", utils.FormatFileSize(int64(len(out)))))
	return res
}

func (w *Watcher) publish(res Result) {
	select {
	case w.results <- res:
	case <-w.done:
	}
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
