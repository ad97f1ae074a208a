package theme

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 150 * time.Millisecond

// Watch reloads templates whenever a .tmpl file under the templates directory changes.
// It blocks until ctx is cancelled. Parse errors are logged and the previous set kept.
func (r *Renderer) Watch(ctx context.Context, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirs(w, r.dir); err != nil {
		return err
	}
	logger.Info("watching templates", zap.String("dir", r.dir))

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				// new subdirectories need their own watch
				_ = addDirs(w, event.Name)
			}
			if !strings.HasSuffix(event.Name, ext) || event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			if err := r.Reload(); err != nil {
				logger.Warn("template reload failed", zap.Error(err))
				continue
			}
			logger.Info("templates reloaded")
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("template watcher error", zap.Error(err))
		}
	}
}

func addDirs(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}
