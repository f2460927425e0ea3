package sysfs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Watch applies writes made to the set_* files until ctx is cancelled.
// Every completed write is read back, fed through Store and the file
// truncated so the next writer starts clean. Store failures are logged
// with their errno and dropped, the way a sysfs store reports to one
// writer and carries on.
func (t *Tree) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return pkgerrors.Wrap(err, "failed to create attribute watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(t.dir); err != nil {
		return pkgerrors.Wrapf(err, "failed to watch %s", t.dir)
	}

	logrus.WithField("dir", t.dir).Info("watching attribute directory")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if !IsWriteAttr(name) {
				continue
			}
			t.apply(name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logrus.WithError(err).Warn("attribute watcher error")
		}
	}
}

// apply consumes one pending payload from a set_* file. Duplicate events
// for the same write are harmless: the empty-file check skips our own
// truncation, and re-storing an identical value is not an effective write,
// so nothing fires twice.
func (t *Tree) apply(name string) {
	path := filepath.Join(t.dir, name)
	payload, err := os.ReadFile(path)
	if err != nil {
		logrus.WithError(err).WithField("attr", name).Warn("failed to read attribute")
		return
	}
	if len(payload) == 0 {
		return
	}

	n, err := t.attrs.Store(name, payload)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"attr":  name,
			"errno": int(Errno(err)),
		}).Warnf("rejected write: %v", err)
	} else {
		logrus.WithFields(logrus.Fields{
			"attr":     name,
			"consumed": n,
		}).Debug("applied attribute write")
	}

	if err := os.Truncate(path, 0); err != nil {
		logrus.WithError(err).WithField("attr", name).Warn("failed to reset attribute")
	}
}
