package sysfs

import (
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

var (
	writeAttrs = []string{AttrSetVoltage, AttrSetCapacity, AttrSetStatus}
	readAttrs  = []string{AttrVoltageNow, AttrCapacity, AttrStatus, AttrUevent}
)

// Tree materializes the attributes as real files under one directory, the
// way the kernel exposes a power supply under /sys/class/power_supply.
// Writable attributes are empty files a writer fills; readable ones are
// plain files rewritten after every change.
type Tree struct {
	attrs *Attrs
	dir   string

	// writeMode is the mode of the set_* files: 0600 by default, 0666
	// when non-root access is allowed.
	writeMode os.FileMode
}

// NewTree returns a tree rooted at dir. Nothing is created yet.
func NewTree(attrs *Attrs, dir string, allowNonRootAccess bool) *Tree {
	mode := os.FileMode(0o600)
	if allowNonRootAccess {
		mode = 0o666
	}
	return &Tree{attrs: attrs, dir: dir, writeMode: mode}
}

// Dir returns the attribute directory path.
func (t *Tree) Dir() string { return t.dir }

// Create builds the attribute directory: empty set_* files and property
// files populated from the current state.
func (t *Tree) Create() error {
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create attribute directory %s", t.dir)
	}
	for _, name := range writeAttrs {
		if err := os.WriteFile(filepath.Join(t.dir, name), nil, t.writeMode); err != nil {
			return pkgerrors.Wrapf(err, "failed to create attribute %s", name)
		}
	}
	return t.Refresh()
}

// Refresh rewrites the readable property files from the current state.
func (t *Tree) Refresh() error {
	for _, name := range readAttrs {
		text, err := t.attrs.Show(name)
		if err != nil {
			return err
		}
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		path := filepath.Join(t.dir, name)
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return pkgerrors.Wrapf(err, "failed to write %s", path)
		}
	}
	return nil
}

// Remove deletes the attribute directory and everything in it.
func (t *Tree) Remove() error {
	return os.RemoveAll(t.dir)
}
