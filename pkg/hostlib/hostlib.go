// Package hostlib provides the standard host-side native modules. All of
// them reach language code exclusively through a native.Registry, so an
// embedder can install all, some, or none of them.
package hostlib

import (
	"io"
	"os"

	"github.com/solisoft/soli-lang-sub002/internal/native"
)

// Options configures the installed modules.
type Options struct {
	// Stdout receives print output. Defaults to os.Stdout.
	Stdout io.Writer
	// Stderr receives log output. Defaults to os.Stderr.
	Stderr io.Writer
	// Color enables ANSI colors in log output.
	Color bool
	// Database is the SQLite path for the db natives. Empty uses an
	// in-memory database.
	Database string
}

// Host owns the resources behind the installed natives.
type Host struct {
	db dbHandle
}

// Install registers the io, yaml, uuid, db and async modules into reg.
// Close the returned Host when the embedding program is done.
func Install(reg *native.Registry, opts Options) (*Host, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	registerIO(reg, opts)
	registerYAML(reg)
	registerUUID(reg)
	registerAsync(reg)

	h := &Host{}
	if err := h.registerDB(reg, opts.Database); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Host) Close() error {
	return h.db.close()
}
