package zenv

import (
	"errors"

	"github.com/zbuildtool/zbuild/internal/probe"
)

// ErrFilesystemUnsupported is returned by ConfigureFilesystem when the
// toolchain's standard library cannot provide the filesystem feature at all.
// A clean negative probe is not an error; refusing to enable the feature on
// top of one is.
var ErrFilesystemUnsupported = errors.New("standard filesystem library not supported by this toolchain")

// ConfigureFilesystem probes for standard filesystem support and, when the
// standard library ships it in a helper library, accumulates the matching
// link entry on this handle.
func (e *Env) ConfigureFilesystem() error {
	s := e.Configure()
	fs, err := s.DetectFilesystem()
	if err != nil {
		return err
	}
	if !fs.Supported {
		return ErrFilesystemUnsupported
	}
	if fs.RequiresExplicitLink {
		kind, _ := e.Stdlib()
		if kind == probe.Libstdcxx {
			e.WithLibraries([]string{"stdc++fs"}, true)
		} else {
			// libc++; MSVC's STL never requires linking.
			e.WithLibraries([]string{"c++fs"}, true)
		}
	}
	return nil
}
