package probe

import (
	"github.com/qiniu/x/log"
)

const snippetExt = ".cpp"

// The baseline probe checks the minimal header every recognized standard
// library ships. ciso646 was dropped in C++20; switching the baseline to
// <version> is pending a decision on the minimum supported standard.
const baselineSnippet = `#include <ciso646>
int main() {}
`

// Discriminating snippets, each guarded by a macro only one implementation
// defines. Mutually exclusive: at most one of them can compile.
const (
	libstdcxxSnippet = `#include <ciso646>
#ifndef __GLIBCXX__
#error "not libstdc++"
#endif
int main() {}
`
	libcxxSnippet = `#include <ciso646>
#ifndef _LIBCPP_VERSION
#error "not libc++"
#endif
int main() {}
`
	msvcSTLSnippet = `#include <ciso646>
#ifndef _MSVC_STL_VERSION
#error "not MSVC stl"
#endif
int main() {}
`
)

// DetectStdlib reports which standard-library family the toolchain compiles
// against. A successful result is cached on the session's host and reused by
// every later call; failure to discriminate is fatal, never defaulted.
func (s *Session) DetectStdlib() (StdlibKind, error) {
	if k, ok := s.host.Stdlib(); ok {
		log.Debugf("detected stdlib (cached): %s", k)
		return k, nil
	}

	ok, err := s.TryCompile(baselineSnippet, snippetExt)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrBaselineProbe
	}

	candidates := []struct {
		kind StdlibKind
		src  string
	}{
		{Libstdcxx, libstdcxxSnippet},
		{Libcxx, libcxxSnippet},
		{MSVCSTL, msvcSTLSnippet},
	}
	for _, c := range candidates {
		ok, err := s.TryCompile(c.src, snippetExt)
		if err != nil {
			return 0, err
		}
		if ok {
			s.host.SetStdlib(c.kind)
			log.Infof("detected stdlib: %s", c.kind)
			return c.kind, nil
		}
	}
	return 0, ErrStdlibUnknown
}

// Filesystem library probes. Support and link-needed are probed
// independently: a release can predate the feature being folded into the
// default runtime while still supporting it.
const (
	glibcxxFSLinkSnippet = `#include <ciso646>
#if defined(_GLIBCXX_RELEASE) && _GLIBCXX_RELEASE >= 9
#error "no separate library needed"
#endif
int main() {}
`
	glibcxxFSSupportSnippet = `#include <ciso646>
#if !defined(_GLIBCXX_RELEASE) || _GLIBCXX_RELEASE < 8
#error "filesystem not supported"
#endif
int main() {}
`
	libcxxFSLinkSnippet = `#include <ciso646>
#if _LIBCPP_VERSION >= 9000
#error "no separate library needed"
#endif
int main() {}
`
	libcxxFSSupportSnippet = `#include <ciso646>
#if _LIBCPP_VERSION < 7000
#error "filesystem not supported"
#endif
#include <iostream>
int main() {}
`
	msvcFSSupportSnippet = `#include <ciso646>
#if !defined(_MSVC_STL_UPDATE) || _MSVC_STL_UPDATE < 201803
#error "filesystem not supported before 15.7"
#endif
int main() {}
`
)

// DetectFilesystem probes whether the standard filesystem library is usable
// and whether enabling it requires linking a helper library. Stdlib
// detection runs first if it has not happened yet. Results are not cached;
// each call re-probes against the toolchain.
func (s *Session) DetectFilesystem() (FeatureSupport, error) {
	kind, err := s.DetectStdlib()
	if err != nil {
		return FeatureSupport{}, err
	}

	var fs FeatureSupport
	switch kind {
	case Libstdcxx:
		fs.RequiresExplicitLink, err = s.TryCompile(glibcxxFSLinkSnippet, snippetExt)
		if err != nil {
			return FeatureSupport{}, err
		}
		fs.Supported, err = s.TryCompile(glibcxxFSSupportSnippet, snippetExt)
		if err != nil {
			return FeatureSupport{}, err
		}
	case Libcxx:
		if s.goos != "darwin" {
			// Apple's toolchain disallows linking the helper library.
			fs.RequiresExplicitLink, err = s.TryCompile(libcxxFSLinkSnippet, snippetExt)
			if err != nil {
				return FeatureSupport{}, err
			}
		}
		fs.Supported, err = s.TryCompile(libcxxFSSupportSnippet, snippetExt)
		if err != nil {
			return FeatureSupport{}, err
		}
	case MSVCSTL:
		// MSVC's STL never needs a separate filesystem library.
		fs.Supported, err = s.TryCompile(msvcFSSupportSnippet, snippetExt)
		if err != nil {
			return FeatureSupport{}, err
		}
	}

	log.Infof("filesystem supported: %v, needs explicit link: %v", fs.Supported, fs.RequiresExplicitLink)
	return fs, nil
}
