package probe

import (
	"testing"
)

func TestDetectFilesystem_Libstdcxx(t *testing.T) {
	tests := []struct {
		name     string
		accept   []string
		want     FeatureSupport
		wantKind StdlibKind
	}{
		{
			name: "release below link threshold needs explicit link",
			// The link probe compiles when _GLIBCXX_RELEASE < 9, the
			// support probe when >= 8: both hold for release 8.
			accept:   append(libstdcxxMarkers(), "_GLIBCXX_RELEASE >= 9", "_GLIBCXX_RELEASE < 8"),
			want:     FeatureSupport{Supported: true, RequiresExplicitLink: true},
			wantKind: Libstdcxx,
		},
		{
			name:     "release at link threshold needs no link",
			accept:   append(libstdcxxMarkers(), "_GLIBCXX_RELEASE < 8"),
			want:     FeatureSupport{Supported: true, RequiresExplicitLink: false},
			wantKind: Libstdcxx,
		},
		{
			name: "old release unsupported but still link-probed independently",
			// Below 8: support probe fails, link probe still compiles.
			accept:   append(libstdcxxMarkers(), "_GLIBCXX_RELEASE >= 9"),
			want:     FeatureSupport{Supported: false, RequiresExplicitLink: true},
			wantKind: Libstdcxx,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTester{accept: tt.accept}
			host := &cache{}
			s := NewSession(ft, host, "linux")
			fs, err := s.DetectFilesystem()
			if err != nil {
				t.Fatalf("DetectFilesystem: %v", err)
			}
			if fs != tt.want {
				t.Errorf("result = %+v, want %+v", fs, tt.want)
			}
			if kind, known := host.Stdlib(); !known || kind != tt.wantKind {
				t.Errorf("stdlib cache = (%v, %v), want (%v, true)", kind, known, tt.wantKind)
			}
		})
	}
}

func TestDetectFilesystem_Libcxx(t *testing.T) {
	tests := []struct {
		name   string
		goos   string
		accept []string
		want   FeatureSupport
	}{
		{
			name:   "old libc++ needs explicit link",
			goos:   "linux",
			accept: append(libcxxMarkers(), "_LIBCPP_VERSION >= 9000", "_LIBCPP_VERSION < 7000"),
			want:   FeatureSupport{Supported: true, RequiresExplicitLink: true},
		},
		{
			name:   "darwin never links the helper library",
			goos:   "darwin",
			accept: append(libcxxMarkers(), "_LIBCPP_VERSION >= 9000", "_LIBCPP_VERSION < 7000"),
			want:   FeatureSupport{Supported: true, RequiresExplicitLink: false},
		},
		{
			name:   "current libc++ needs no link",
			goos:   "linux",
			accept: append(libcxxMarkers(), "_LIBCPP_VERSION < 7000"),
			want:   FeatureSupport{Supported: true, RequiresExplicitLink: false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTester{accept: tt.accept}
			s := NewSession(ft, &cache{}, tt.goos)
			fs, err := s.DetectFilesystem()
			if err != nil {
				t.Fatalf("DetectFilesystem: %v", err)
			}
			if fs != tt.want {
				t.Errorf("result = %+v, want %+v", fs, tt.want)
			}
		})
	}
}

func TestDetectFilesystem_MSVCSTL(t *testing.T) {
	tests := []struct {
		name   string
		accept []string
		want   FeatureSupport
	}{
		{
			name:   "recent STL update supports filesystem without linking",
			accept: append(msvcMarkers(), "_MSVC_STL_UPDATE < 201803"),
			want:   FeatureSupport{Supported: true, RequiresExplicitLink: false},
		},
		{
			name:   "old STL update lacks filesystem",
			accept: msvcMarkers(),
			want:   FeatureSupport{Supported: false, RequiresExplicitLink: false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTester{accept: tt.accept}
			s := NewSession(ft, &cache{}, "windows")
			fs, err := s.DetectFilesystem()
			if err != nil {
				t.Fatalf("DetectFilesystem: %v", err)
			}
			if fs != tt.want {
				t.Errorf("result = %+v, want %+v", fs, tt.want)
			}
		})
	}
}

func TestDetectFilesystem_AutoDetectsStdlibOnce(t *testing.T) {
	ft := &fakeTester{accept: append(libstdcxxMarkers(), "_GLIBCXX_RELEASE < 8")}
	host := &cache{}
	s := NewSession(ft, host, "linux")

	if _, err := s.DetectFilesystem(); err != nil {
		t.Fatalf("first DetectFilesystem: %v", err)
	}
	afterFirst := ft.calls

	// The second call re-probes the feature but not the stdlib family:
	// only the two filesystem snippets run again.
	if _, err := s.DetectFilesystem(); err != nil {
		t.Fatalf("second DetectFilesystem: %v", err)
	}
	if got, want := ft.calls-afterFirst, 2; got != want {
		t.Errorf("second call compiled %d snippets, want %d", got, want)
	}
}
