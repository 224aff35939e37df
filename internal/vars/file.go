package vars

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/semver"
)

// File is a parsed zbuild.toml project file. All fields are optional; a
// missing file behaves like an empty one.
type File struct {
	RequiredVersion string         `toml:"required_version"`
	BuildDir        string         `toml:"build_dir"`
	Standard        string         `toml:"standard"`
	Options         map[string]any `toml:"options"`
}

// Load parses the project file at path. A missing file is not an error and
// yields nil.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// CheckVersion enforces the file's required_version gate against the
// running tool version. Both sides are semver with or without the leading v.
func (f *File) CheckVersion(toolVersion string) error {
	if f == nil || f.RequiredVersion == "" {
		return nil
	}
	want := canonical(f.RequiredVersion)
	have := canonical(toolVersion)
	if !semver.IsValid(want) {
		return fmt.Errorf("invalid required_version %q", f.RequiredVersion)
	}
	if semver.Compare(have, want) < 0 {
		return fmt.Errorf("zbuild %s is older than required_version %s", toolVersion, f.RequiredVersion)
	}
	return nil
}

func canonical(v string) string {
	if v == "" || v[0] == 'v' {
		return v
	}
	return "v" + v
}
