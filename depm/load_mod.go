package depm

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml"
)

// LumenModFileName is the name for Lumen module files.
const LumenModFileName = "lumen-mod.toml"

// LumenVersion is the current Lumen language version as a string.
const LumenVersion string = "0.4.0"

// HostConfig is the host-supplied configuration the middle-end recognises.
type HostConfig struct {
	OutputDirectory   string `toml:"output_directory"`
	DumpIR            bool   `toml:"dump_ir"`
	ShowGenerated     bool   `toml:"show_generated"`
	DebugInfo         bool   `toml:"debug_info"`
	ReflectionEnabled bool   `toml:"reflection_enabled"`
}

// tomlModule represents a Lumen module as it is encoded in TOML.
type tomlModule struct {
	Name         string     `toml:"name"`
	LumenVersion string     `toml:"lumen-version"`
	Config       HostConfig `toml:"options"`
}

// ModuleFile is the deserialized, validated content of a module file.
type ModuleFile struct {
	// The module's declared name.
	Name string

	// The absolute path of the module directory.
	AbsPath string

	// The host configuration options.
	Config HostConfig
}

// LoadModuleFile loads and validates the module file in the given directory.
// abspath is the absolute path to the module directory.
func LoadModuleFile(abspath string) (*ModuleFile, error) {
	f, err := os.Open(filepath.Join(abspath, LumenModFileName))
	if err != nil {
		return nil, fmt.Errorf("unable to open module file at `%s`: %s", abspath, err)
	}
	defer f.Close()

	buff, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("error reading module file at `%s`: %s", abspath, err)
	}

	tomlMod := &tomlModule{}
	if err := toml.Unmarshal(buff, tomlMod); err != nil {
		return nil, fmt.Errorf("error parsing module file at `%s`: %s", abspath, err)
	}

	if tomlMod.Name == "" {
		return nil, fmt.Errorf("module at `%s` is missing a module name", abspath)
	}

	if !IsValidIdentifier(tomlMod.Name) {
		return nil, fmt.Errorf("module name `%s` must be a valid identifier", tomlMod.Name)
	}

	if err := validateVersion(tomlMod); err != nil {
		return nil, err
	}

	if tomlMod.Config.OutputDirectory == "" {
		tomlMod.Config.OutputDirectory = filepath.Join(abspath, "out")
	}

	return &ModuleFile{
		Name:    tomlMod.Name,
		AbsPath: abspath,
		Config:  tomlMod.Config,
	}, nil
}

// validateVersion checks the module's declared language version against the
// compiler's: any module declaring a later version (major, minor, or patch)
// than the compiler implements cannot be compiled.
func validateVersion(tomlMod *tomlModule) error {
	if tomlMod.LumenVersion == "" {
		return nil
	}

	declared, err := semver.NewVersion(tomlMod.LumenVersion)
	if err != nil {
		return fmt.Errorf("module `%s` declares invalid lumen-version `%s`: %s",
			tomlMod.Name, tomlMod.LumenVersion, err)
	}

	current := semver.MustParse(LumenVersion)
	if declared.GreaterThan(current) {
		return fmt.Errorf("module `%s` requires lumen v%s but this compiler implements v%s",
			tomlMod.Name, declared, current)
	}

	return nil
}

// IsValidIdentifier returns whether or not a given string would be a valid
// identifier (module name, package name, etc.).
func IsValidIdentifier(idstr string) bool {
	if idstr == "" {
		return false
	}

	if idstr[0] == '_' || ('a' <= idstr[0] && idstr[0] <= 'z') || ('A' <= idstr[0] && idstr[0] <= 'Z') {
		for _, c := range idstr[1:] {
			if c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
				continue
			}

			return false
		}

		return true
	}

	return false
}
