// Package manifest reads top-level metadata manifests (zcl.json and
// zcl.properties) and dotdot library roots into a Manifest: the list of
// sub-files to load plus the package-wide options and normalization settings.
package manifest

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vvka-141/zclload/internal/dialect"
	"github.com/vvka-141/zclload/internal/files/filesystem"
	"github.com/vvka-141/zclload/internal/model"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// Manifest is a normalized top-level manifest. All file paths are resolved
// against the xmlRoot directories and exist at parse time.
type Manifest struct {
	Path string
	Kind dialect.Kind

	// Roots are the xmlRoot directories, joined to the manifest directory.
	Roots []string
	// Files are the located sub-files in declaration order.
	Files []string

	ManufacturersXML string
	ProfilesXML      string
	Schema           string
	Validation       string

	TextOptions  map[string][]string
	BoolOptions  []string
	TextDefaults map[string]TextDefault
	BoolDefaults map[string]bool
	FeatureFlags map[string]map[string]string
	UIOptions    map[string]string

	Version     string
	Category    string
	Description string

	SupportCustomZclDevice             bool
	ListsUseAttributeAccessInterface   bool
	AttributeAccessInterfaceAttributes map[string][]string
	DataTypes                          []string
	Fabric                             dialect.FabricHandling
	DefaultReportingPolicy             string
}

// TextDefault is the default option code for a text option category.
type TextDefault struct {
	Value   string
	Numeric bool
}

// Alternate is the 0x-prefixed hex spelling tried when a numeric default
// does not match an option code as written.
func (d TextDefault) Alternate() (string, bool) {
	if !d.Numeric {
		return "", false
	}
	n, err := strconv.ParseInt(d.Value, 10, 64)
	if err != nil {
		return "", false
	}
	return "0x" + strconv.FormatInt(n, 16), true
}

// HasVersionInfo reports whether the manifest declares a version, category
// or description.
func (m *Manifest) HasVersionInfo() bool {
	return m.Version != "" || m.Category != "" || m.Description != ""
}

// Context returns the normalization settings for the manifest's sub-files.
func (m *Manifest) Context(logger zclload.Logger, policy zclload.StringPolicy) dialect.Context {
	return dialect.Context{
		Category:                           m.Category,
		DefaultReportingPolicy:             m.DefaultReportingPolicy,
		Strings:                            policy,
		Fabric:                             m.Fabric,
		ListsUseAttributeAccessInterface:   m.ListsUseAttributeAccessInterface,
		AttributeAccessInterfaceAttributes: m.AttributeAccessInterfaceAttributes,
		Logger:                             logger,
	}
}

// OptionSet is the options of one category, ready for insertion.
type OptionSet struct {
	Category string
	Options  []model.PackageOption
}

// OptionSets flattens text options, bool options, feature flags and UI
// options in that order. Categories are sorted within each group.
func (m *Manifest) OptionSets() []OptionSet {
	var sets []OptionSet
	for _, category := range sortedKeys(m.TextOptions) {
		set := OptionSet{Category: category}
		for _, v := range m.TextOptions[category] {
			set.Options = append(set.Options, model.PackageOption{Code: strings.ToLower(v), Label: v})
		}
		sets = append(sets, set)
	}
	for _, category := range m.BoolOptions {
		sets = append(sets, OptionSet{
			Category: category,
			Options: []model.PackageOption{
				{Code: "1", Label: "True"},
				{Code: "0", Label: "False"},
			},
		})
	}
	for _, category := range sortedKeys(m.FeatureFlags) {
		flags := m.FeatureFlags[category]
		set := OptionSet{Category: category}
		for _, code := range sortedKeys(flags) {
			set.Options = append(set.Options, model.PackageOption{Code: code, Label: strconv.FormatBool(flags[code] == "1")})
		}
		sets = append(sets, set)
	}
	if len(m.UIOptions) > 0 {
		set := OptionSet{Category: model.OptionUI}
		for _, code := range sortedKeys(m.UIOptions) {
			set.Options = append(set.Options, model.PackageOption{Code: code, Label: m.UIOptions[code]})
		}
		sets = append(sets, set)
	}
	return sets
}

// OptionDefault names the option a category defaults to.
type OptionDefault struct {
	Category string
	Code     string
	// Alternate is tried when Code matches nothing.
	Alternate string
}

// OptionDefaults lists text defaults then bool defaults, sorted by category.
func (m *Manifest) OptionDefaults() []OptionDefault {
	var defaults []OptionDefault
	for _, category := range sortedKeys(m.TextDefaults) {
		d := m.TextDefaults[category]
		alt, _ := d.Alternate()
		defaults = append(defaults, OptionDefault{Category: category, Code: d.Value, Alternate: alt})
	}
	for _, category := range sortedKeys(m.BoolDefaults) {
		code := "0"
		if m.BoolDefaults[category] {
			code = "1"
		}
		defaults = append(defaults, OptionDefault{Category: category, Code: code})
	}
	return defaults
}

// Parse dispatches on the manifest extension.
func Parse(path string, content []byte, fsys filesystem.FileSystemProvider, logger zclload.Logger) (*Manifest, error) {
	kind, err := dialect.DetectByExtension(path)
	if err != nil {
		return nil, err
	}
	switch kind {
	case dialect.KindJSONManifest:
		return ParseJSON(path, content, fsys, logger)
	case dialect.KindPropertiesManifest:
		return ParseProperties(path, content, fsys, logger)
	}
	return nil, fmt.Errorf("%s is not a manifest: %w", path, zclload.ErrUnknownDialect)
}

// FromLibrary builds a manifest for a dotdot library root. Includes are
// resolved relative to the library directory.
func FromLibrary(path string, includes []string, fsys filesystem.FileSystemProvider, logger zclload.Logger) *Manifest {
	l := locator{fsys: fsys, roots: []string{filepath.Dir(path)}, logger: logger}
	return &Manifest{
		Path:                   path,
		Kind:                   dialect.KindDotdotXML,
		Roots:                  l.roots,
		Files:                  l.all(includes),
		DataTypes:              model.DefaultDiscriminators,
		DefaultReportingPolicy: model.DefaultReportingPolicy,
	}
}

type locator struct {
	fsys   filesystem.FileSystemProvider
	roots  []string
	logger zclload.Logger
}

func newLocator(manifestPath string, roots []string, fsys filesystem.FileSystemProvider, logger zclload.Logger) locator {
	dir := filepath.Dir(manifestPath)
	l := locator{fsys: fsys, logger: logger}
	for _, r := range roots {
		l.roots = append(l.roots, filepath.Join(dir, r))
	}
	return l
}

// find tries every root in order. Empty names are not an error.
func (l locator) find(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if filepath.IsAbs(name) && filesystem.Exists(l.fsys, name) {
		return name, true
	}
	for _, root := range l.roots {
		candidate := filepath.Join(root, name)
		if filesystem.Exists(l.fsys, candidate) {
			return candidate, true
		}
	}
	if l.logger != nil {
		l.logger.Warn("%s not found in %s, skipping", name, strings.Join(l.roots, ", "))
	}
	return "", false
}

func (l locator) all(names []string) []string {
	var found []string
	for _, name := range names {
		if p, ok := l.find(name); ok {
			found = append(found, p)
		}
	}
	return found
}

// splitList splits a comma-separated value and drops empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
