package manifest

import (
	"strings"

	"github.com/magiconair/properties"
	"github.com/vvka-141/zclload/internal/dialect"
	"github.com/vvka-141/zclload/internal/files/filesystem"
	"github.com/vvka-141/zclload/internal/model"
	"github.com/vvka-141/zclload/pkg/zclload"
)

const (
	prefixTextOptions  = "options.text."
	prefixTextDefaults = "defaults.text."
	prefixBoolDefaults = "defaults.bool."
	prefixFeatureFlags = "featureFlags."
	prefixUIOptions    = "uiOptions."
)

// ParseProperties reads a legacy zcl.properties manifest. Lists are
// comma-separated and option maps use dotted key namespaces, for example
// options.text.<category> or featureFlags.<category>.<code>.
// fabricHandling is not supported in this format.
func ParseProperties(path string, content []byte, fsys filesystem.FileSystemProvider, logger zclload.Logger) (*Manifest, error) {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadBytes(content)
	if err != nil {
		return nil, &dialect.ParseError{Path: path, Message: err.Error()}
	}

	roots := splitList(p.GetString("xmlRoot", ""))
	if len(roots) == 0 {
		return nil, dialect.NewParseError(path, "xmlRoot", "missing required key")
	}
	fileList, ok := p.Get("xmlFile")
	if !ok {
		return nil, dialect.NewParseError(path, "xmlFile", "missing required key")
	}

	l := newLocator(path, roots, fsys, logger)
	m := &Manifest{
		Path:                   path,
		Kind:                   dialect.KindPropertiesManifest,
		Roots:                  l.roots,
		Files:                  l.all(splitList(fileList)),
		BoolOptions:            splitList(p.GetString("options.bool", "")),
		Version:                p.GetString("version", ""),
		Category:               p.GetString("category", ""),
		Description:            p.GetString("description", ""),
		SupportCustomZclDevice: propBool(p.GetString("supportCustomZclDevice", "")),
		DataTypes:              model.DefaultDiscriminators,
		DefaultReportingPolicy: dialect.PackageReportingPolicy(nil, p.GetString("defaultReportingPolicy", "")),
	}
	m.ManufacturersXML, _ = l.find(p.GetString("manufacturersXml", ""))
	m.ProfilesXML, _ = l.find(p.GetString("profilesXml", ""))
	m.Schema, _ = l.find(p.GetString("zclSchema", ""))
	m.Validation, _ = l.find(p.GetString("zclValidation", ""))

	for _, key := range p.Keys() {
		value := p.GetString(key, "")
		switch {
		case strings.HasPrefix(key, prefixTextOptions):
			if m.TextOptions == nil {
				m.TextOptions = make(map[string][]string)
			}
			m.TextOptions[strings.TrimPrefix(key, prefixTextOptions)] = splitList(value)
		case strings.HasPrefix(key, prefixTextDefaults):
			if m.TextDefaults == nil {
				m.TextDefaults = make(map[string]TextDefault)
			}
			m.TextDefaults[strings.TrimPrefix(key, prefixTextDefaults)] = TextDefault{Value: strings.TrimSpace(value)}
		case strings.HasPrefix(key, prefixBoolDefaults):
			if m.BoolDefaults == nil {
				m.BoolDefaults = make(map[string]bool)
			}
			m.BoolDefaults[strings.TrimPrefix(key, prefixBoolDefaults)] = propBool(value)
		case strings.HasPrefix(key, prefixFeatureFlags):
			category, code, found := strings.Cut(strings.TrimPrefix(key, prefixFeatureFlags), ".")
			if !found {
				if logger != nil {
					logger.Warn("%s: feature flag %q has no category, ignoring", path, key)
				}
				continue
			}
			if m.FeatureFlags == nil {
				m.FeatureFlags = make(map[string]map[string]string)
			}
			if m.FeatureFlags[category] == nil {
				m.FeatureFlags[category] = make(map[string]string)
			}
			m.FeatureFlags[category][code] = strings.TrimSpace(value)
		case strings.HasPrefix(key, prefixUIOptions):
			if m.UIOptions == nil {
				m.UIOptions = make(map[string]string)
			}
			m.UIOptions[strings.TrimPrefix(key, prefixUIOptions)] = value
		}
	}

	if logger != nil {
		logger.Verbose("%s: %d files, version %q", path, len(m.Files), m.Version)
	}
	return m, nil
}

func propBool(s string) bool {
	s = strings.TrimSpace(s)
	return s == "1" || strings.EqualFold(s, "true")
}
