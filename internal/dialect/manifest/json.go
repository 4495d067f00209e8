package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/vvka-141/zclload/internal/dialect"
	"github.com/vvka-141/zclload/internal/files/filesystem"
	"github.com/vvka-141/zclload/internal/model"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// stringList accepts either a JSON array of strings or one comma-separated
// string.
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(b), []byte("[")) {
		var items []string
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*l = splitList(s)
	return nil
}

// scalar is a JSON string, number or bool kept as its text form.
type scalar struct {
	text    string
	numeric bool
}

func (s *scalar) UnmarshalJSON(b []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		s.text = x
	case json.Number:
		s.text, s.numeric = x.String(), true
	case bool:
		s.text = strconv.FormatBool(x)
	case nil:
		s.text = ""
	default:
		return fmt.Errorf("expected a string, number or bool, got %s", string(b))
	}
	return nil
}

type jsonManifest struct {
	XMLRoot          *stringList `json:"xmlRoot"`
	XMLFile          *stringList `json:"xmlFile"`
	ManufacturersXML string      `json:"manufacturersXml"`
	ProfilesXML      string      `json:"profilesXml"`
	ZCLSchema        string      `json:"zclSchema"`
	ZCLValidation    string      `json:"zclValidation"`

	Options *struct {
		Text map[string]stringList `json:"text"`
		Bool stringList            `json:"bool"`
	} `json:"options"`
	Defaults *struct {
		Text map[string]scalar `json:"text"`
		Bool map[string]bool   `json:"bool"`
	} `json:"defaults"`
	FeatureFlags map[string]map[string]scalar `json:"featureFlags"`
	UIOptions    map[string]scalar            `json:"uiOptions"`

	Version     scalar `json:"version"`
	Category    string `json:"category"`
	Description string `json:"description"`

	SupportCustomZclDevice             bool                    `json:"supportCustomZclDevice"`
	ListsUseAttributeAccessInterface   bool                    `json:"listsUseAttributeAccessInterface"`
	AttributeAccessInterfaceAttributes map[string][]string     `json:"attributeAccessInterfaceAttributes"`
	ZCLDataTypes                       []string                `json:"ZCLDataTypes"`
	FabricHandling                     *dialect.FabricHandling `json:"fabricHandling"`
	DefaultReportable                  *bool                   `json:"defaultReportable"`
	DefaultReportingPolicy             string                  `json:"defaultReportingPolicy"`
}

// ParseJSON reads a zcl.json manifest. xmlRoot and xmlFile are required.
func ParseJSON(path string, content []byte, fsys filesystem.FileSystemProvider, logger zclload.Logger) (*Manifest, error) {
	var raw jsonManifest
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, dialect.WrapJSONError(err, path)
	}
	if raw.XMLRoot == nil || len(*raw.XMLRoot) == 0 {
		return nil, dialect.NewParseError(path, "xmlRoot", "missing required key")
	}
	if raw.XMLFile == nil {
		return nil, dialect.NewParseError(path, "xmlFile", "missing required key")
	}

	l := newLocator(path, *raw.XMLRoot, fsys, logger)
	m := &Manifest{
		Path:                               path,
		Kind:                               dialect.KindJSONManifest,
		Roots:                              l.roots,
		Files:                              l.all(*raw.XMLFile),
		Version:                            raw.Version.text,
		Category:                           raw.Category,
		Description:                        raw.Description,
		SupportCustomZclDevice:             raw.SupportCustomZclDevice,
		ListsUseAttributeAccessInterface:   raw.ListsUseAttributeAccessInterface,
		AttributeAccessInterfaceAttributes: raw.AttributeAccessInterfaceAttributes,
		DataTypes:                          raw.ZCLDataTypes,
		DefaultReportingPolicy:             dialect.PackageReportingPolicy(raw.DefaultReportable, raw.DefaultReportingPolicy),
	}
	m.ManufacturersXML, _ = l.find(raw.ManufacturersXML)
	m.ProfilesXML, _ = l.find(raw.ProfilesXML)
	m.Schema, _ = l.find(raw.ZCLSchema)
	m.Validation, _ = l.find(raw.ZCLValidation)

	if m.DataTypes == nil {
		m.DataTypes = model.DefaultDiscriminators
	}
	if raw.FabricHandling != nil {
		m.Fabric = *raw.FabricHandling
	}

	if raw.Options != nil {
		if len(raw.Options.Text) > 0 {
			m.TextOptions = make(map[string][]string, len(raw.Options.Text))
			for category, values := range raw.Options.Text {
				m.TextOptions[category] = values
			}
		}
		m.BoolOptions = raw.Options.Bool
	}
	if raw.Defaults != nil {
		if len(raw.Defaults.Text) > 0 {
			m.TextDefaults = make(map[string]TextDefault, len(raw.Defaults.Text))
			for category, v := range raw.Defaults.Text {
				m.TextDefaults[category] = TextDefault{Value: v.text, Numeric: v.numeric}
			}
		}
		m.BoolDefaults = raw.Defaults.Bool
	}
	if len(raw.FeatureFlags) > 0 {
		m.FeatureFlags = make(map[string]map[string]string, len(raw.FeatureFlags))
		for category, flags := range raw.FeatureFlags {
			m.FeatureFlags[category] = make(map[string]string, len(flags))
			for code, v := range flags {
				m.FeatureFlags[category][code] = v.text
			}
		}
	}
	if len(raw.UIOptions) > 0 {
		m.UIOptions = make(map[string]string, len(raw.UIOptions))
		for code, v := range raw.UIOptions {
			m.UIOptions[code] = v.text
		}
	}

	if logger != nil {
		logger.Verbose("%s: %d files, version %q", path, len(m.Files), m.Version)
	}
	return m, nil
}
