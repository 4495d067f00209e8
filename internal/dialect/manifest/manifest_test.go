package manifest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/zclload/internal/dialect"
	"github.com/vvka-141/zclload/internal/files/filesystem"
	"github.com/vvka-141/zclload/internal/logging"
	"github.com/vvka-141/zclload/internal/model"
	"github.com/vvka-141/zclload/pkg/zclload"
)

const zclJSON = `{
  "version": 1,
  "category": "zigbee",
  "description": "Zigbee metadata",
  "xmlRoot": ["./zcl", "./extra"],
  "xmlFile": ["types.xml", "general.xml", "custom.xml", "missing.xml"],
  "manufacturersXml": "manufacturers.xml",
  "options": {
    "text": {
      "manufacturerCodes": "0x1002, 0x1003",
      "colors": ["Red", "Green"]
    },
    "bool": ["commandDiscovery"]
  },
  "defaults": {
    "text": { "manufacturerCodes": 4098, "colors": "red" },
    "bool": { "commandDiscovery": true }
  },
  "featureFlags": { "legacy": { "enabled": "1", "other": 0 } },
  "uiOptions": { "showNode": "true" },
  "supportCustomZclDevice": true,
  "listsUseAttributeAccessInterface": true,
  "attributeAccessInterfaceAttributes": { "On/Off": ["OnOff"] },
  "fabricHandling": {
    "automaticallyCreateFields": true,
    "indexFieldId": 254,
    "indexFieldName": "FabricIndex",
    "indexType": "fabric_idx"
  },
  "defaultReportable": true
}`

func newFS() *filesystem.MemoryFileSystem {
	fs := filesystem.NewMemoryFileSystem("/meta")
	fs.AddFile("zcl/types.xml", "<configurator/>")
	fs.AddFile("zcl/general.xml", "<configurator/>")
	fs.AddFile("extra/custom.xml", "<configurator/>")
	fs.AddFile("zcl/manufacturers.xml", "<map/>")
	return fs
}

func TestParseJSON(t *testing.T) {
	fs := newFS()
	logger, logs := logging.NewObserved()

	m, err := Parse("/meta/zcl.json", []byte(zclJSON), fs, logger)
	require.NoError(t, err)

	assert.Equal(t, dialect.KindJSONManifest, m.Kind)
	assert.Equal(t, []string{"/meta/zcl", "/meta/extra"}, m.Roots)
	assert.Equal(t, []string{"/meta/zcl/types.xml", "/meta/zcl/general.xml", "/meta/extra/custom.xml"}, m.Files)
	assert.Equal(t, "/meta/zcl/manufacturers.xml", m.ManufacturersXML)
	assert.Empty(t, m.ProfilesXML)
	assert.Equal(t, 1, logs.FilterMessageSnippet("missing.xml not found").Len())

	assert.Equal(t, "1", m.Version)
	assert.True(t, m.HasVersionInfo())
	assert.Equal(t, model.ReportingSuggested, m.DefaultReportingPolicy)
	assert.Equal(t, model.DefaultDiscriminators, m.DataTypes)
	assert.Equal(t, dialect.FabricHandling{
		AutomaticallyCreateFields: true,
		IndexFieldID:              254,
		IndexFieldName:            "FabricIndex",
		IndexType:                 "fabric_idx",
	}, m.Fabric)
	assert.True(t, m.SupportCustomZclDevice)

	ctx := m.Context(logger, zclload.DefaultStringPolicy())
	assert.Equal(t, "zigbee", ctx.Category)
	assert.True(t, ctx.ListsUseAttributeAccessInterface)
	assert.Equal(t, []string{"OnOff"}, ctx.AttributeAccessInterfaceAttributes["On/Off"])
}

func TestManifest_OptionSets(t *testing.T) {
	m, err := ParseJSON("/meta/zcl.json", []byte(zclJSON), newFS(), nil)
	require.NoError(t, err)

	sets := m.OptionSets()
	require.Len(t, sets, 5)

	assert.Equal(t, OptionSet{Category: "colors", Options: []model.PackageOption{
		{Code: "red", Label: "Red"}, {Code: "green", Label: "Green"},
	}}, sets[0])
	assert.Equal(t, "manufacturerCodes", sets[1].Category)
	assert.Equal(t, model.PackageOption{Code: "0x1002", Label: "0x1002"}, sets[1].Options[0])
	assert.Equal(t, OptionSet{Category: "commandDiscovery", Options: []model.PackageOption{
		{Code: "1", Label: "True"}, {Code: "0", Label: "False"},
	}}, sets[2])
	assert.Equal(t, OptionSet{Category: "legacy", Options: []model.PackageOption{
		{Code: "enabled", Label: "true"}, {Code: "other", Label: "false"},
	}}, sets[3])
	assert.Equal(t, OptionSet{Category: model.OptionUI, Options: []model.PackageOption{
		{Code: "showNode", Label: "true"},
	}}, sets[4])
}

func TestManifest_OptionDefaults(t *testing.T) {
	m, err := ParseJSON("/meta/zcl.json", []byte(zclJSON), newFS(), nil)
	require.NoError(t, err)

	assert.Equal(t, []OptionDefault{
		{Category: "colors", Code: "red"},
		{Category: "manufacturerCodes", Code: "4098", Alternate: "0x1002"},
		{Category: "commandDiscovery", Code: "1"},
	}, m.OptionDefaults())
}

func TestParseJSON_Minimal(t *testing.T) {
	fs := newFS()
	m, err := ParseJSON("/meta/zcl.json", []byte(`{"xmlRoot": "./zcl", "xmlFile": ["general.xml"], "ZCLDataTypes": ["ENUM"], "defaultReportingPolicy": "PROHIBITED"}`), fs, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"/meta/zcl/general.xml"}, m.Files)
	assert.Equal(t, []string{"ENUM"}, m.DataTypes)
	assert.Equal(t, model.ReportingProhibited, m.DefaultReportingPolicy)
	assert.False(t, m.Fabric.AutomaticallyCreateFields)
	assert.False(t, m.HasVersionInfo())
	assert.Empty(t, m.OptionSets())
}

func TestParseJSON_Errors(t *testing.T) {
	fs := newFS()
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"syntax", `{"xmlRoot": }`, ""},
		{"missing root", `{"xmlFile": []}`, "xmlRoot"},
		{"missing files", `{"xmlRoot": "zcl"}`, "xmlFile"},
		{"bad default", `{"xmlRoot": "zcl", "xmlFile": [], "defaults": {"text": {"a": {}}}}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON("/meta/zcl.json", []byte(tt.content), fs, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, zclload.ErrParseFailed))
			var pe *dialect.ParseError
			require.True(t, errors.As(err, &pe))
			if tt.field != "" {
				assert.Equal(t, tt.field, pe.Field)
			}
		})
	}
}

const zclProperties = `# legacy manifest
xmlRoot=./zcl,./extra
xmlFile=types.xml,general.xml,\
  custom.xml
manufacturersXml=manufacturers.xml
version=ZCL Test Data
category=zigbee
supportCustomZclDevice=true
options.text.colors=Red, Green
options.bool=commandDiscovery,reportable
defaults.text.colors=red
defaults.bool.commandDiscovery=false
featureFlags.legacy.enabled=1
featureFlags.nocategory=1
home=${HOME}
`

func TestParseProperties(t *testing.T) {
	logger, logs := logging.NewObserved()
	m, err := Parse("/meta/zcl.properties", []byte(zclProperties), newFS(), logger)
	require.NoError(t, err)

	assert.Equal(t, dialect.KindPropertiesManifest, m.Kind)
	assert.Equal(t, []string{"/meta/zcl/types.xml", "/meta/zcl/general.xml", "/meta/extra/custom.xml"}, m.Files)
	assert.Equal(t, "/meta/zcl/manufacturers.xml", m.ManufacturersXML)
	assert.Equal(t, "ZCL Test Data", m.Version)
	assert.True(t, m.SupportCustomZclDevice)
	assert.Equal(t, map[string][]string{"colors": {"Red", "Green"}}, m.TextOptions)
	assert.Equal(t, []string{"commandDiscovery", "reportable"}, m.BoolOptions)
	assert.Equal(t, map[string]TextDefault{"colors": {Value: "red"}}, m.TextDefaults)
	assert.Equal(t, map[string]bool{"commandDiscovery": false}, m.BoolDefaults)
	assert.Equal(t, map[string]map[string]string{"legacy": {"enabled": "1"}}, m.FeatureFlags)
	assert.False(t, m.Fabric.AutomaticallyCreateFields)
	assert.Equal(t, model.DefaultReportingPolicy, m.DefaultReportingPolicy)
	assert.Equal(t, 1, logs.FilterMessageSnippet("has no category").Len())
}

func TestParseProperties_MissingKeys(t *testing.T) {
	_, err := ParseProperties("/meta/zcl.properties", []byte("xmlFile=a.xml\n"), newFS(), nil)
	assert.True(t, errors.Is(err, zclload.ErrParseFailed))

	_, err = ParseProperties("/meta/zcl.properties", []byte("xmlRoot=zcl\n"), newFS(), nil)
	assert.True(t, errors.Is(err, zclload.ErrParseFailed))
}

func TestParse_NotAManifest(t *testing.T) {
	_, err := Parse("/meta/general.xml", nil, newFS(), nil)
	assert.True(t, errors.Is(err, zclload.ErrUnknownDialect))

	_, err = Parse("/meta/readme.md", nil, newFS(), nil)
	assert.True(t, errors.Is(err, zclload.ErrUnknownDialect))
}

func TestFromLibrary(t *testing.T) {
	fs := filesystem.NewMemoryFileSystem("/dotdot")
	fs.AddFile("library.xml", "<library/>")
	fs.AddFile("OnOff.xml", "<cluster/>")
	logger, logs := logging.NewObserved()

	m := FromLibrary("/dotdot/library.xml", []string{"OnOff.xml", "Level.xml"}, fs, logger)
	assert.Equal(t, dialect.KindDotdotXML, m.Kind)
	assert.Equal(t, []string{"/dotdot/OnOff.xml"}, m.Files)
	assert.Equal(t, model.DefaultDiscriminators, m.DataTypes)
	assert.Equal(t, 1, logs.FilterMessageSnippet("Level.xml not found").Len())
}

func TestParseMapFile(t *testing.T) {
	opts, err := ParseMapFile("m.xml", []byte(`<map>
  <mapping code="0x1002" translation="Ember"/>
  <mapping code="0x1049" translation="Silicon Labs"/>
</map>`))
	require.NoError(t, err)
	assert.Equal(t, []model.PackageOption{
		{Code: "0x1002", Label: "Ember"},
		{Code: "0x1049", Label: "Silicon Labs"},
	}, opts)

	_, err = ParseMapFile("m.xml", []byte(`<profiles/>`))
	assert.True(t, errors.Is(err, zclload.ErrParseFailed))

	_, err = ParseMapFile("m.xml", []byte(`<map><mapping translation="x"/></map>`))
	assert.True(t, errors.Is(err, zclload.ErrParseFailed))
}
