package dialect

import (
	"encoding/xml"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/zclload/internal/logging"
	"github.com/vvka-141/zclload/internal/model"
	"github.com/vvka-141/zclload/pkg/zclload"
)

func TestFieldIDs(t *testing.T) {
	ids := NewFieldIDs()
	var got []int
	for _, explicit := range []string{"", "5", ""} {
		n, err := ids.Next(explicit)
		require.NoError(t, err)
		got = append(got, n)
	}
	assert.Equal(t, []int{0, 5, 6}, got)

	_, err := ids.Next("five")
	assert.Error(t, err)
}

func TestFieldIDs_HexExplicit(t *testing.T) {
	ids := NewFieldIDs()
	n, err := ids.Next("0x10")
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	n, _ = ids.Next("")
	assert.Equal(t, 17, n)
}

func TestReportingPolicy(t *testing.T) {
	ctx := DefaultContext(nil)
	ctx.DefaultReportingPolicy = model.ReportingMandatory

	tests := []struct {
		name       string
		reportable string
		explicit   string
		want       string
	}{
		{"reportable true wins", "true", "prohibited", model.ReportingSuggested},
		{"reportable false wins", "false", "mandatory", model.ReportingOptional},
		{"explicit policy case-insensitive", "", "Prohibited", model.ReportingProhibited},
		{"package default", "", "", model.ReportingMandatory},
		{"unknown explicit falls back", "", "sometimes", model.ReportingMandatory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ctx.AttributeReportingPolicy(tt.reportable, tt.explicit))
		})
	}
}

func TestPackageReportingPolicy(t *testing.T) {
	yes, no := true, false
	assert.Equal(t, model.ReportingOptional, PackageReportingPolicy(nil, ""))
	assert.Equal(t, model.ReportingSuggested, PackageReportingPolicy(&yes, ""))
	assert.Equal(t, model.ReportingOptional, PackageReportingPolicy(&no, ""))
	assert.Equal(t, model.ReportingMandatory, PackageReportingPolicy(&yes, "MANDATORY"))
}

func TestDefaultStringLength(t *testing.T) {
	logger, logs := logging.NewObserved()
	ctx := DefaultContext(logger)

	got := ctx.DefaultStringLength("long_char_string", nil, "Label")
	require.NotNil(t, got)
	assert.Equal(t, int64(zclload.DefaultLongStringLength), *got)
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "Label")

	ctx.Category = "zigbee"
	got = ctx.DefaultStringLength("LONG_OCTET_STRING", nil, "Blob")
	assert.Equal(t, int64(zclload.DefaultZigbeeLongStringLength), *got)

	got = ctx.DefaultStringLength("char_string", nil, "Name")
	assert.Equal(t, int64(zclload.DefaultShortStringLength), *got)

	explicit := int64(16)
	got = ctx.DefaultStringLength("char_string", &explicit, "Name")
	assert.Equal(t, int64(16), *got)

	assert.Nil(t, ctx.DefaultStringLength("int8u", nil, "Level"))
}

func TestDefaultStringLength_CustomPolicy(t *testing.T) {
	ctx := DefaultContext(nil)
	ctx.Strings = zclload.StringPolicy{ConstrainedCategory: "thread", ConstrainedLong: 100, RelaxedLong: 500, Short: 32}
	ctx.Category = "thread"

	assert.Equal(t, int64(100), *ctx.DefaultStringLength("long_char_string", nil, "x"))
	assert.Equal(t, int64(32), *ctx.DefaultStringLength("octet_string", nil, "x"))
}

func TestParseInt(t *testing.T) {
	for in, want := range map[string]int64{"0x0006": 6, "0XFF": 255, "42": 42, " 7 ": 7, "-1": -1} {
		got, err := ParseInt(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseInt("0xZZ")
	assert.Error(t, err)
	_, err = ParseInt("")
	assert.Error(t, err)

	v, err := ParseHex("0006")
	require.NoError(t, err)
	assert.Equal(t, int64(6), v)

	p, err := ParseOptionalInt("")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSides(t *testing.T) {
	assert.Equal(t, []model.Side{model.SideClient, model.SideServer}, Sides("both"))
	assert.Equal(t, []model.Side{model.SideClient, model.SideServer}, Sides("either"))
	assert.Equal(t, []model.Side{model.SideClient}, Sides("client"))
	assert.Equal(t, []model.Side{model.SideServer}, Sides("server"))
}

func TestNormalizeType(t *testing.T) {
	assert.Equal(t, "int8u", NormalizeType("INT8U"))
	assert.Equal(t, "DemoEnum", NormalizeType("DemoEnum"))
	assert.Equal(t, "X", NormalizeType("X"))
}

func TestFixEnumType(t *testing.T) {
	logger, logs := logging.NewObserved()
	ctx := DefaultContext(logger)

	assert.Equal(t, "enum8", ctx.FixEnumType("Status", "INT8U"))
	assert.Equal(t, "enum16", ctx.FixEnumType("Mode", "bitmap16"))
	assert.Equal(t, "enum8", ctx.FixEnumType("Good", "ENUM8"))
	assert.Equal(t, 2, logs.FilterMessageSnippet("type contradiction").Len())
}

func TestNewAccess(t *testing.T) {
	assert.Equal(t, model.Access{Op: "read", Role: "view"}, NewAccess("read", "view", "", ""))
	assert.Equal(t, model.Access{Op: "write", Role: "manage", Modifier: "fabric-scoped"},
		NewAccess("write", "view", "manage", "fabric-scoped"))
}

func TestMaskToType(t *testing.T) {
	assert.Equal(t, "bool", MaskToType(0x01))
	assert.Equal(t, "enum8", MaskToType(0x0E))
	assert.Equal(t, "enum8", MaskToType(0xFF00))
	assert.Equal(t, "enum16", MaskToType(0x1FF00))
	assert.Equal(t, "enum32", MaskToType(0x1FFFF))
}

func TestFabricIndex(t *testing.T) {
	ctx := DefaultContext(nil)
	_, ok := ctx.FabricIndexEventField()
	assert.False(t, ok)

	ctx.Fabric = FabricHandling{AutomaticallyCreateFields: true, IndexFieldID: 254, IndexFieldName: "FabricIndex", IndexType: "fabric_idx"}
	f, ok := ctx.FabricIndexEventField()
	require.True(t, ok)
	assert.Equal(t, 254, f.FieldID)
	item, ok := ctx.FabricIndexStructItem()
	require.True(t, ok)
	assert.Equal(t, "fabric_idx", item.Type)
}

func TestStoragePolicy(t *testing.T) {
	ctx := DefaultContext(nil)
	assert.Equal(t, model.StorageAny, ctx.StoragePolicy("On/Off", "OnOff", "int8u"))

	ctx.ListsUseAttributeAccessInterface = true
	assert.Equal(t, model.StorageAttributeAccessInterface, ctx.StoragePolicy("On/Off", "List", "int8u"))

	ctx = DefaultContext(nil)
	ctx.AttributeAccessInterfaceAttributes = map[string][]string{"Basic": {"Location"}}
	assert.Equal(t, model.StorageAttributeAccessInterface, ctx.StoragePolicy("Basic", "Location", ""))
	assert.Equal(t, model.StorageAny, ctx.StoragePolicy("Basic", "Other", ""))
}

func TestWrapXMLError(t *testing.T) {
	var v struct{}
	err := xml.Unmarshal([]byte("<a><b></a>"), &v)
	require.Error(t, err)

	wrapped := WrapXMLError(err, "x.xml")
	var pe *ParseError
	require.True(t, errors.As(wrapped, &pe))
	assert.Equal(t, 1, pe.Line)
	assert.True(t, errors.Is(wrapped, zclload.ErrParseFailed))
	assert.True(t, strings.HasPrefix(wrapped.Error(), "x.xml (line 1)"))
}
