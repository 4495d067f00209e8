package zclxml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/zclload/internal/dialect"
	"github.com/vvka-141/zclload/internal/logging"
	"github.com/vvka-141/zclload/internal/model"
	"github.com/vvka-141/zclload/pkg/zclload"
)

func parseFixture(t *testing.T, name string, ctx dialect.Context) *model.Graph {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	g, err := Parse(name, content, ctx)
	require.NoError(t, err)
	return g
}

func ptr(n int64) *int64 { return &n }

func TestParse_Cluster(t *testing.T) {
	g := parseFixture(t, "general.xml", dialect.DefaultContext(nil))

	require.Len(t, g.Clusters, 1)
	c := g.Clusters[0]
	assert.Equal(t, int64(6), c.Code)
	assert.Equal(t, "On/Off", c.Name)
	assert.Equal(t, "General", c.Domain)
	assert.Equal(t, "ON_OFF_CLUSTER", c.Define)
	assert.Equal(t, "Attributes and commands for switching devices on and off.", c.Description)
	assert.Equal(t, ptr(0x1002), c.ManufacturerCode)
	assert.Equal(t, []model.Tag{{Name: "LT", Description: "Lighting"}}, c.Tags)
}

func TestParse_RemovedClusterIsKept(t *testing.T) {
	content := []byte(`<configurator>
  <cluster removedIn="1.3">
    <name>Legacy</name>
    <code>0x0099</code>
    <attribute side="server" code="0x0000" type="int8u">Kept</attribute>
    <attribute side="server" code="0x0001" type="int8u" removedIn="1.2">Dropped</attribute>
  </cluster>
</configurator>`)
	g, err := Parse("legacy.xml", content, dialect.DefaultContext(nil))
	require.NoError(t, err)

	require.Len(t, g.Clusters, 1)
	c := g.Clusters[0]
	assert.Equal(t, "1.3", c.RemovedIn)
	require.Len(t, c.Attributes, 1)
	assert.Equal(t, "Kept", c.Attributes[0].Name)
}

func TestParse_SideFanOut(t *testing.T) {
	g := parseFixture(t, "general.xml", dialect.DefaultContext(nil))
	attrs := g.Clusters[0].Attributes

	var onOff []model.Attribute
	for _, a := range attrs {
		if a.Code == 0 {
			onOff = append(onOff, a)
		}
	}
	require.Len(t, onOff, 2)
	assert.Equal(t, model.SideClient, onOff[0].Side)
	assert.Equal(t, model.SideServer, onOff[1].Side)

	client, server := onOff[0], onOff[1]
	client.Side, server.Side = "", ""
	assert.Empty(t, cmp.Diff(client, server), "sides differ only in Side")

	assert.Equal(t, "OnOff", onOff[0].Name)
	assert.Equal(t, "boolean", onOff[0].Type, "all-uppercase types are lowercased")
	assert.Equal(t, model.ReportingSuggested, onOff[0].ReportingPolicy)
	assert.Equal(t, ptr(0x1002), onOff[0].ManufacturerCode, "manufacturer code is inherited")
}

func TestParse_AttributeDetails(t *testing.T) {
	logger, logs := logging.NewObserved()
	g := parseFixture(t, "general.xml", dialect.DefaultContext(logger))
	attrs := g.Clusters[0].Attributes

	require.Len(t, attrs, 3, "removed attribute is dropped")
	label := attrs[2]
	assert.Equal(t, "Label", label.Name, "name falls back to description")
	assert.Equal(t, ptr(zclload.DefaultLongStringLength), label.MaxLength)
	assert.Equal(t, model.ReportingOptional, label.ReportingPolicy)
	assert.Equal(t, []model.Access{
		{Op: "read", Role: "view"},
		{Op: "write", Role: "manage"},
	}, label.Access)
	assert.Equal(t, 1, logs.FilterMessageSnippet("long string max length").Len())
}

func TestParse_CommandFieldIDs(t *testing.T) {
	g := parseFixture(t, "general.xml", dialect.DefaultContext(nil))
	cmds := g.Clusters[0].Commands

	require.Len(t, cmds, 2, "removed command is dropped")

	off := cmds[0]
	var ids []int
	for _, a := range off.Args {
		ids = append(ids, a.FieldID)
	}
	assert.Equal(t, []int{0, 5, 6}, ids)
	assert.Equal(t, "OffResponse", off.ResponseName)
	assert.False(t, off.IsDefaultResponseEnabled)
	assert.Equal(t, "INT8U", off.Args[0].Type)

	on := cmds[1]
	assert.Equal(t, ptr(0x1234), on.ManufacturerCode)
	require.Len(t, on.Args, 2)
	assert.Equal(t, "c", on.Args[1].Name)
	assert.Equal(t, 2, on.Args[1].FieldID, "counter advances past removed args")
}

func TestParse_Events(t *testing.T) {
	ctx := dialect.DefaultContext(nil)
	g := parseFixture(t, "general.xml", ctx)
	ev := g.Clusters[0].Events
	require.Len(t, ev, 1)
	require.Len(t, ev[0].Fields, 2)
	assert.Equal(t, 2, ev[0].Fields[1].FieldID)
	assert.Equal(t, []model.Access{{Op: "read", Role: "view"}}, ev[0].Access)

	ctx.Fabric = dialect.FabricHandling{AutomaticallyCreateFields: true, IndexFieldID: 254, IndexFieldName: "FabricIndex", IndexType: "fabric_idx"}
	g = parseFixture(t, "general.xml", ctx)
	fields := g.Clusters[0].Events[0].Fields
	require.Len(t, fields, 3)
	assert.Equal(t, model.EventField{FieldID: 254, Name: "FabricIndex", Type: "fabric_idx"}, fields[2])
}

func TestParse_Vocabulary(t *testing.T) {
	g := parseFixture(t, "general.xml", dialect.DefaultContext(nil))

	assert.Len(t, g.AccessControl.Operations, 2)
	require.Len(t, g.AccessControl.Roles, 2)
	assert.Equal(t, 1, g.AccessControl.Roles[1].Level)
	assert.Len(t, g.AccessControl.Modifiers, 1)

	require.Len(t, g.Domains, 1)
	require.NotNil(t, g.Domains[0].Latest)
	assert.Equal(t, "zcl-7.0", g.Domains[0].Latest.Code)
	assert.True(t, g.Domains[0].Latest.Certifiable)
	require.Len(t, g.Domains[0].Older, 1)

	require.Len(t, g.DefaultAccess, 1)
	assert.Equal(t, "command", g.DefaultAccess[0].EntityType)
}

func TestParse_GlobalsAndExtensions(t *testing.T) {
	g := parseFixture(t, "general.xml", dialect.DefaultContext(nil))

	assert.Len(t, g.Globals.Attributes, 2, "either fans out")
	assert.Len(t, g.Globals.Commands, 1)

	require.Len(t, g.ClusterExtensions, 1)
	assert.Equal(t, int64(8), g.ClusterExtensions[0].Code)
	assert.Equal(t, "ExtraLevel", g.ClusterExtensions[0].Attributes[0].Name)

	require.Len(t, g.GlobalAttributeDefaults, 1)
	d := g.GlobalAttributeDefaults[0]
	assert.Equal(t, int64(6), d.ClusterCode)
	require.Len(t, d.Attributes, 2)
	assert.Equal(t, []model.FeatureBit{{Tag: "LT", Bit: 0, Value: true}}, d.Attributes[0].FeatureBits)
}

func TestParse_DeviceType(t *testing.T) {
	g := parseFixture(t, "general.xml", dialect.DefaultContext(nil))
	require.Len(t, g.DeviceTypes, 1)

	want := model.DeviceType{
		Code:        0x0100,
		ProfileID:   0x0104,
		Domain:      "HA",
		Name:        "HA-onoff",
		Description: "HA On/Off Light",
		Clusters: []model.DeviceTypeCluster{
			{ClusterName: "On/Off", Server: true, ClientLocked: true, ServerLocked: true,
				RequiredAttributes: []string{"ON_OFF"}, RequiredCommands: []string{"Off"}},
			{ClusterName: "Basic", Client: true, ClientLocked: true},
		},
	}
	assert.Empty(t, cmp.Diff(want, g.DeviceTypes[0]))
}

func TestParse_Types(t *testing.T) {
	logger, logs := logging.NewObserved()
	g := parseFixture(t, "types.xml", dialect.DefaultContext(logger))

	assert.True(t, g.IsTypeFile())
	require.Len(t, g.Atomics, 4)
	assert.Equal(t, int64(0x42), g.Atomics[3].ID)
	assert.True(t, g.Atomics[1].IsSigned)

	require.Len(t, g.Enums, 2)
	demo := g.Enums[0]
	assert.Equal(t, "enum8", demo.Type)
	assert.Empty(t, cmp.Diff([]model.EnumItem{{Name: "A", Value: 0, FieldID: 0}, {Name: "B", Value: 1, FieldID: 1}}, demo.Items))

	status := g.Enums[1]
	assert.Equal(t, "enum8", status.Type, "int storage type is rewritten")
	assert.Equal(t, []int64{6}, status.ClusterCodes)
	assert.Equal(t, 3, status.Items[0].FieldID)
	assert.Equal(t, 4, status.Items[1].FieldID)
	assert.Equal(t, 1, logs.FilterMessageSnippet("type contradiction").Len())

	require.Len(t, g.Bitmaps, 1)
	assert.Equal(t, "bitmap8", g.Bitmaps[0].Type)
	assert.Equal(t, "bool", g.Bitmaps[0].Fields[0].Type)
	assert.Equal(t, "enum8", g.Bitmaps[0].Fields[1].Type)
	assert.Equal(t, 4, g.Bitmaps[0].Fields[1].FieldID)

	require.Len(t, g.Structs, 1)
	s := g.Structs[0]
	assert.True(t, s.IsFabricScoped)
	assert.Equal(t, "node_id", s.Items[0].Type)
	assert.Len(t, s.Items, 2, "fabric index only added when enabled")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", `<configurator><cluster></configurator>`},
		{"wrong root", `<library/>`},
		{"cluster without code", `<configurator><cluster><name>X</name></cluster></configurator>`},
		{"bad attribute code", `<configurator><cluster><name>X</name><code>1</code><attribute code="zz" type="int8u">A</attribute></cluster></configurator>`},
		{"extension without code", `<configurator><clusterExtension/></configurator>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Parse("bad.xml", []byte(tt.content), dialect.DefaultContext(nil))
			require.Error(t, err)
			assert.Nil(t, g)
			assert.True(t, errors.Is(err, zclload.ErrParseFailed))
			var pe *dialect.ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
}
