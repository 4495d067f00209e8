package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/zclload/internal/discriminator"
	"github.com/vvka-141/zclload/internal/logging"
	"github.com/vvka-141/zclload/internal/model"
	"github.com/vvka-141/zclload/internal/store"
	"github.com/vvka-141/zclload/pkg/zclload"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	ctx      context.Context
	tx       zclload.Tx
	manifest int64
	loader   *Loader
	logs     *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s, err := store.OpenSQLite(ctx, store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { tx.Rollback(ctx) })

	logger, logs := logging.NewObserved()
	f := &fixture{ctx: ctx, tx: tx, logs: logs, loader: NewLoader(discriminator.NewResolver(), logger, 3)}
	f.manifest = f.pkg(t, "/meta/zcl.json")
	require.NoError(t, discriminator.Ensure(ctx, tx, f.manifest, nil))
	return f
}

func (f *fixture) pkg(t *testing.T, path string) int64 {
	t.Helper()
	id, err := f.tx.InsertReturningID(f.ctx,
		"INSERT INTO PACKAGE (PATH, CRC, TYPE) VALUES (?, ?, ?) RETURNING PACKAGE_ID", path, "h", "zcl-xml")
	require.NoError(t, err)
	return id
}

func (f *fixture) count(t *testing.T, stmt string, args ...any) int64 {
	t.Helper()
	rows, err := f.tx.QueryAll(f.ctx, stmt, args...)
	require.NoError(t, err)
	return rows[0].Int64("n")
}

func ptr(v int64) *int64 { return &v }

func demoTypes() *model.Graph {
	return &model.Graph{
		Path: "/meta/types.xml",
		Atomics: []model.Atomic{
			{Name: "int8u", ID: 0x20, Size: ptr(1), IsDiscrete: false},
			{Name: "int16s", ID: 0x29, Size: ptr(2), IsSigned: true},
			{Name: "enum8", ID: 0x30, Size: ptr(1), IsDiscrete: true},
			{Name: "long_char_string", ID: 0x44, IsString: true, IsLong: true, IsChar: true},
		},
		Enums: []model.Enum{{
			Name: "DemoEnum", Type: "enum8",
			Items: []model.EnumItem{{Name: "A", Value: 0, FieldID: 0}, {Name: "B", Value: 1, FieldID: 1}},
		}},
		Bitmaps: []model.Bitmap{{
			Name: "DemoBitmap", Type: "bitmap16", ClusterCodes: []int64{6},
			Fields: []model.BitmapField{{Name: "X", Mask: 0x1, FieldID: 0}},
		}},
		Structs: []model.Struct{{
			Name: "DemoStruct", IsFabricScoped: true,
			Items: []model.StructItem{{FieldID: 0, Name: "a", Type: "int8u"}, {FieldID: 254, Name: "FabricIndex", Type: "fabric_idx"}},
		}},
	}
}

func demoCluster() *model.Graph {
	return &model.Graph{
		Path: "/meta/onoff.xml",
		AccessControl: model.AccessControl{
			Operations: []model.AccessVocab{{Name: "read"}, {Name: "write"}},
			Roles:      []model.AccessVocab{{Name: "view", Level: 1}},
		},
		Tags:    []model.Tag{{Name: "LT", Description: "Lighting"}},
		Domains: []model.Domain{{Name: "General", Latest: &model.Spec{Code: "zcl-8"}, Older: []model.Spec{{Code: "zcl-7"}, {Code: "zcl-8"}}}},
		Clusters: []model.Cluster{{
			Code: 6, Name: "On/off", Domain: "General", Define: "ON_OFF_CLUSTER",
			Tags: []model.Tag{{Name: "LT"}},
			Commands: []model.Command{
				{Code: 0, Name: "Off", Source: "client", ResponseName: "Ack", Access: []model.Access{{Op: "invoke"}},
					Args: []model.CommandArg{{FieldID: 0, Name: "a", Type: "int8u"}, {FieldID: 5, Name: "b"}, {FieldID: 6, Name: "c"}}},
			},
			Attributes: []model.Attribute{
				{Code: 0, Name: "on off", Type: "DemoEnum", Side: model.SideServer, IsReadable: true,
					Access: []model.Access{{Op: "read", Role: "view"}}},
				{Code: 0, Name: "on off", Type: "DemoEnum", Side: model.SideClient, IsReadable: true},
			},
			Events: []model.Event{{Code: 1, Name: "Changed", Fields: []model.EventField{{FieldID: 0, Name: "v", Type: "bool"}}}},
		}},
		DeviceTypes: []model.DeviceType{{
			Code: 0x100, ProfileID: 0x104, Name: "Light",
			Clusters: []model.DeviceTypeCluster{{ClusterName: "On/off", Server: true,
				RequiredAttributes: []string{"on off"}, RequiredCommands: []string{"Off"}}},
		}},
		Globals:       model.Globals{Attributes: []model.Attribute{{Code: 0xFFFD, Name: "cluster revision", Type: "int16u", Side: model.SideServer}}},
		DefaultAccess: []model.DefaultAccess{{EntityType: "cluster", Access: []model.Access{{Op: "read", Role: "view"}}}},
	}
}

func TestLoad_TypeFile(t *testing.T) {
	f := newFixture(t)
	pkg := f.pkg(t, "/meta/types.xml")

	pending, err := f.loader.Load(f.ctx, f.tx, demoTypes(), pkg, []int64{f.manifest})
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.Equal(t, int64(7), f.count(t, "SELECT COUNT(*) AS N FROM DATA_TYPE WHERE PACKAGE_REF = ?", pkg))
	assert.Equal(t, int64(2), f.count(t, "SELECT COUNT(*) AS N FROM NUMBER_TYPE"))
	assert.Equal(t, int64(1), f.count(t, "SELECT COUNT(*) AS N FROM STRING_TYPE WHERE IS_LONG = 1 AND IS_CHAR = 1"))
	assert.Equal(t, int64(2), f.count(t, "SELECT COUNT(*) AS N FROM ENUM_TYPE"), "atomic enum8 and DemoEnum")
	assert.Equal(t, int64(1), f.count(t, "SELECT COUNT(*) AS N FROM NUMBER_TYPE WHERE IS_SIGNED = 1"))
	assert.Equal(t, int64(1), f.count(t, "SELECT COUNT(*) AS N FROM STRUCT_TYPE WHERE IS_FABRIC_SCOPED = 1"))
	assert.Equal(t, int64(4), f.count(t, "SELECT COUNT(*) AS N FROM ATOMIC WHERE PACKAGE_REF = ?", pkg))

	rows, err := f.tx.QueryAll(f.ctx, `
		SELECT I.NAME, I.VALUE, I.FIELD_IDENTIFIER, E.SIZE
		FROM ENUM_ITEM I JOIN ENUM_TYPE E ON E.DATA_TYPE_REF = I.ENUM_REF
		JOIN DATA_TYPE D ON D.DATA_TYPE_ID = E.DATA_TYPE_REF
		WHERE D.NAME = 'DemoEnum' ORDER BY I.FIELD_IDENTIFIER`)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].String("name"))
	assert.Equal(t, int64(1), rows[1].Int64("value"))
	assert.Equal(t, int64(1), rows[1].Int64("field_identifier"))
	assert.Equal(t, int64(1), rows[0].Int64("size"))

	assert.Equal(t, int64(1), f.count(t,
		"SELECT COUNT(*) AS N FROM DATA_TYPE_CLUSTER WHERE CLUSTER_CODE = 6 AND CLUSTER_REF IS NULL"))
	assert.Equal(t, int64(1), f.count(t, "SELECT COUNT(*) AS N FROM BITMAP_TYPE WHERE SIZE = 2"))
}

func TestLoad_MissingDiscriminator(t *testing.T) {
	f := newFixture(t)
	pkg := f.pkg(t, "/meta/types.xml")

	_, err := f.loader.Load(f.ctx, f.tx, demoTypes(), pkg, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, zclload.ErrMissingDiscriminator)
	assert.Contains(t, err.Error(), "batch 3")
}

func TestLoad_ClusterFile(t *testing.T) {
	f := newFixture(t)
	pkg := f.pkg(t, "/meta/onoff.xml")

	_, err := f.loader.Load(f.ctx, f.tx, demoCluster(), pkg, []int64{f.manifest})
	require.NoError(t, err)

	assert.Equal(t, int64(1), f.count(t, "SELECT COUNT(*) AS N FROM CLUSTER WHERE CODE = 6"))
	assert.Equal(t, int64(2), f.count(t, "SELECT COUNT(*) AS N FROM ATTRIBUTE WHERE CLUSTER_REF IS NOT NULL"))
	assert.Equal(t, int64(1), f.count(t, "SELECT COUNT(*) AS N FROM ATTRIBUTE WHERE CLUSTER_REF IS NULL"))
	assert.Equal(t, int64(3), f.count(t, "SELECT COUNT(*) AS N FROM COMMAND_ARG"))
	assert.Equal(t, int64(1), f.count(t, "SELECT COUNT(*) AS N FROM EVENT_FIELD"))
	assert.Equal(t, int64(2), f.count(t, "SELECT COUNT(*) AS N FROM SPEC"), "shared spec codes are inserted once")
	assert.Equal(t, int64(1), f.count(t, "SELECT COUNT(*) AS N FROM DOMAIN WHERE LATEST_SPEC_REF IS NOT NULL"))
	assert.Equal(t, int64(1), f.count(t, "SELECT COUNT(*) AS N FROM TAG WHERE CLUSTER_REF IS NOT NULL"))
	assert.Equal(t, int64(1), f.count(t, "SELECT COUNT(*) AS N FROM DEVICE_TYPE_ATTRIBUTE WHERE ATTRIBUTE_REF IS NULL"))
	assert.Equal(t, int64(1), f.count(t, "SELECT COUNT(*) AS N FROM DEVICE_TYPE_COMMAND"))
	assert.Equal(t, int64(1), f.count(t, "SELECT COUNT(*) AS N FROM DEFAULT_ACCESS"))

	rows, err := f.tx.QueryAll(f.ctx, `
		SELECT A.OPERATION_REF, A.ROLE_REF FROM ACCESS A
		JOIN ATTRIBUTE_ACCESS L ON L.ACCESS_REF = A.ACCESS_ID`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	_, hasOp := rows[0].NullInt64("operation_ref")
	_, hasRole := rows[0].NullInt64("role_ref")
	assert.True(t, hasOp)
	assert.True(t, hasRole)

	rows, err = f.tx.QueryAll(f.ctx, "SELECT A.OPERATION_REF, A.OPERATION_NAME FROM ACCESS A JOIN COMMAND_ACCESS L ON L.ACCESS_REF = A.ACCESS_ID")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	_, hasOp = rows[0].NullInt64("operation_ref")
	assert.False(t, hasOp, "undeclared operations stay NULL")
	assert.Equal(t, "invoke", rows[0].String("operation_name"), "the name is kept for post-load resolution")
}

func TestLoad_DuplicateClusters(t *testing.T) {
	f := newFixture(t)

	g := demoCluster()
	g.Clusters = append(g.Clusters, model.Cluster{Code: 6, Name: "Again"})
	_, err := f.loader.Load(f.ctx, f.tx, g, f.pkg(t, "/meta/dup.xml"), []int64{f.manifest})
	assert.ErrorIs(t, err, zclload.ErrDuplicateCluster)

	first := f.pkg(t, "/meta/a.xml")
	second := f.pkg(t, "/meta/b.xml")
	known := []int64{f.manifest, first, second}
	_, err = f.loader.Load(f.ctx, f.tx, &model.Graph{Path: "/meta/a.xml", Clusters: []model.Cluster{{Code: 8, Name: "Level"}}}, first, known)
	require.NoError(t, err)
	_, err = f.loader.Load(f.ctx, f.tx, &model.Graph{Path: "/meta/b.xml", Clusters: []model.Cluster{{Code: 8, Name: "Level"}}}, second, known)
	assert.ErrorIs(t, err, zclload.ErrDuplicateCluster)

	_, err = f.loader.Load(f.ctx, f.tx, &model.Graph{Path: "/meta/b.xml",
		Clusters: []model.Cluster{{Code: 8, ManufacturerCode: ptr(0x1002), Name: "Mfg level"}}}, second, known)
	assert.NoError(t, err, "a manufacturer-specific cluster may share a standard code")
}

func TestSizeOf(t *testing.T) {
	assert.Equal(t, int64(1), sizeOf("enum8"))
	assert.Equal(t, int64(4), sizeOf("bitmap32"))
	assert.Nil(t, sizeOf("enum"))
	assert.Nil(t, sizeOf("int24x3"))
}
