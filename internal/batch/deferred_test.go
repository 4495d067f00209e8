package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/zclload/internal/model"
)

func extensionGraph(code int64) *model.Graph {
	return &model.Graph{
		Path: "/meta/mfg.xml",
		ClusterExtensions: []model.ClusterExtension{{
			Code:       code,
			Attributes: []model.Attribute{{Code: 0x4000, Name: "mfg attr", Type: "int8u", Side: model.SideServer}},
			Commands:   []model.Command{{Code: 0x40, Name: "MfgCommand", Source: "client"}},
		}},
		GlobalAttributeDefaults: []model.GlobalAttributeDefaults{{
			ClusterCode: code,
			Attributes: []model.GlobalAttributeDefault{
				{Code: 0xFFFD, Side: model.SideServer, Value: "4",
					FeatureBits: []model.FeatureBit{{Tag: "LT", Bit: 0, Value: true}}},
				{Code: 0xFFFC, Side: model.SideServer, Value: "0"},
			},
		}},
	}
}

func TestLoad_ReturnsTypedPending(t *testing.T) {
	f := newFixture(t)
	ext := f.pkg(t, "/meta/mfg.xml")

	pending, err := f.loader.Load(f.ctx, f.tx, extensionGraph(6), ext, []int64{f.manifest})
	require.NoError(t, err)
	require.Len(t, pending, 2)

	p, ok := pending[0].(PendingClusterExtension)
	require.True(t, ok)
	assert.Equal(t, int64(6), p.Extension.Code)
	assert.Equal(t, ext, p.Owner())
	assert.Contains(t, p.String(), "0x0006")

	_, ok = pending[1].(PendingGlobalAttributeDefaults)
	assert.True(t, ok)
	assert.Equal(t, int64(0), f.count(t, "SELECT COUNT(*) AS N FROM ATTRIBUTE"), "nothing runs before RunDeferred")
}

func TestRunDeferred_ExtendsClusterDefinedLater(t *testing.T) {
	f := newFixture(t)
	ext := f.pkg(t, "/meta/mfg.xml")
	base := f.pkg(t, "/meta/onoff.xml")
	known := []int64{f.manifest, ext, base}

	// The extension file is loaded before the file that defines the cluster.
	pending, err := f.loader.Load(f.ctx, f.tx, extensionGraph(6), ext, known)
	require.NoError(t, err)
	_, err = f.loader.Load(f.ctx, f.tx, demoCluster(), base, known)
	require.NoError(t, err)

	skipped, err := f.loader.RunDeferred(f.ctx, f.tx, pending, known)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)

	assert.Equal(t, int64(1), f.count(t, `
		SELECT COUNT(*) AS N FROM ATTRIBUTE A JOIN CLUSTER C ON C.CLUSTER_ID = A.CLUSTER_REF
		WHERE A.PACKAGE_REF = ? AND C.CODE = 6 AND A.CODE = 16384`, ext))
	assert.Equal(t, int64(1), f.count(t, "SELECT COUNT(*) AS N FROM COMMAND WHERE PACKAGE_REF = ? AND CODE = 64", ext))

	assert.Equal(t, int64(1), f.count(t, "SELECT COUNT(*) AS N FROM GLOBAL_ATTRIBUTE_DEFAULT WHERE PACKAGE_REF = ?", ext),
		"only the global attribute that exists gets a default")
	assert.Equal(t, int64(1), f.count(t, "SELECT COUNT(*) AS N FROM GLOBAL_ATTRIBUTE_BIT WHERE TAG_REF IS NOT NULL AND VALUE = 1"))
	assert.Equal(t, 1, f.logs.FilterMessageSnippet("attribute not defined").Len())
}

func TestRunDeferred_MissingClusterIsSkipped(t *testing.T) {
	f := newFixture(t)
	ext := f.pkg(t, "/meta/mfg.xml")
	known := []int64{f.manifest, ext}

	pending, err := f.loader.Load(f.ctx, f.tx, extensionGraph(0x1234), ext, known)
	require.NoError(t, err)

	skipped, err := f.loader.RunDeferred(f.ctx, f.tx, pending, known)
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, int64(0), f.count(t, "SELECT COUNT(*) AS N FROM ATTRIBUTE WHERE PACKAGE_REF = ?", ext))
	assert.Equal(t, int64(0), f.count(t, "SELECT COUNT(*) AS N FROM COMMAND WHERE PACKAGE_REF = ?", ext))
	assert.Equal(t, 2, f.logs.FilterMessageSnippet("no known package defines cluster 0x1234").Len())
}

func TestRunDeferred_MixedWork(t *testing.T) {
	f := newFixture(t)
	ext := f.pkg(t, "/meta/mfg.xml")
	base := f.pkg(t, "/meta/onoff.xml")
	known := []int64{f.manifest, base, ext}
	_, err := f.loader.Load(f.ctx, f.tx, demoCluster(), base, known)
	require.NoError(t, err)

	pending := []Pending{
		PendingGlobalAttributeDefaults{Package: ext, Defaults: model.GlobalAttributeDefaults{
			ClusterCode: 6,
			Attributes:  []model.GlobalAttributeDefault{{Code: 0xFFFD, Side: model.SideServer, Value: "2"}},
		}},
		PendingClusterExtension{Package: ext, Extension: model.ClusterExtension{
			Code:       6,
			Attributes: []model.Attribute{{Code: 0x4001, Name: "x", Side: model.SideClient}},
		}},
	}
	skipped, err := f.loader.RunDeferred(f.ctx, f.tx, pending, known)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, int64(1), f.count(t, "SELECT COUNT(*) AS N FROM ATTRIBUTE WHERE CODE = 16385"))
	assert.Equal(t, int64(1), f.count(t, "SELECT COUNT(*) AS N FROM GLOBAL_ATTRIBUTE_DEFAULT"))
}
