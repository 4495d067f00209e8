package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/zclload/internal/store"
	"github.com/vvka-141/zclload/pkg/zclload"
)

func beginTx(t *testing.T) (context.Context, zclload.Tx) {
	t.Helper()
	ctx := context.Background()
	s, err := store.OpenSQLite(ctx, store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { tx.Rollback(ctx) })
	return ctx, tx
}

func count(t *testing.T, ctx context.Context, tx zclload.Tx, stmt string, args ...any) int64 {
	t.Helper()
	rows, err := tx.QueryAll(ctx, stmt, args...)
	require.NoError(t, err)
	return rows[0].Int64("n")
}

func TestQualify_Lifecycle(t *testing.T) {
	ctx, tx := beginTx(t)
	f := File{Path: "/meta/general.xml", Hash: "h1", Kind: zclload.KindXML}

	q, err := Qualify(ctx, tx, f)
	require.NoError(t, err)
	assert.Equal(t, zclload.Fresh, q.Status)
	first := q.PackageID

	q, err = Qualify(ctx, tx, f)
	require.NoError(t, err)
	assert.Equal(t, zclload.Unchanged, q.Status)
	assert.Equal(t, first, q.PackageID)

	f.Hash = "h2"
	q, err = Qualify(ctx, tx, f)
	require.NoError(t, err)
	assert.Equal(t, zclload.Changed, q.Status)
	assert.Equal(t, first, q.PackageID, "changed files keep their id")

	p, found, err := Lookup(ctx, tx, f.Path)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "h2", p.Hash)
	assert.Equal(t, zclload.KindXML, p.Kind)
	assert.Nil(t, p.ParentID)
}

func TestQualify_ParentLinks(t *testing.T) {
	ctx, tx := beginTx(t)

	top, err := Qualify(ctx, tx, File{Path: "/meta/zcl.json", Hash: "m", Kind: zclload.KindJSONManifest})
	require.NoError(t, err)
	parent := top.PackageID

	_, err = Qualify(ctx, tx, File{Path: "/meta/a.xml", Hash: "a", Kind: zclload.KindXML, Parent: &parent})
	require.NoError(t, err)
	_, err = Qualify(ctx, tx, File{Path: "/meta/b.xml", Hash: "b", Kind: zclload.KindXML})
	require.NoError(t, err)

	// b.xml becomes part of the manifest without changing content.
	q, err := Qualify(ctx, tx, File{Path: "/meta/b.xml", Hash: "b", Kind: zclload.KindXML, Parent: &parent})
	require.NoError(t, err)
	assert.Equal(t, zclload.Unchanged, q.Status)

	children, err := Children(ctx, tx, parent)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "/meta/a.xml", children[0].Path)
	assert.Equal(t, "/meta/b.xml", children[1].Path)
	require.NotNil(t, children[0].ParentID)
	assert.Equal(t, parent, *children[0].ParentID)

	all, err := List(ctx, tx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLookup_Missing(t *testing.T) {
	ctx, tx := beginTx(t)
	_, found, err := Lookup(ctx, tx, "/nowhere.xml")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRecordVersion(t *testing.T) {
	ctx, tx := beginTx(t)
	q, err := Qualify(ctx, tx, File{Path: "/meta/zcl.json", Hash: "m", Kind: zclload.KindJSONManifest})
	require.NoError(t, err)

	require.NoError(t, RecordVersion(ctx, tx, q.PackageID, "1", "zigbee", "Zigbee metadata"))
	p, _, err := Lookup(ctx, tx, "/meta/zcl.json")
	require.NoError(t, err)
	assert.Equal(t, "1", p.Version)
	assert.Equal(t, "zigbee", p.Category)
	assert.Equal(t, "Zigbee metadata", p.Description)
}

func TestSupersede_RemovesOwnedRowsAndReportsDependents(t *testing.T) {
	ctx, tx := beginTx(t)

	owner, err := Qualify(ctx, tx, File{Path: "/meta/general.xml", Hash: "g", Kind: zclload.KindXML})
	require.NoError(t, err)
	ext, err := Qualify(ctx, tx, File{Path: "/meta/mfg.xml", Hash: "x", Kind: zclload.KindXML})
	require.NoError(t, err)
	other, err := Qualify(ctx, tx, File{Path: "/meta/other.xml", Hash: "o", Kind: zclload.KindXML})
	require.NoError(t, err)

	cluster, err := tx.InsertReturningID(ctx,
		"INSERT INTO CLUSTER (PACKAGE_REF, CODE, NAME) VALUES (?, ?, ?) RETURNING CLUSTER_ID",
		owner.PackageID, 6, "On/off")
	require.NoError(t, err)
	_, err = tx.Exec(ctx, "INSERT INTO ATTRIBUTE (PACKAGE_REF, CLUSTER_REF, CODE, NAME, SIDE) VALUES (?, ?, ?, ?, ?)",
		owner.PackageID, cluster, 0, "on off", "server")
	require.NoError(t, err)
	_, err = tx.Exec(ctx, "INSERT INTO ATTRIBUTE (PACKAGE_REF, CLUSTER_REF, CODE, NAME, SIDE) VALUES (?, ?, ?, ?, ?)",
		ext.PackageID, cluster, 0x4000, "mfg attr", "server")
	require.NoError(t, err)
	_, err = tx.Exec(ctx, "INSERT INTO CLUSTER (PACKAGE_REF, CODE, NAME) VALUES (?, ?, ?)", other.PackageID, 8, "Level")
	require.NoError(t, err)
	_, err = tx.Exec(ctx, "INSERT INTO DISCRIMINATOR (PACKAGE_REF, NAME) VALUES (?, ?)", owner.PackageID, "ENUM")
	require.NoError(t, err)

	dependents, err := Supersede(ctx, tx, owner.PackageID)
	require.NoError(t, err)
	assert.Equal(t, []int64{ext.PackageID}, dependents)

	assert.Equal(t, int64(0), count(t, ctx, tx, "SELECT COUNT(*) AS N FROM ATTRIBUTE"))
	assert.Equal(t, int64(1), count(t, ctx, tx, "SELECT COUNT(*) AS N FROM CLUSTER"))
	assert.Equal(t, int64(1), count(t, ctx, tx, "SELECT COUNT(*) AS N FROM DISCRIMINATOR"),
		"discriminators survive")
	_, found, err := Lookup(ctx, tx, "/meta/general.xml")
	require.NoError(t, err)
	assert.True(t, found, "the package row survives")
}

func TestRemove(t *testing.T) {
	ctx, tx := beginTx(t)
	q, err := Qualify(ctx, tx, File{Path: "/meta/stale.xml", Hash: "s", Kind: zclload.KindXML})
	require.NoError(t, err)
	require.NoError(t, AttachToSession(ctx, tx, "s1", q.PackageID))

	_, err = Remove(ctx, tx, q.PackageID)
	require.NoError(t, err)

	_, found, err := Lookup(ctx, tx, "/meta/stale.xml")
	require.NoError(t, err)
	assert.False(t, found)

	ids, err := SessionPackages(ctx, tx, "s1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	q, err = Qualify(ctx, tx, File{Path: "/meta/stale.xml", Hash: "s", Kind: zclload.KindXML})
	require.NoError(t, err)
	assert.Equal(t, zclload.Fresh, q.Status)
}

func TestSessions(t *testing.T) {
	ctx, tx := beginTx(t)
	a, err := Qualify(ctx, tx, File{Path: "/a.xml", Hash: "a", Kind: zclload.KindXML})
	require.NoError(t, err)
	b, err := Qualify(ctx, tx, File{Path: "/b.xml", Hash: "b", Kind: zclload.KindXML})
	require.NoError(t, err)

	require.NoError(t, AttachToSession(ctx, tx, "s1", b.PackageID))
	require.NoError(t, AttachToSession(ctx, tx, "s1", a.PackageID))
	require.NoError(t, AttachToSession(ctx, tx, "s1", a.PackageID))
	require.NoError(t, AttachToSession(ctx, tx, "s2", b.PackageID))

	ids, err := SessionPackages(ctx, tx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []int64{a.PackageID, b.PackageID}, ids)

	ids, err = SessionPackages(ctx, tx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
