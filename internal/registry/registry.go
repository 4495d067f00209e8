package registry

import (
	"context"
	"fmt"

	"github.com/vvka-141/zclload/pkg/zclload"
)

// File identifies a metadata file presented for qualification.
type File struct {
	Path   string
	Hash   string
	Kind   zclload.PackageKind
	Parent *int64
}

// Qualification is the registry's verdict for a File.
type Qualification struct {
	Status    zclload.QualificationStatus
	PackageID int64
}

// Qualify registers f and reports whether its content has to be loaded.
//
// A path seen for the first time gets a new PACKAGE row (Fresh). A known path
// with the same hash keeps its row untouched apart from the parent link
// (Unchanged). A known path with a different hash keeps its id and takes the
// new hash (Changed); the caller must Supersede it before inserting content.
func Qualify(ctx context.Context, tx zclload.Tx, f File) (Qualification, error) {
	existing, found, err := Lookup(ctx, tx, f.Path)
	if err != nil {
		return Qualification{}, err
	}

	if !found {
		id, err := tx.InsertReturningID(ctx, insertPackage, f.Path, f.Hash, string(f.Kind), f.Parent)
		if err != nil {
			return Qualification{}, fmt.Errorf("failed to register %s: %w", f.Path, err)
		}
		return Qualification{Status: zclload.Fresh, PackageID: id}, nil
	}

	if existing.Hash == f.Hash {
		if f.Parent != nil && !sameRef(existing.ParentID, f.Parent) {
			if _, err := tx.Exec(ctx, updatePackageParent, *f.Parent, existing.ID); err != nil {
				return Qualification{}, fmt.Errorf("failed to relink %s: %w", f.Path, err)
			}
		}
		return Qualification{Status: zclload.Unchanged, PackageID: existing.ID}, nil
	}

	parent := f.Parent
	if parent == nil {
		parent = existing.ParentID
	}
	if _, err := tx.Exec(ctx, updatePackageHash, f.Hash, string(f.Kind), parent, existing.ID); err != nil {
		return Qualification{}, fmt.Errorf("failed to update hash of %s: %w", f.Path, err)
	}
	return Qualification{Status: zclload.Changed, PackageID: existing.ID}, nil
}

// Supersede deletes every content row owned by packageID. The PACKAGE row,
// its options and its discriminators stay. It returns the other packages
// that lose rows through the cascade and therefore have to be reloaded.
func Supersede(ctx context.Context, tx zclload.Tx, packageID int64) ([]int64, error) {
	rows, err := tx.QueryAll(ctx, queryDependents,
		packageID, packageID, packageID, packageID, packageID, packageID)
	if err != nil {
		return nil, fmt.Errorf("failed to find dependents of package %d: %w", packageID, err)
	}
	dependents := make([]int64, 0, len(rows))
	for _, r := range rows {
		dependents = append(dependents, r.Int64("package_ref"))
	}

	for _, table := range supersedeTables {
		stmt := "DELETE FROM " + table + " WHERE PACKAGE_REF = ?"
		if _, err := tx.Exec(ctx, stmt, packageID); err != nil {
			return nil, fmt.Errorf("failed to supersede package %d: %w", packageID, err)
		}
	}
	return dependents, nil
}

// Remove supersedes packageID and then drops its PACKAGE row, so the same
// path qualifies as Fresh if it ever comes back.
func Remove(ctx context.Context, tx zclload.Tx, packageID int64) ([]int64, error) {
	dependents, err := Supersede(ctx, tx, packageID)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, deletePackage, packageID); err != nil {
		return nil, fmt.Errorf("failed to remove package %d: %w", packageID, err)
	}
	return dependents, nil
}

// RecordVersion stores the descriptive fields a manifest declares.
func RecordVersion(ctx context.Context, tx zclload.Tx, packageID int64, version, category, description string) error {
	if _, err := tx.Exec(ctx, updatePackageVersion,
		nullString(version), nullString(category), nullString(description), packageID); err != nil {
		return fmt.Errorf("failed to record version of package %d: %w", packageID, err)
	}
	return nil
}

// Lookup returns the package registered for path.
func Lookup(ctx context.Context, tx zclload.Tx, path string) (zclload.PackageInfo, bool, error) {
	rows, err := tx.QueryAll(ctx, queryPackageByPath, path)
	if err != nil {
		return zclload.PackageInfo{}, false, fmt.Errorf("failed to look up %s: %w", path, err)
	}
	if len(rows) == 0 {
		return zclload.PackageInfo{}, false, nil
	}
	return packageFromRow(rows[0]), true, nil
}

// Children returns the packages registered under parentID.
func Children(ctx context.Context, tx zclload.Tx, parentID int64) ([]zclload.PackageInfo, error) {
	rows, err := tx.QueryAll(ctx, queryPackageChildren, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children of package %d: %w", parentID, err)
	}
	return packagesFromRows(rows), nil
}

// List returns every registered package ordered by id.
func List(ctx context.Context, tx zclload.Tx) ([]zclload.PackageInfo, error) {
	rows, err := tx.QueryAll(ctx, queryPackages)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	return packagesFromRows(rows), nil
}

// SessionPackages returns the ids of the packages attached to sessionID.
func SessionPackages(ctx context.Context, tx zclload.Tx, sessionID string) ([]int64, error) {
	rows, err := tx.QueryAll(ctx, querySessionPackages, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages of session %s: %w", sessionID, err)
	}
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.Int64("package_ref"))
	}
	return ids, nil
}

// AttachToSession links packageID to sessionID. Attaching twice is a no-op.
func AttachToSession(ctx context.Context, tx zclload.Tx, sessionID string, packageID int64) error {
	if _, err := tx.Exec(ctx, insertSessionPackage, sessionID, packageID); err != nil {
		return fmt.Errorf("failed to attach package %d to session %s: %w", packageID, sessionID, err)
	}
	return nil
}

func packagesFromRows(rows []zclload.Row) []zclload.PackageInfo {
	out := make([]zclload.PackageInfo, 0, len(rows))
	for _, r := range rows {
		out = append(out, packageFromRow(r))
	}
	return out
}

func packageFromRow(r zclload.Row) zclload.PackageInfo {
	p := zclload.PackageInfo{
		ID:          r.Int64("package_id"),
		Path:        r.String("path"),
		Hash:        r.String("crc"),
		Kind:        zclload.PackageKind(r.String("type")),
		Version:     r.String("version"),
		Category:    r.String("category"),
		Description: r.String("description"),
	}
	if parent, ok := r.NullInt64("parent_package_ref"); ok {
		p.ParentID = &parent
	}
	return p
}

func sameRef(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
