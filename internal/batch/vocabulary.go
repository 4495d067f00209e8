package batch

import (
	"context"
	"fmt"
	"strings"

	"github.com/vvka-141/zclload/internal/model"
	"github.com/vvka-141/zclload/internal/store"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// loadVocabulary is batch 1.
func (l *Loader) loadVocabulary(ctx context.Context, tx zclload.Tx, f *file) error {
	g := f.graph
	return l.group(ctx,
		func(ctx context.Context) error {
			for _, op := range g.AccessControl.Operations {
				if _, err := tx.Exec(ctx, insertOperation, f.packageID, op.Name, nullString(op.Description)); err != nil {
					return fmt.Errorf("operation %s: %w", op.Name, err)
				}
			}
			for _, role := range g.AccessControl.Roles {
				if _, err := tx.Exec(ctx, insertRole, f.packageID, role.Name, nullString(role.Description), role.Level); err != nil {
					return fmt.Errorf("role %s: %w", role.Name, err)
				}
			}
			for _, mod := range g.AccessControl.Modifiers {
				if _, err := tx.Exec(ctx, insertModifier, f.packageID, mod.Name, nullString(mod.Description)); err != nil {
					return fmt.Errorf("access modifier %s: %w", mod.Name, err)
				}
			}
			return nil
		},
		func(ctx context.Context) error {
			for _, tag := range g.Tags {
				if _, err := tx.Exec(ctx, insertTag, f.packageID, nil, tag.Name, nullString(tag.Description)); err != nil {
					return fmt.Errorf("tag %s: %w", tag.Name, err)
				}
			}
			return nil
		},
		func(ctx context.Context) error {
			// Domains may share spec codes, so they are inserted in order.
			for _, d := range g.Domains {
				if err := l.insertDomain(ctx, tx, f.packageID, d); err != nil {
					return fmt.Errorf("domain %s: %w", d.Name, err)
				}
			}
			return nil
		},
	)
}

func (l *Loader) insertDomain(ctx context.Context, tx zclload.Tx, packageID int64, d model.Domain) error {
	var latest any
	if d.Latest != nil {
		id, err := ensureSpec(ctx, tx, packageID, *d.Latest)
		if err != nil {
			return err
		}
		latest = id
	}
	for _, older := range d.Older {
		if _, err := ensureSpec(ctx, tx, packageID, older); err != nil {
			return err
		}
	}
	_, err := tx.Exec(ctx, insertDomain, packageID, d.Name, latest)
	return err
}

func ensureSpec(ctx context.Context, tx zclload.Tx, packageID int64, s model.Spec) (int64, error) {
	rows, err := tx.QueryAll(ctx, querySpec, packageID, s.Code)
	if err != nil {
		return 0, err
	}
	if len(rows) > 0 {
		return rows[0].Int64("spec_id"), nil
	}
	return tx.InsertReturningID(ctx, insertSpec, packageID, s.Code, nullString(s.Description), flag(s.Certifiable))
}

// accessTable names the vocabulary tables an Access triple points into.
var accessTables = map[string]string{
	"op":       "OPERATION",
	"role":     "ROLE",
	"modifier": "ACCESS_MODIFIER",
}

// vocabularyRef finds the id of a vocabulary entry by name within scope.
// Only hits are cached: a later file of the same load may still declare
// a name that is missing now. Misses are left to the post-load resolver,
// which works from the name stored next to the reference.
func (l *Loader) vocabularyRef(ctx context.Context, tx zclload.Tx, scope []int64, kind, name string) (any, error) {
	if name == "" {
		return nil, nil
	}
	key := kind + ":" + strings.ToLower(name)

	l.vocabMu.Lock()
	id, ok := l.vocab[key]
	l.vocabMu.Unlock()
	if ok {
		return id, nil
	}

	table := accessTables[kind]
	in, args := store.In(scope)
	rows, err := tx.QueryAll(ctx,
		"SELECT "+table+"_ID AS ID, PACKAGE_REF FROM "+table+" WHERE LOWER(NAME) = ? AND PACKAGE_REF IN "+in,
		append([]any{strings.ToLower(name)}, args...)...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		l.logger.Verbose("Access %s %q is not declared yet, deferring to post-load resolution", kind, name)
		return nil, nil
	}
	id = preferred(rows, scope, "id")

	l.vocabMu.Lock()
	l.vocab[key] = id
	l.vocabMu.Unlock()
	return id, nil
}

// preferred picks, from rows carrying a package_ref column, the value of
// col for the package listed first in scope.
func preferred(rows []zclload.Row, scope []int64, col string) int64 {
	best, rank := rows[0].Int64(col), len(scope)
	for _, r := range rows {
		pkg := r.Int64("package_ref")
		for i, id := range scope {
			if id == pkg && i < rank {
				best, rank = r.Int64(col), i
			}
		}
	}
	return best
}

// insertAccessRow stores one access triple owned by packageID.
func (l *Loader) insertAccessRow(ctx context.Context, tx zclload.Tx, scope []int64, packageID int64, a model.Access) (int64, error) {
	op, err := l.vocabularyRef(ctx, tx, scope, "op", a.Op)
	if err != nil {
		return 0, err
	}
	role, err := l.vocabularyRef(ctx, tx, scope, "role", a.Role)
	if err != nil {
		return 0, err
	}
	mod, err := l.vocabularyRef(ctx, tx, scope, "modifier", a.Modifier)
	if err != nil {
		return 0, err
	}
	return tx.InsertReturningID(ctx, insertAccess, packageID,
		nullString(a.Op), op, nullString(a.Role), role, nullString(a.Modifier), mod)
}

// linkAccess inserts the access list of one entity and its link rows.
func (l *Loader) linkAccess(ctx context.Context, tx zclload.Tx, scope []int64, packageID int64, linkStmt string, ownerID int64, list []model.Access) error {
	for _, a := range list {
		accessID, err := l.insertAccessRow(ctx, tx, scope, packageID, a)
		if err != nil {
			return fmt.Errorf("access %+v: %w", a, err)
		}
		if _, err := tx.Exec(ctx, linkStmt, ownerID, accessID); err != nil {
			return err
		}
	}
	return nil
}
