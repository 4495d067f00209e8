package batch

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/vvka-141/zclload/internal/discriminator"
	"github.com/vvka-141/zclload/internal/model"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// loadDataTypes is batch 3. The discriminator map is resolved before any
// DATA_TYPE row is written.
func (l *Loader) loadDataTypes(ctx context.Context, tx zclload.Tx, f *file) error {
	g := f.graph
	if len(g.Atomics)+len(g.Enums)+len(g.Bitmaps)+len(g.Structs) == 0 {
		return nil
	}
	disc, err := l.discriminators.Resolve(ctx, tx, f.scope)
	if err != nil {
		return err
	}

	return l.group(ctx,
		func(ctx context.Context) error {
			return l.fanOut(ctx, len(g.Atomics), func(ctx context.Context, i int) error {
				a := g.Atomics[i]
				id, err := insertBaseType(ctx, tx, disc, f.packageID, a.Name, a.Description, a.Category(), nil)
				f.atomicIDs[i] = id
				return err
			})
		},
		func(ctx context.Context) error {
			return l.fanOut(ctx, len(g.Enums), func(ctx context.Context, i int) error {
				e := g.Enums[i]
				id, err := insertBaseType(ctx, tx, disc, f.packageID, e.Name, "", model.CategoryEnum, e.ClusterCodes)
				f.enumIDs[i] = id
				return err
			})
		},
		func(ctx context.Context) error {
			return l.fanOut(ctx, len(g.Bitmaps), func(ctx context.Context, i int) error {
				b := g.Bitmaps[i]
				id, err := insertBaseType(ctx, tx, disc, f.packageID, b.Name, "", model.CategoryBitmap, b.ClusterCodes)
				f.bitmapIDs[i] = id
				return err
			})
		},
		func(ctx context.Context) error {
			return l.fanOut(ctx, len(g.Structs), func(ctx context.Context, i int) error {
				s := g.Structs[i]
				id, err := insertBaseType(ctx, tx, disc, f.packageID, s.Name, "", model.CategoryStruct, s.ClusterCodes)
				f.structIDs[i] = id
				return err
			})
		},
	)
}

func insertBaseType(ctx context.Context, tx zclload.Tx, disc discriminator.Map, packageID int64,
	name, description, category string, clusterCodes []int64) (int64, error) {
	discID, err := disc.Require(category)
	if err != nil {
		return 0, fmt.Errorf("data type %s: %w", name, err)
	}
	id, err := tx.InsertReturningID(ctx, insertDataType, packageID, name, nullString(description), discID)
	if err != nil {
		return 0, fmt.Errorf("data type %s: %w", name, err)
	}
	for _, code := range clusterCodes {
		if _, err := tx.Exec(ctx, insertDataTypeCluster, id, code); err != nil {
			return 0, fmt.Errorf("data type %s cluster %#04x: %w", name, code, err)
		}
	}
	return id, nil
}

// loadSpecializations is batch 4.
func (l *Loader) loadSpecializations(ctx context.Context, tx zclload.Tx, f *file) error {
	g := f.graph
	return l.group(ctx,
		func(ctx context.Context) error {
			return l.fanOut(ctx, len(g.Atomics), func(ctx context.Context, i int) error {
				return insertAtomicSpecialization(ctx, tx, f.atomicIDs[i], g.Atomics[i])
			})
		},
		func(ctx context.Context) error {
			return l.fanOut(ctx, len(g.Enums), func(ctx context.Context, i int) error {
				_, err := tx.Exec(ctx, insertEnumType, f.enumIDs[i], sizeOf(g.Enums[i].Type))
				return wrapType(g.Enums[i].Name, err)
			})
		},
		func(ctx context.Context) error {
			return l.fanOut(ctx, len(g.Bitmaps), func(ctx context.Context, i int) error {
				_, err := tx.Exec(ctx, insertBitmapType, f.bitmapIDs[i], sizeOf(g.Bitmaps[i].Type))
				return wrapType(g.Bitmaps[i].Name, err)
			})
		},
		func(ctx context.Context) error {
			return l.fanOut(ctx, len(g.Structs), func(ctx context.Context, i int) error {
				s := g.Structs[i]
				_, err := tx.Exec(ctx, insertStructType, f.structIDs[i], nil, flag(s.IsFabricScoped))
				return wrapType(s.Name, err)
			})
		},
	)
}

func insertAtomicSpecialization(ctx context.Context, tx zclload.Tx, id int64, a model.Atomic) error {
	var err error
	switch a.Category() {
	case model.CategoryNumber:
		_, err = tx.Exec(ctx, insertNumberType, id, a.Size, flag(a.IsSigned || model.NumberSigned(a.Name)))
	case model.CategoryString:
		_, err = tx.Exec(ctx, insertStringType, id, flag(a.IsLong), a.Size, flag(a.IsChar))
	case model.CategoryEnum:
		_, err = tx.Exec(ctx, insertEnumType, id, a.Size)
	case model.CategoryBitmap:
		_, err = tx.Exec(ctx, insertBitmapType, id, a.Size)
	}
	return wrapType(a.Name, err)
}

// loadTypeMembers is batch 5.
func (l *Loader) loadTypeMembers(ctx context.Context, tx zclload.Tx, f *file) error {
	g := f.graph
	return l.group(ctx,
		func(ctx context.Context) error {
			return l.fanOut(ctx, len(g.Enums), func(ctx context.Context, i int) error {
				for _, item := range g.Enums[i].Items {
					if _, err := tx.Exec(ctx, insertEnumItem, f.enumIDs[i], item.Name, item.Value, item.FieldID); err != nil {
						return wrapType(g.Enums[i].Name+"."+item.Name, err)
					}
				}
				return nil
			})
		},
		func(ctx context.Context) error {
			return l.fanOut(ctx, len(g.Bitmaps), func(ctx context.Context, i int) error {
				for _, fld := range g.Bitmaps[i].Fields {
					if _, err := tx.Exec(ctx, insertBitmapField,
						f.bitmapIDs[i], fld.Name, fld.Mask, nullString(fld.Type), fld.FieldID); err != nil {
						return wrapType(g.Bitmaps[i].Name+"."+fld.Name, err)
					}
				}
				return nil
			})
		},
		func(ctx context.Context) error {
			return l.fanOut(ctx, len(g.Structs), func(ctx context.Context, i int) error {
				for _, item := range g.Structs[i].Items {
					if _, err := tx.Exec(ctx, insertStructItem,
						f.structIDs[i], item.FieldID, item.Name, nullString(item.Type), item.MaxLength,
						flag(item.IsWritable), flag(item.IsArray), flag(item.IsEnum), flag(item.IsNullable),
						flag(item.IsOptional), flag(item.IsFabricSensitive)); err != nil {
						return wrapType(g.Structs[i].Name+"."+item.Name, err)
					}
				}
				return nil
			})
		},
	)
}

// loadCatalog is batch 6.
func (l *Loader) loadCatalog(ctx context.Context, tx zclload.Tx, f *file) error {
	g := f.graph
	return l.group(ctx,
		func(ctx context.Context) error {
			for _, da := range g.DefaultAccess {
				for _, a := range da.Access {
					accessID, err := l.insertAccessRow(ctx, tx, f.scope, f.packageID, a)
					if err != nil {
						return fmt.Errorf("default access %s: %w", da.EntityType, err)
					}
					if _, err := tx.Exec(ctx, insertDefaultAccess, f.packageID, da.EntityType, accessID); err != nil {
						return fmt.Errorf("default access %s: %w", da.EntityType, err)
					}
				}
			}
			return nil
		},
		func(ctx context.Context) error {
			for _, a := range g.Atomics {
				if _, err := tx.Exec(ctx, insertAtomic,
					f.packageID, a.Name, nullString(a.Description), a.ID, a.Size, flag(a.IsDiscrete),
					flag(a.IsStringAtomic()), flag(a.IsLong), flag(a.IsChar), flag(a.IsSigned)); err != nil {
					return fmt.Errorf("atomic %s: %w", a.Name, err)
				}
			}
			return nil
		},
	)
}

// sizeOf derives the byte size of an enum or bitmap storage type from its
// bit width suffix: enum8 is 1, bitmap32 is 4. Unknown widths are NULL.
func sizeOf(typeName string) any {
	digits := strings.TrimLeftFunc(typeName, func(r rune) bool { return !unicode.IsDigit(r) })
	bits, err := strconv.Atoi(digits)
	if err != nil || bits <= 0 || bits%8 != 0 {
		return nil
	}
	return int64(bits / 8)
}

func wrapType(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("data type %s: %w", name, err)
}
