// Package batch inserts one file's canonical graph into the store.
//
// The work is split into strictly ordered batches. Later batches use ids
// generated by earlier ones; items inside one batch are independent and fan
// out through a bounded errgroup. The transaction serializes the statements.
//
//  1. access vocabulary, tags, domains and specs
//  2. device types, global commands and attributes, clusters with members
//  3. base DATA_TYPE rows (discriminators are resolved first)
//  4. NUMBER/STRING/ENUM/BITMAP/STRUCT specializations
//  5. enum items, bitmap fields, struct items
//  6. default access and the atomic catalog
//
// Cluster extensions and global attribute defaults may target clusters that
// a later file defines, so Load returns them as Pending values that the
// caller runs through RunDeferred once every file of the load is in.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/vvka-141/zclload/internal/discriminator"
	"github.com/vvka-141/zclload/internal/logging"
	"github.com/vvka-141/zclload/internal/model"
	"github.com/vvka-141/zclload/pkg/zclload"
	"golang.org/x/sync/errgroup"
)

// Loader is created once per load operation. It is safe for concurrent
// use by goroutines loading different files of that operation.
type Loader struct {
	discriminators *discriminator.Resolver
	logger         zclload.Logger
	workers        int

	// clusterMu makes the duplicate check and the insert of a cluster row
	// atomic across files loading concurrently.
	clusterMu sync.Mutex

	vocabMu sync.Mutex
	vocab   map[string]int64
}

// NewLoader returns a Loader that resolves discriminators through resolver
// and runs at most workers statements producers per batch.
func NewLoader(resolver *discriminator.Resolver, logger zclload.Logger, workers int) *Loader {
	if workers <= 0 {
		workers = zclload.DefaultWorkers
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if resolver == nil {
		resolver = discriminator.NewResolver()
	}
	return &Loader{
		discriminators: resolver,
		logger:         logger,
		workers:        workers,
		vocab:          make(map[string]int64),
	}
}

// file carries the per-call state of one Load.
type file struct {
	graph     *model.Graph
	packageID int64
	scope     []int64

	atomicIDs []int64
	enumIDs   []int64
	bitmapIDs []int64
	structIDs []int64
}

// Load inserts graph as the content of packageID. known lists the other
// packages whose clusters, vocabulary and discriminators this file may use;
// the first listed package wins when names collide.
func (l *Loader) Load(ctx context.Context, tx zclload.Tx, graph *model.Graph, packageID int64, known []int64) ([]Pending, error) {
	f := &file{
		graph:     graph,
		packageID: packageID,
		scope:     withPackage(known, packageID),
		atomicIDs: make([]int64, len(graph.Atomics)),
		enumIDs:   make([]int64, len(graph.Enums)),
		bitmapIDs: make([]int64, len(graph.Bitmaps)),
		structIDs: make([]int64, len(graph.Structs)),
	}

	batches := []struct {
		name string
		run  func(context.Context, zclload.Tx, *file) error
	}{
		{"vocabulary", l.loadVocabulary},
		{"clusters", l.loadClusters},
		{"data types", l.loadDataTypes},
		{"specializations", l.loadSpecializations},
		{"type members", l.loadTypeMembers},
		{"catalog", l.loadCatalog},
	}
	for i, b := range batches {
		if err := b.run(ctx, tx, f); err != nil {
			return nil, fmt.Errorf("failed to load %s (batch %d, %s): %w", graph.Path, i+1, b.name, err)
		}
	}

	l.logger.Verbose("Loaded %s as package %d: %s", graph.Path, packageID, graph.Stats())
	return pendingFor(graph, packageID), nil
}

// fanOut runs fn for every index in [0, n) with at most l.workers in
// flight and returns the first error.
func (l *Loader) fanOut(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i := range n {
		g.Go(func() error { return fn(gctx, i) })
	}
	return g.Wait()
}

// group runs independent tasks of one batch concurrently.
func (l *Loader) group(ctx context.Context, tasks ...func(context.Context) error) error {
	return l.fanOut(ctx, len(tasks), func(ctx context.Context, i int) error {
		return tasks[i](ctx)
	})
}

func withPackage(known []int64, packageID int64) []int64 {
	scope := make([]int64, 0, len(known)+1)
	for _, id := range known {
		if id != packageID {
			scope = append(scope, id)
		}
	}
	return append(scope, packageID)
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
