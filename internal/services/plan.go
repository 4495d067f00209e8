package services

import (
	"context"

	"github.com/vvka-141/zclload/internal/model"
	"github.com/vvka-141/zclload/internal/registry"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// planned is one sub-file within a single load attempt.
type planned struct {
	*subFile
	q      registry.Qualification
	forced bool
	graph  *model.Graph
}

func (f *planned) needsParse() bool {
	return f.q.Status.NeedsParse() || f.forced
}

// plan is the qualified file set of one top-level load attempt.
type plan struct {
	top      int64
	topParse bool
	files    []*planned
	byID     map[int64]*planned
}

// known lists the top package followed by every sub-file package.
func (p *plan) known() []int64 {
	ids := []int64{p.top}
	seen := map[int64]bool{p.top: true}
	for _, f := range p.files {
		if !seen[f.q.PackageID] {
			seen[f.q.PackageID] = true
			ids = append(ids, f.q.PackageID)
		}
	}
	return ids
}

// loadOrder returns the parsed files, type files first, each group in
// manifest order.
func (p *plan) loadOrder() []*planned {
	var types, rest []*planned
	for _, f := range p.files {
		if f.graph == nil {
			continue
		}
		if isTypeFile(f.path, f.graph) {
			types = append(types, f)
		} else {
			rest = append(rest, f)
		}
	}
	return append(types, rest...)
}

func (p *plan) outcomes() []zclload.FileOutcome {
	out := make([]zclload.FileOutcome, 0, len(p.files))
	for _, f := range p.files {
		out = append(out, zclload.FileOutcome{
			Path:      f.path,
			PackageID: f.q.PackageID,
			Status:    f.q.Status,
			Forced:    f.forced,
		})
	}
	return out
}

// qualifyFiles registers every listed sub-file before any of them is
// parsed. Sub-packages the manifest no longer lists are removed. Changed
// packages are superseded, and packages whose rows extended superseded
// content are superseded too and reparsed in this load.
func (s *LoadService) qualifyFiles(ctx context.Context, tx zclload.Tx, t *topLevel, top registry.Qualification, superseded []int64) (*plan, error) {
	p := &plan{
		top:      top.PackageID,
		topParse: top.Status.NeedsParse(),
		byID:     make(map[int64]*planned),
	}

	listed := map[string]bool{}
	for i, f := range t.files {
		q, err := registry.Qualify(ctx, tx, registry.File{Path: f.path, Hash: f.hash, Kind: zclload.KindXML, Parent: &p.top})
		if err != nil {
			return nil, err
		}
		pf := &planned{subFile: f, q: q}
		p.files = append(p.files, pf)
		p.byID[q.PackageID] = pf
		listed[f.path] = true
		s.observer.OnEvent(Event{Phase: PhaseQualify, Path: f.path, Status: q.Status, Done: i + 1, Total: len(t.files)})
	}

	queue := append([]int64(nil), superseded...)

	children, err := registry.Children(ctx, tx, p.top)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		if listed[c.Path] || c.Kind == zclload.KindSchema || c.Kind == zclload.KindValidation {
			continue
		}
		deps, err := registry.Remove(ctx, tx, c.ID)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Removed %s: no longer listed by %s", c.Path, t.path)
		queue = append(queue, deps...)
	}

	for _, f := range p.files {
		if f.q.Status != zclload.Changed {
			continue
		}
		deps, err := registry.Supersede(ctx, tx, f.q.PackageID)
		if err != nil {
			return nil, err
		}
		queue = append(queue, deps...)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if id == p.top {
			if !p.topParse && t.library != nil {
				deps, err := registry.Supersede(ctx, tx, id)
				if err != nil {
					return nil, err
				}
				p.topParse = true
				queue = append(queue, deps...)
			}
			continue
		}

		f, ok := p.byID[id]
		if !ok {
			s.logger.Warn("Package %d extends superseded content and is not part of this load; reload it to restore its extensions", id)
			continue
		}
		if f.needsParse() {
			continue
		}
		deps, err := registry.Supersede(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		f.forced = true
		s.logger.Verbose("Reparsing %s: it extends superseded content", f.path)
		queue = append(queue, deps...)
	}

	return p, nil
}
