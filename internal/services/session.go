package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vvka-141/zclload/internal/batch"
	"github.com/vvka-141/zclload/internal/discriminator"
	"github.com/vvka-141/zclload/internal/registry"
	"github.com/vvka-141/zclload/internal/resolve"
	"github.com/vvka-141/zclload/pkg/zclload"
)

// LoadIndividualFile adds one metadata file to an already loaded session.
//
// The file becomes a standalone package. Its types, extensions and named
// references resolve against the packages of scope: scope.PackageIDs when
// set, otherwise the packages attached to scope.SessionID. On success the
// package is attached to the session.
//
// Failures, including a validator rejection, are reported in the result
// rather than returned.
func (s *LoadService) LoadIndividualFile(ctx context.Context, path string, scope zclload.SessionScope) zclload.IndividualResult {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id, err := s.loadIndividualFile(ctx, path, scope)
	if err != nil {
		s.logger.Error("Failed to add %s: %v", path, err)
		return zclload.IndividualResult{Err: err}
	}
	s.logger.Info("✓ Added %s as package %d", path, id)
	return zclload.IndividualResult{Succeeded: true, PackageID: id}
}

func (s *LoadService) loadIndividualFile(ctx context.Context, path string, scope zclload.SessionScope) (int64, error) {
	if scope.SessionID == "" && len(scope.PackageIDs) == 0 {
		return 0, fmt.Errorf("adding %s requires a session or a package scope: %w", path, zclload.ErrInvalidConfig)
	}

	f, err := s.readSubFile(path)
	if err != nil {
		return 0, err
	}
	if err := s.validate(path, f.content); err != nil {
		return 0, err
	}

	var id int64
	err = s.executor.Execute(ctx, func(ctx context.Context) error {
		var err error
		id, err = s.addFile(ctx, f, scope)
		return err
	})
	return id, err
}

func (s *LoadService) validate(path string, content []byte) error {
	issues, err := s.validator.Validate(content)
	if err != nil {
		return fmt.Errorf("%w: validator error on %s: %w", zclload.ErrValidationFailed, path, err)
	}
	if len(issues) == 0 {
		return nil
	}
	msgs := make([]string, len(issues))
	for i, issue := range issues {
		msgs[i] = issue.String()
	}
	return fmt.Errorf("%s: %s: %w", path, strings.Join(msgs, "; "), zclload.ErrValidationFailed)
}

func (s *LoadService) addFile(ctx context.Context, f *subFile, scope zclload.SessionScope) (int64, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
				s.logger.Verbose("Rollback failed: %v", rbErr)
			}
		}
	}()

	known := scope.PackageIDs
	if len(known) == 0 {
		if known, err = registry.SessionPackages(ctx, tx, scope.SessionID); err != nil {
			return 0, err
		}
		if len(known) == 0 {
			return 0, fmt.Errorf("session %s: %w", scope.SessionID, zclload.ErrSessionNotFound)
		}
	}

	q, err := registry.Qualify(ctx, tx, registry.File{Path: f.path, Hash: f.hash, Kind: zclload.KindXMLStandalone})
	if err != nil {
		return 0, err
	}
	s.observer.OnEvent(Event{Phase: PhaseQualify, Path: f.path, Status: q.Status, Done: 1, Total: 1})

	if q.Status.NeedsParse() {
		if err := s.loadStandalone(ctx, tx, f, q, withPackage(known, q.PackageID)); err != nil {
			return 0, err
		}
	} else {
		s.logger.Verbose("%s is unchanged (package %d)", f.path, q.PackageID)
	}

	if scope.SessionID != "" {
		if err := registry.AttachToSession(ctx, tx, scope.SessionID, q.PackageID); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	committed = true
	s.observer.OnEvent(Event{Phase: PhaseCommit, Path: f.path})
	return q.PackageID, nil
}

func (s *LoadService) loadStandalone(ctx context.Context, tx zclload.Tx, f *subFile, q registry.Qualification, known []int64) error {
	if q.Status == zclload.Changed {
		deps, err := registry.Supersede(ctx, tx, q.PackageID)
		if err != nil {
			return err
		}
		for _, id := range deps {
			s.logger.Warn("Package %d extends the previous content of %s; reload it to restore its extensions", id, f.path)
		}
	}

	graph, err := parseFile(f, s.context())
	if err != nil {
		return err
	}
	s.observer.OnEvent(Event{Phase: PhaseParse, Path: f.path, Status: q.Status, Done: 1, Total: 1})

	loader := batch.NewLoader(discriminator.NewResolver(), s.logger, s.options.Workers)
	pending, err := loader.Load(ctx, tx, graph, q.PackageID, known)
	if err != nil {
		return err
	}
	s.observer.OnEvent(Event{Phase: PhaseLoad, Path: f.path, Status: q.Status, Done: 1, Total: 1})

	skipped, err := loader.RunDeferred(ctx, tx, pending, known)
	if err != nil {
		return err
	}
	s.observer.OnEvent(Event{Phase: PhaseDeferred, Done: len(pending) - skipped, Total: len(pending)})

	if _, err := resolve.New(s.logger, 0).Resolve(ctx, tx, known); err != nil {
		return err
	}
	s.observer.OnEvent(Event{Phase: PhaseResolve})
	return nil
}

// withPackage appends id to known unless it is already there.
func withPackage(known []int64, id int64) []int64 {
	out := make([]int64, 0, len(known)+1)
	for _, k := range known {
		if k != id {
			out = append(out, k)
		}
	}
	return append(out, id)
}
