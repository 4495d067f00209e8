package services

import "github.com/vvka-141/zclload/pkg/zclload"

// Phase names a step of a load operation.
type Phase string

const (
	PhaseQualify  Phase = "qualify"
	PhaseParse    Phase = "parse"
	PhaseLoad     Phase = "load"
	PhaseDeferred Phase = "deferred"
	PhaseResolve  Phase = "resolve"
	PhaseCommit   Phase = "commit"
)

// Event reports progress of a load. Path and Status are set for per-file
// events; Done and Total count files within the phase.
type Event struct {
	Phase  Phase
	Path   string
	Status zclload.QualificationStatus
	Done   int
	Total  int
}

// Observer receives progress events. Events are delivered synchronously
// from the goroutine running the load.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnEvent calls f(e).
func (f ObserverFunc) OnEvent(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) OnEvent(Event) {}
