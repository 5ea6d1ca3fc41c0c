package preview

import (
	"fmt"

	"github.com/chazu/shelfwright/pkg/scene"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
)

// Status says what happened to a configuration change.
type Status int

const (
	// StatusInstalled means a new graph replaced the previous one.
	StatusInstalled Status = iota
	// StatusRejected means the configuration was invalid and the previous
	// graph stays installed.
	StatusRejected
	// StatusDeferred means the surface is not ready yet; the configuration
	// is built once it is.
	StatusDeferred
	// StatusSuperseded means a newer change arrived while building, and
	// the result was dropped.
	StatusSuperseded
)

func (s Status) String() string {
	switch s {
	case StatusInstalled:
		return "installed"
	case StatusRejected:
		return "rejected"
	case StatusDeferred:
		return "deferred"
	case StatusSuperseded:
		return "superseded"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome reports one configuration change to listeners.
type Outcome struct {
	Status     Status
	Generation uint64
	// GraphID and Bounds describe the installed graph: the new one when
	// Status is StatusInstalled, otherwise the one that was retained
	// (zero if none).
	GraphID     uuid.UUID
	Fingerprint string
	Bounds      scene.BoundingBox
	Err         error
}

// CameraTarget is the point a camera should orbit after this change.
func (o Outcome) CameraTarget() v3.Vec {
	return o.Bounds.Center
}

// Listener observes every outcome, in order.
type Listener func(Outcome)
