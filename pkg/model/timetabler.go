package model

import "github.com/limaJavier/ilp-timetabling/pkg/ilp"

// Outcome of a scheduling run. Result and Schedule carry an assignment only when Status is ilp.StatusOptimal
type Outcome struct {
	Status      ilp.Status
	Result      ilp.Result // Assignment over the x[lesson][classroom][timeSlot] space
	Schedule    Schedule
	Variables   uint64
	Constraints uint64
}

type Timetabler interface {
	Build(catalog *Catalog) (outcome Outcome, err error)

	Verify(result ilp.Result, catalog *Catalog) bool
}
