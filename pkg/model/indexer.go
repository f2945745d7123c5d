package model

// indexer interface is design to give a unique index to a combination of scheduling variable's attributes and vice versa
type indexer interface {
	// Returns a unique 1-based index to a combination of scheduling variable's attributes
	Index(lesson, classroom, timeSlot uint64) uint64
	// Returns a combination of scheduling variable's attributes from a unique index
	Attributes(index uint64) (lesson, classroom, timeSlot uint64)
	// Returns the amount of indices
	Size() uint64
}

func newIndexer(lessons, classrooms, timeSlots uint64) indexer {
	return &indexerImplementation{
		lessons:    lessons,
		classrooms: classrooms,
		timeSlots:  timeSlots,
	}
}
