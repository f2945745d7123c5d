package model

type indexerImplementation struct {
	lessons    uint64
	classrooms uint64
	timeSlots  uint64
}

func (indexer *indexerImplementation) Index(lesson, classroom, timeSlot uint64) uint64 {
	return lesson + indexer.lessons*classroom + indexer.lessons*indexer.classrooms*timeSlot + 1
}

func (indexer *indexerImplementation) Attributes(index uint64) (lesson, classroom, timeSlot uint64) {
	index = index - 1
	lesson = index % indexer.lessons
	index = index / indexer.lessons

	classroom = index % indexer.classrooms
	index = index / indexer.classrooms

	timeSlot = index % indexer.timeSlots

	return lesson, classroom, timeSlot
}

func (indexer *indexerImplementation) Size() uint64 {
	return indexer.lessons * indexer.classrooms * indexer.timeSlots
}
