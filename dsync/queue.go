package dsync

// queue holds the paths of one cycle that have not been submitted yet.
type queue struct {
	paths []string
}

func newQueue(paths []string) *queue {
	return &queue{paths: paths}
}

// pop removes and returns the head of the queue.
func (q *queue) pop() (string, bool) {
	if len(q.paths) == 0 {
		return "", false
	}
	path := q.paths[0]
	q.paths = q.paths[1:]
	return path, true
}

func (q *queue) len() int {
	return len(q.paths)
}
