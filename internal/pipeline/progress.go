package pipeline

// progress reports each quarter milestone (25, 50, 75 percent) once.
type progress struct {
	total int
	next  int // index into milestones
}

var milestones = [...]int{25, 50, 75}

func newProgress(total int) *progress {
	return &progress{total: total}
}

// advance returns the milestones crossed now that done files are finished.
func (p *progress) advance(done int) []int {
	var crossed []int
	for p.next < len(milestones) && p.total > 0 && done*100 >= milestones[p.next]*p.total {
		crossed = append(crossed, milestones[p.next])
		p.next++
	}
	return crossed
}
