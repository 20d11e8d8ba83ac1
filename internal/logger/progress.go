package logger

// Progress logs how many of a known number of items have been processed.
type Progress struct {
	log   *Logger
	label string
	total int
	done  int
	every int
}

// NewProgress starts a progress counter. A record is logged every `every`
// items and once more when the last item is done.
func (l *Logger) NewProgress(label string, total, every int) *Progress {
	if every < 1 {
		every = 1
	}

	return &Progress{log: l, label: label, total: total, every: every}
}

// Step marks one more item as processed.
func (p *Progress) Step() {
	p.done++

	if p.done%p.every == 0 || p.done == p.total {
		p.log.Info(p.label, "done", p.done, "total", p.total)
	}
}

// Done returns the number of processed items.
func (p *Progress) Done() int {
	return p.done
}
