package event

// Schedule walks events in order and interleaves rendering with event
// application: render covers [cursor, t) and apply then runs for the event
// at t. A final render reaches nframes. Event times are clamped to
// [cursor, nframes], so out-of-order or out-of-range events apply at the
// nearest valid frame instead of rewinding. Empty ranges are not rendered.
func Schedule(events []Event, nframes int, render func(start, end int), apply func(Event)) {
	cursor := 0

	for _, e := range events {
		t := min(max(e.Time, cursor), nframes)
		if t > cursor {
			render(cursor, t)
			cursor = t
		}

		apply(e)
	}

	if nframes > cursor {
		render(cursor, nframes)
	}
}
