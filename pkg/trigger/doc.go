// Package trigger decides when a diagram is laid out again.
//
// Three things cause a new layout pass: the first display, a change of the
// diagram data, and a change of the viewport width. A [Loop] receives all
// of them and runs its handler for each one in turn, so two passes never
// overlap on the same tree. Triggers that arrive while a pass is running
// are merged into a single follow-up pass.
//
// [FileWatcher] turns filesystem events for one data file into
// [DataChanged] triggers:
//
//	loop := trigger.NewLoop(func(ctx context.Context, ev trigger.Event) error {
//	    return rerender(ctx, ev)
//	}, logger)
//	w, err := trigger.NewFileWatcher("incident.yaml", trigger.DefaultDebounce)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//	go w.Run(ctx, loop.Trigger)
//	return loop.Run(ctx)
package trigger
