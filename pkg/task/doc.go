/*
Package task runs handlers as tasks on a bounded worker pool.

	  Submit(files, handler)
	          |
	  +-------v-------+      +-----------+
	  |   Scheduler   |----->|   Task    |  queued -> running -> succeeded
	  | ids, registry |      | (Progress |                   \-> failed
	  | pool, events  |      |   sink)   |
	  +-------+-------+      +-----+-----+
	          |                    |
	          +<------ Event ------+
	          |
	     Subscribe()

🎯 Purpose:
- Gives every submission a unique, increasing id
- Clones the handler so each task owns its instance
- Bounds how many tasks run at once
- Publishes state, progress and per-file events on one stream

🔄 Lifecycle:
1. Submit registers a queued task and returns its id at once
2. A worker slot frees up and the task starts running
3. The handler reports progress through the task
4. The task ends succeeded or failed and its Done channel closes

⚠️ Cancel only affects a running task; a queued one starts normally. Close
cancels running tasks and fails queued ones.

Example:

	s := task.New(ctx, task.Options{Workers: 4})
	defer s.Close()

	events, unsubscribe := s.Subscribe(16)
	defer unsubscribe()

	id := s.Submit(files, handler.NewStat(true), true)
	for ev := range events {
		if ev.TaskID == id && ev.Kind == task.EventTaskCompleted {
			break
		}
	}
*/
package task
