// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package task

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/walteh/batchfx/pkg/file"
	"github.com/walteh/batchfx/pkg/handler"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const defaultEventBuffer = 256

// Options configures a Scheduler.
type Options struct {
	// Workers bounds how many handlers execute at once; 0 means NumCPU.
	Workers int
	// EventBuffer is the capacity of the internal event queue.
	EventBuffer int
}

type subscriber struct {
	ch   chan Event
	stop chan struct{}
	once sync.Once
}

// 🗓️ Scheduler issues task ids and runs tasks on a bounded pool. Submitted
// tasks queue without limit; at most Workers of them run at a time.
//
// Every task reports through a single event queue that one dispatcher
// goroutine fans out to subscribers, in the order the events were
// published. A subscriber that stops reading eventually stalls the tasks
// behind it, so subscribers must drain or unsubscribe.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	pool   *semaphore.Weighted
	nextID atomic.Int64

	mu     sync.RWMutex
	tasks  map[int64]*Task
	closed bool

	eventsMu     sync.RWMutex
	events       chan Event
	eventsClosed bool
	dispatched   chan struct{}

	subsMu  sync.Mutex
	subs    map[int]*subscriber
	nextSub int
}

func New(ctx context.Context, opts Options) *Scheduler {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = defaultEventBuffer
	}

	ctx, cancel := context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)

	s := &Scheduler{
		ctx:        ctx,
		cancel:     cancel,
		group:      group,
		pool:       semaphore.NewWeighted(int64(opts.Workers)),
		tasks:      map[int64]*Task{},
		events:     make(chan Event, opts.EventBuffer),
		dispatched: make(chan struct{}),
		subs:       map[int]*subscriber{},
	}
	go s.dispatch()

	zerolog.Ctx(ctx).Debug().Int("workers", opts.Workers).Msg("scheduler started")
	return s
}

// Submit clones h, registers a task for it and queues it without blocking.
// Ids start at 1 and strictly increase. After Close the task is failed
// immediately.
func (s *Scheduler) Submit(files []file.File, h handler.Handler, showInPanel bool) int64 {
	id := s.nextID.Add(1)
	t := newTask(id, files, h.Clone(), showInPanel, s.publish)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[id] = t

	logger := zerolog.Ctx(s.ctx)
	if s.closed {
		logger.Debug().Int64("task", id).Msg("submit after close")
		t.abort("scheduler closed")
		return id
	}
	logger.Debug().Int64("task", id).Str("handler", h.Name()).Int("files", len(files)).Msg("task submitted")

	s.group.Go(func() error {
		if err := s.pool.Acquire(s.ctx, 1); err != nil {
			t.abort("scheduler closed")
			return nil
		}
		defer s.pool.Release(1)
		if s.isClosed() {
			t.abort("scheduler closed")
			return nil
		}
		t.run(s.ctx)
		return nil
	})
	return id
}

// Cancel asks a running task to stop. Unknown ids and tasks that are not
// running are ignored; the result reports whether the request was passed on.
func (s *Scheduler) Cancel(id int64) bool {
	t, ok := s.Task(id)
	if !ok {
		return false
	}
	forwarded := t.Cancel()
	zerolog.Ctx(s.ctx).Debug().Int64("task", id).Bool("forwarded", forwarded).Msg("cancel requested")
	return forwarded
}

func (s *Scheduler) Task(id int64) (*Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	return t, ok
}

// Tasks returns the registered tasks ordered by id.
func (s *Scheduler) Tasks() []*Task {
	s.mu.RLock()
	out := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Remove evicts a terminal task. Queued and running tasks stay.
func (s *Scheduler) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || !t.State().Terminal() {
		return false
	}
	delete(s.tasks, id)
	return true
}

func (s *Scheduler) RunningCount() int {
	n := 0
	for _, t := range s.Tasks() {
		if t.State() == Running {
			n++
		}
	}
	return n
}

// Wait blocks until every task registered so far is terminal or ctx ends.
func (s *Scheduler) Wait(ctx context.Context) error {
	for _, t := range s.Tasks() {
		select {
		case <-t.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe returns a stream of every event published from now on and a
// function that ends the subscription. The stream is closed by the
// unsubscribe function or by Close.
func (s *Scheduler) Subscribe(buffer int) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, buffer), stop: make(chan struct{})}

	s.subsMu.Lock()
	if s.subs == nil {
		s.subsMu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	s.subsMu.Unlock()

	return sub.ch, func() {
		// stop first so a dispatcher blocked on this subscriber lets go of subsMu
		sub.once.Do(func() { close(sub.stop) })
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub.ch)
		}
	}
}

// Close stops accepting work, cancels running tasks, fails queued ones and
// waits for all of them before closing every subscription.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	for _, t := range s.Tasks() {
		t.Cancel()
	}
	s.cancel()
	err := s.group.Wait()

	s.eventsMu.Lock()
	s.eventsClosed = true
	close(s.events)
	s.eventsMu.Unlock()
	<-s.dispatched

	zerolog.Ctx(s.ctx).Debug().Msg("scheduler closed")
	return err
}

func (s *Scheduler) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Scheduler) publish(ev Event) {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	if s.eventsClosed {
		return
	}
	s.events <- ev
}

func (s *Scheduler) dispatch() {
	defer close(s.dispatched)
	for ev := range s.events {
		s.subsMu.Lock()
		for _, sub := range s.subs {
			select {
			case sub.ch <- ev:
			case <-sub.stop:
			}
		}
		s.subsMu.Unlock()
	}

	s.subsMu.Lock()
	for id, sub := range s.subs {
		close(sub.ch)
		delete(s.subs, id)
	}
	s.subs = nil
	s.subsMu.Unlock()
}
