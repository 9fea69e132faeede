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

package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/walteh/batchfx/cmd/batchfx/opts"
	"github.com/walteh/batchfx/pkg/file"
	"github.com/walteh/batchfx/pkg/handler"
	"github.com/walteh/batchfx/pkg/log"
	"github.com/walteh/batchfx/pkg/task"
	"gitlab.com/tozd/go/errors"
)

// inputs turns command line paths into files, rejecting missing ones.
func inputs(paths []string) ([]file.File, error) {
	files := make([]file.File, 0, len(paths))
	for _, p := range paths {
		f, err := file.Stat(p)
		if err != nil {
			return nil, errors.Errorf("input: %w", err)
		}
		files = append(files, f)
	}
	return files, nil
}

// execute runs h over files as a single task and reports every event. The
// task's failure message becomes the returned error.
func execute(ctx context.Context, o *opts.RootOpts, files []file.File, h handler.Handler) ([]file.File, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("handler", fmt.Sprint(h)).Int("files", len(files)).Msg("executing")

	s := task.New(ctx, task.Options{Workers: o.Config.Workers})
	defer s.Close()

	events, unsubscribe := s.Subscribe(0)
	watched := make(chan log.Totals, 1)
	go func() {
		totals := o.Reporter.Watch(ctx, events)
		unsubscribe()
		watched <- totals
	}()

	id := s.Submit(files, h, true)
	o.Reporter.Track(id, h.DisplayName())

	t, _ := s.Task(id)
	select {
	case <-t.Done():
	case <-ctx.Done():
		s.Cancel(id)
		<-t.Done()
	}
	if err := s.Close(); err != nil {
		logger.Debug().Err(err).Msg("closing scheduler")
	}
	<-watched

	if ok, msg := t.Outcome(); !ok {
		if ctx.Err() != nil {
			return t.Result(), errors.Errorf("%s interrupted: %w", h.DisplayName(), ctx.Err())
		}
		return t.Result(), errors.Errorf("%s failed: %s", h.DisplayName(), msg)
	}
	return t.Result(), nil
}
