// pkg/telemetry/fanout.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tankerops/tankersim/pkg/sim"
	"github.com/tankerops/tankersim/pkg/util"
)

// Fanout sends each record to all of its sinks concurrently. A failure
// of one sink doesn't prevent delivery to the others; the errors of all
// failing sinks are returned together.
type Fanout []sim.Sink

func (f Fanout) Name() string {
	names := util.MapSlice(f, func(s sim.Sink) string { return s.Name() })
	return "fanout(" + strings.Join(names, ",") + ")"
}

func (f Fanout) Send(ctx context.Context, r sim.Record) error {
	errs := make([]error, len(f))
	var eg errgroup.Group
	for i, s := range f {
		eg.Go(func() error {
			if err := s.Send(ctx, r); err != nil {
				errs[i] = fmt.Errorf("%s: %w", s.Name(), err)
			}
			return nil
		})
	}
	_ = eg.Wait()
	return errors.Join(errs...)
}
