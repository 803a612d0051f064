package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/lao-tseu-is-alive/go-boids/internal/cli"
	"github.com/lao-tseu-is-alive/go-boids/pkg/simulation"
)

type runOptions struct {
	steps     uint64
	emitEvery uint64
	duration  time.Duration
}

// run steps a swarm in the background and writes snapshots to out, one JSON
// object per line. It returns once the step budget is spent, the duration has
// elapsed or ctx is cancelled.
func run(ctx context.Context, env *cli.Env, opts runOptions, out io.Writer) error {
	swarm := simulation.New(env.Config, simulation.WithLogger(env.Logger))
	stepper := simulation.NewStepper(swarm, env.Logger)
	pacer := cli.NewPacer(time.Duration(env.Config.FrameDelayMs) * time.Millisecond)

	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	snapshots := make(chan *simulation.Snapshot, 8)

	g.Go(func() error {
		defer close(snapshots)
		stepCtx, cancelStep := context.WithCancel(gctx)
		defer cancelStep()

		var n uint64 // only touched by the stepper goroutine
		stepper.Start(stepCtx, func(loopCtx context.Context, _ time.Duration) {
			n++
			last := opts.steps > 0 && n == opts.steps
			if last || (opts.emitEvery > 0 && n%opts.emitEvery == 0) {
				select {
				case snapshots <- swarm.Snapshot(nil):
				case <-gctx.Done():
				}
			}
			if last {
				// the loop checks stepCtx before its next step
				cancelStep()
				return
			}
			_ = pacer.Wait(loopCtx)
		})

		<-stepCtx.Done()
		stepper.Stop()
		return nil
	})

	g.Go(func() error {
		for snap := range snapshots {
			st, err := snap.ToProto()
			if err != nil {
				return err
			}
			b, err := protojson.Marshal(st)
			if err != nil {
				return fmt.Errorf("failed to marshal snapshot: %w", err)
			}
			if _, err := fmt.Fprintf(out, "%s\n", b); err != nil {
				return fmt.Errorf("failed to write snapshot: %w", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	env.Logger.Infof("simulation done after %d steps", swarm.Steps())
	return nil
}
