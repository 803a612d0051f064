package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lao-tseu-is-alive/go-boids/internal/cli"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:          "simulation",
		Short:        "Run the flock without a window and stream snapshots as JSON lines",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cli.Setup(v)
			if err != nil {
				return err
			}
			defer env.Shutdown()

			opts := runOptions{
				steps:     v.GetUint64("steps"),
				emitEvery: v.GetUint64("emit-every"),
				duration:  v.GetDuration("duration"),
			}
			return run(cmd.Context(), env, opts, cmd.OutOrStdout())
		},
	}
	cobra.CheckErr(cli.BindFlags(cmd, v))

	f := cmd.Flags()
	f.Uint64("steps", 500, "stop after this many steps (0 runs until interrupted)")
	f.Uint64("emit-every", 50, "write a snapshot every N steps (the final step of --steps is always written)")
	f.Duration("duration", 0, "stop after this long (0 means no limit)")
	cobra.CheckErr(v.BindPFlags(f))
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
