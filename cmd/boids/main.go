package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lao-tseu-is-alive/go-boids/internal/cli"
	"github.com/lao-tseu-is-alive/go-boids/pkg/simulation"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:          "boids",
		Short:        "Watch a flock of boids in a window",
		Long:         "Space starts and stops the flock, N steps once, W toggles walls, P the predator,\nM cycles the cursor mode, 1-3 toggle the rules, D the dead angle, V the rule vectors.\nLeft click drops an obstacle, right or ctrl click removes one.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cli.Setup(v)
			if err != nil {
				return err
			}
			defer env.Shutdown()
			return run(cmd.Context(), env)
		},
	}
	cobra.CheckErr(cli.BindFlags(cmd, v))
	return cmd
}

func run(ctx context.Context, env *cli.Env) error {
	cfg := env.Config
	swarm := simulation.New(cfg, simulation.WithLogger(env.Logger))

	ebiten.SetWindowSize(cfg.WorldWidth, cfg.WorldHeight)
	ebiten.SetWindowTitle("Boids")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	game := NewGame(ctx, cfg, swarm, env.Logger)
	game.Start()
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("game loop failed: %w", err)
	}
	env.Logger.Infof("closing after %d steps", swarm.Steps())
	return nil
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
