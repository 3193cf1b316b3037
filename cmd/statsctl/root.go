package main

import (
	"context"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/baseball-stats/internal/app"
	"github.com/riskibarqy/baseball-stats/internal/config"
	"github.com/riskibarqy/baseball-stats/internal/platform/logging"
)

// ContainerFactory builds the dependencies a subcommand runs against.
type ContainerFactory func(ctx context.Context) (*app.Container, error)

type cli struct {
	stdout       io.Writer
	newContainer ContainerFactory
	container    *app.Container
}

// NewRootCommand wires the statsctl command tree. A nil factory loads config
// from the environment (and .env) and builds a fresh container.
func NewRootCommand(stdout, stderr io.Writer, factory ContainerFactory) *cobra.Command {
	c := &cli{stdout: stdout, newContainer: factory}
	if c.newContainer == nil {
		c.newContainer = containerFromEnv(stderr)
	}

	rc := &cobra.Command{
		Use:           "statsctl",
		Short:         "Refresh and inspect baseball player stats",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}

	rc.AddCommand(newRefreshCommand(c))
	rc.AddCommand(newQueryCommand(c))
	rc.AddCommand(newGetCommand(c))

	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

func containerFromEnv(stderr io.Writer) ContainerFactory {
	return func(ctx context.Context) (*app.Container, error) {
		_ = godotenv.Load()

		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		logger := logging.New(logging.Options{
			Level:   cfg.LogLevel,
			Service: "statsctl",
			Env:     cfg.AppEnv,
			Output:  stderr,
		})
		return app.NewContainer(ctx, cfg, logger)
	}
}

func (c *cli) load(ctx context.Context) (*app.Container, error) {
	if c.container != nil {
		return c.container, nil
	}
	container, err := c.newContainer(ctx)
	if err != nil {
		return nil, err
	}
	c.container = container
	return container, nil
}

func (c *cli) close() error {
	if c.container == nil {
		return nil
	}
	err := c.container.Close()
	c.container = nil
	return err
}

func (c *cli) print(v any) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(c.stdout, string(out))
	return err
}
