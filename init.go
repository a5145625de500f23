package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/facebookgo/inject"
	"github.com/op/go-logging"
	"github.com/spf13/cobra"
	"github.com/tryanzu/cart/core/config"
	"github.com/tryanzu/cart/core/shell"
	"github.com/tryanzu/cart/deps"
)

var log = logging.MustGetLogger("main")

func main() {
	var rootCmd = &cobra.Command{
		Use:          "cart",
		Short:        "Persistent shopping cart",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Lists the cart contents",
			Args:  cobra.NoArgs,
			RunE:  run(func(m *shell.Module) func(io.Writer, []string) error { return m.Show }),
		},
		&cobra.Command{
			Use:   "add <id> [title] [image_url] [price]",
			Short: "Puts one unit of an item in the cart",
			Long: `Puts one unit of an item in the cart. An item
		already in the cart takes the new title, image and price.
		`,
			Args: cobra.RangeArgs(1, 4),
			RunE: run(func(m *shell.Module) func(io.Writer, []string) error { return m.Add }),
		},
		&cobra.Command{
			Use:   "inc <id>",
			Short: "Adds a unit of an item already in the cart",
			Args:  cobra.ExactArgs(1),
			RunE:  run(func(m *shell.Module) func(io.Writer, []string) error { return m.Increment }),
		},
		&cobra.Command{
			Use:   "dec <id>",
			Short: "Takes a unit out, dropping the item at zero",
			Args:  cobra.ExactArgs(1),
			RunE:  run(func(m *shell.Module) func(io.Writer, []string) error { return m.Decrement }),
		},
		&cobra.Command{
			Use:   "shell",
			Short: "Starts interactive shell",
			Long: `Starts cart interactive shell
		with the same commands.
		`,
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return boot(func(module *shell.Module, container deps.Deps) error {
					stop := watchConfig(container.ConfigFile)
					defer stop()

					if address := container.Config().UString("metrics.address", ""); address != "" {
						go serveMetrics(address, container)
					}

					shell.RunShell(module)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "config",
			Short: "Prints the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load(configFile())
				if err != nil {
					return err
				}
				return config.Dump(cmd.OutOrStdout(), cfg)
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(pick func(*shell.Module) func(io.Writer, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return boot(func(module *shell.Module, _ deps.Deps) error {
			return pick(module)(cmd.OutOrStdout(), args)
		})
	}
}

// boot bootstraps the dependencies, populates the module and runs fn. Pending
// writes are flushed before the stores are closed.
func boot(fn func(*shell.Module, deps.Deps) error) error {
	container, err := deps.Bootstrap(configFile())
	if err != nil {
		return err
	}
	defer container.Close()

	// Graph main object (used to inject dependencies)
	var (
		g      inject.Graph
		module shell.Module
	)
	err = g.Provide(
		&inject.Object{Value: container.Log(), Complete: true},
		&inject.Object{Value: container.Config(), Complete: true},
		&inject.Object{Value: container.Exceptions(), Complete: true},
		&inject.Object{Value: container.Carts(), Complete: true},
		&inject.Object{Value: &module},
	)
	if err != nil {
		return err
	}
	if err := g.Populate(); err != nil {
		return err
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		c, err := container.Carts().Use()
		if err != nil {
			return
		}
		if err := c.Flush(ctx); err != nil {
			log.Errorf("Pending cart writes were not flushed: %v", err)
		}
	}()

	return fn(&module, container)
}

func serveMetrics(address string, container deps.Deps) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", container.Exceptions().Metrics.Handler())

	log.Infof("Serving metrics on %s", address)
	if err := http.ListenAndServe(address, mux); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
