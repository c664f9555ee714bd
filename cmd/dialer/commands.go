package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/xraph/ioc"
	"github.com/xraph/ioc/internal/config"
	"github.com/xraph/ioc/internal/device"
	"github.com/xraph/ioc/internal/ras"
)

// cli is one invocation of the dialer. The app is created before a command
// runs and must be closed by the caller once Execute returns, whether or not
// the command failed.
type cli struct {
	app         *app
	withMetrics bool
}

func (c *cli) command() *cobra.Command {
	root := &cobra.Command{
		Use:          "dialer",
		Short:        "Dial remote access connections",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cmd.Flags().Changed("metrics") {
				cfg.Metrics = c.withMetrics
			}

			var err error
			c.app, err = newApp(cfg)

			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app.metrics == nil {
				return nil
			}

			return writeMetrics(cmd, c.app)
		},
	}

	root.PersistentFlags().BoolVar(&c.withMetrics, "metrics", false, "Print container metrics after the command")

	current := func() *app { return c.app }
	root.AddCommand(
		newDevicesCmd(current),
		newDialCmd(current),
		newServicesCmd(current),
	)

	return root
}

// close disposes the container and flushes the logger. It is a no-op if no
// app was created or it was already closed.
func (c *cli) close() error {
	if c.app == nil {
		return nil
	}

	a := c.app
	c.app = nil

	return a.close()
}

// dialer devices
func newDevicesCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List the configured devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return current().inScope(cmd.Context(), func(ctx context.Context, s *ioc.Scope) error {
				e, err := ioc.Resolve[device.Enumerator](s)
				if err != nil {
					return err
				}

				devices, err := e.Devices(ctx)
				if err != nil {
					return err
				}

				for _, d := range devices {
					fmt.Fprintln(cmd.OutOrStdout(), d)
				}

				return nil
			})
		},
	}
}

// dialer dial <device> <entry>
func newDialCmd(current func() *app) *cobra.Command {
	var hold time.Duration

	cmd := &cobra.Command{
		Use:   "dial <device> <entry>",
		Short: "Dial an entry, report its statistics and hang up",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()

			return a.inScope(cmd.Context(), func(ctx context.Context, s *ioc.Scope) error {
				session, err := ioc.Resolve[*ras.Session](s)
				if err != nil {
					return err
				}

				dialCtx, cancel := context.WithTimeout(ctx, a.cfg.DialTimeout)
				defer cancel()

				c, err := session.Dial(dialCtx, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "connected %s on %s to %s\n", c.ID, c.Device, c.Entry)

				if hold > 0 {
					select {
					case <-time.After(hold):
					case <-ctx.Done():
						return ctx.Err()
					}
				}

				stats, err := session.Stats(ctx, c.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s connected for %s\n", c.ID, stats.Duration.Round(time.Millisecond))

				// The scope hangs up on dispose.
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&hold, "hold", 0, "How long to keep the connection open")

	return cmd
}

// dialer services
func newServicesCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List the services registered in the container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SERVICE\tLIFECYCLE\tIMPLEMENTATION\tDEPENDENCIES")

			for _, info := range current().container.Services() {
				deps := make([]string, len(info.Dependencies))
				for i, d := range info.Dependencies {
					deps[i] = d.String()
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					info.Service, info.Lifecycle, info.Implementation, strings.Join(deps, ", "))
			}

			return w.Flush()
		},
	}
}

func writeMetrics(cmd *cobra.Command, a *app) error {
	families, err := a.metrics.Gather()
	if err != nil {
		return err
	}

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(cmd.OutOrStdout(), mf); err != nil {
			return err
		}
	}

	return nil
}
