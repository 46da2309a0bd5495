package service

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"postboard/app/client"
	"postboard/app/controllers"
	"postboard/app/page"
	"postboard/app/routes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) serveCommand() *cobra.Command {
	var addr, remote string
	var parallelism int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the page server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Server.Addr = addr
			}
			if remote != "" {
				c.cfg.Remote.BaseURL = remote
			}
			if parallelism > 0 {
				c.cfg.Assembly.Parallelism = parallelism
			}
			if err := c.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.runPageServer(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&remote, "remote", "", "collection store base URL (overrides remote.base_url)")
	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "posts assembled concurrently (overrides assembly.parallelism)")
	return cmd
}

// runPageServer serves one live page until ctx is cancelled.
func (c *cli) runPageServer(ctx context.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	session, err := c.newSession(client.WithMetrics(client.NewMetrics(reg)))
	if err != nil {
		return err
	}
	users := session.Initialize(ctx)
	c.log.Info("page initialized", zap.Int("users", users), zap.String("remote", c.cfg.Remote.BaseURL))

	router := routes.SetupPageRoutes(controllers.NewPageController(session, c.log), reg, c.log)
	return routes.StartServer(ctx, c.cfg.Server.Addr, router, c.log)
}

func (c *cli) newSession(opts ...client.Option) (*page.Session, error) {
	opts = append([]client.Option{client.WithLogger(c.log)}, opts...)
	source := client.New(c.cfg.Remote.BaseURL, opts...)
	return page.NewSession(source, page.Options{
		Title:       c.cfg.Server.Title,
		Parallelism: c.cfg.Assembly.Parallelism,
	}, c.log)
}

func (c *cli) renderCommand() *cobra.Command {
	var userID int
	var remote string
	var mainOnly bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the page for one user and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote != "" {
				c.cfg.Remote.BaseURL = remote
			}
			session, err := c.newSession()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			session.Initialize(ctx)
			if !session.Select(ctx, strconv.Itoa(userID)) {
				return fmt.Errorf("selection of user %d was not handled", userID)
			}
			if !mainOnly {
				return session.Render(c.out)
			}
			state, err := session.Snapshot()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.out, state.Main)
			return err
		},
	}
	cmd.Flags().IntVar(&userID, "user", 1, "user whose posts are rendered")
	cmd.Flags().StringVar(&remote, "remote", "", "collection store base URL (overrides remote.base_url)")
	cmd.Flags().BoolVar(&mainOnly, "main-only", false, "print only the contents of <main>")
	return cmd
}
