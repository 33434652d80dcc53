package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0l0c0ding/solocoding/server"
	"github.com/s0l0c0ding/solocoding/watch"
)

func newBuildCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Render every route into the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()
			a.logger.Info("starting build", "version", SERVER_SIGNATURE)
			return a.svc.BuildStatic(ctx)
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	var watchFlag bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Build the site and serve it, optionally rebuilding on changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()
			a.logger.Info("starting", "version", SERVER_SIGNATURE, "listen", a.cfg.Listen, "watch", watchFlag)

			srv := server.New(a.cfg, a.svc, a.logger, SERVER_SIGNATURE)
			if !watchFlag {
				return srv.Start(ctx)
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.Start(gctx) })
			g.Go(func() error {
				return a.watcher().Run(gctx, a.svc.BuildStatic)
			})
			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&watchFlag, "watch", false, "rebuild when posts, templates or assets change")
	return cmd
}

func newRoutesCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List every route the build would render",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			routes, err := a.svc.Routes(context.Background())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(routes)
			}
			for _, r := range routes {
				fmt.Fprintf(out, "%-14s %s\n", r.Type, r.Route)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the handled routes as JSON")
	return cmd
}

func (a *app) watcher() *watch.Watcher {
	dirs := []string{a.cfg.AssetsDir}
	if folder, _, ok := a.cfg.ContentFolder(); ok {
		dirs = append(dirs, folder)
	}
	if a.cfg.TemplateDir != "" {
		dirs = append(dirs, a.cfg.TemplateDir)
	}
	return watch.New(dirs, []string{a.cfg.OutputDir}, a.cfg.Watch.Debounce(), a.logger)
}
