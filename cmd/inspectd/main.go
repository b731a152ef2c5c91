/*
Command inspectd serves an HTML document to a remote inspector front end.

	inspectd [--config file] [--transport stdio|websocket] [--listen addr] page.html

The document is loaded into a live page; linked style sheets are read
from the document's folder. Front ends talk to the page with the
command/event protocol of package session, one JSON message per line on
stdio, or one message per frame on a websocket.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/webinspect/config"
	"github.com/npillmayer/webinspect/dom"
	"github.com/npillmayer/webinspect/inspector/instrument"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"github.com/npillmayer/webinspect/inspector/session"
	"github.com/spf13/cobra"
)

// tracer traces with key 'webinspect.inspectd'.
func tracer() tracing.Trace {
	return tracing.Select("webinspect.inspectd")
}

var (
	configPath string
	transport  string
	listen     string
	depth      int
)

var rootCmd = &cobra.Command{
	Use:   "inspectd [flags] page.html",
	Short: "Serve an HTML page to a remote inspector",
	Long: `inspectd loads an HTML document into a live page and lets an inspector
front end browse and edit its DOM and style sheets, set breakpoints, and
undo edits.`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "inspectd.yaml", "configuration file")
	rootCmd.Flags().StringVarP(&transport, "transport", "t", "", "transport: stdio or websocket (overrides config)")
	rootCmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address for websocket transport (overrides config)")
	rootCmd.Flags().IntVar(&depth, "depth", 0, "initial depth of the document sent to the front end (overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("transport") {
		cfg.Server.Transport = transport
	}
	if cmd.Flags().Changed("listen") {
		cfg.Server.Listen = listen
	}
	if cmd.Flags().Changed("depth") {
		cfg.DOM.InitialDepth = depth
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ApplyTracing()
	return cfg, nil
}

func loadPage(path string, cfg *config.Config) (*dom.Page, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	markup, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot read page: %w", err)
	}
	return dom.NewPage(string(markup), "file://"+filepath.ToSlash(abs),
		dom.WithLoader(dom.DirLoader{Root: filepath.Dir(abs)}),
		dom.SkipWhitespace(cfg.Whitespace.SkipText))
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	page, err := loadPage(args[0], cfg)
	if err != nil {
		return err
	}
	srv := &server{
		page:   page,
		agents: instrument.NewRegistry(),
		open: func(page *dom.Page, agents *instrument.Registry, fe protocol.Frontend) *session.Session {
			return session.New(page, agents, fe,
				session.WithInitialDepth(cfg.DOM.InitialDepth),
				session.WithIndent(cfg.CSS.Indent))
		},
	}
	tracer().Infof("inspectd: serving %s on %s", page.URL(), cfg.Server.Transport)
	if cfg.Server.Transport == config.TransportWebsocket {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.listenAndServe(ctx, cfg.Server.Listen)
	}
	return srv.serve(context.Background(), newStdioConn(os.Stdin, os.Stdout))
}
