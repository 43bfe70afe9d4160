package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"ngt-go/packages/templating/src/compiler"
	"ngt-go/packages/templating/src/config"
	"ngt-go/packages/templating/src/di"
	"ngt-go/packages/templating/src/directives"
	"ngt-go/packages/templating/src/dom"
	"ngt-go/packages/templating/src/event"
	"ngt-go/packages/templating/src/observe"
)

var errMissingTemplate = errors.New("missing template path")

type options struct {
	template string
	context  string
	logLevel string
}

func parseFlags(cmd string, args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := &options{}
	fs.StringVar(&opts.context, "context", "", "JSON execution context")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, errMissingTemplate)
		return nil, errMissingTemplate
	}
	opts.template = fs.Arg(0)
	return opts, nil
}

func execute(cmd string, opts *options, stdout io.Writer) error {
	cfg := config.New(config.WithLogLevel(opts.logLevel))
	logger := cfg.Logger("ngt-go")

	markup, err := os.ReadFile(opts.template)
	if err != nil {
		return err
	}
	reg, err := compiler.NewRegistry(directives.All()...)
	if err != nil {
		return err
	}
	c := compiler.New(reg, compiler.WithConfig(cfg), compiler.WithLogger(logger.Named("compiler")))
	f, err := c.Compile(string(markup))
	if err != nil {
		return err
	}
	logger.Debug("template compiled", "path", opts.template, "bindings", len(f.Bindings()))
	if cmd == "check" {
		fmt.Fprintf(stdout, "%s: ok\n", opts.template)
		return nil
	}

	ctx, err := loadContext(opts.context)
	if err != nil {
		return err
	}
	obs := observe.NewObjectObserver(ctx, observe.WithLogger(logger.Named("observe")))
	events := event.NewDispatcher(ctx, logger.Named("event"))
	root := di.New(append(obs.Providers(), events.Providers()...)...)

	v, err := f.CreateView(root, ctx)
	if err != nil {
		return err
	}
	frag := dom.NewFragment()
	for _, n := range v.Nodes() {
		frag.AppendChild(n)
	}
	n, err := obs.Digest()
	if err != nil {
		return err
	}
	logger.Info("rendered", "path", opts.template, "updates", n, "injector", root.ID())
	if err := dom.RenderWithBoundaries(stdout, frag); err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout)
	return err
}

func loadContext(path string) (any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ctx any
	if err := json.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("context %s: %w", path, err)
	}
	return ctx, nil
}
