package main

import (
	"bufio"
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"github.com/kbukum/convpipe/component"
	"github.com/kbukum/convpipe/errors"
	"github.com/kbukum/convpipe/pipe"
	"github.com/kbukum/convpipe/server"
	"github.com/kbukum/convpipe/version"
)

func runCmd(ctx context.Context, env *cliEnv, args []string) error {
	var (
		common  commonFlags
		text    string
		value   string
		values  string
		literal bool
	)
	fs := newFlagSet("run", env)
	common.register(fs)
	fs.StringVarP(&text, "pipe", "p", "", "pipe expression to run (required)")
	fs.StringVarP(&value, "value", "v", "null", "input value as JSON; plain text is taken as a string")
	fs.StringVar(&values, "values", "", "input collection as a JSON array; overrides --value")
	fs.BoolVarP(&literal, "string", "s", false, "take --value as a string without JSON decoding")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return usagef("--pipe is required")
	}
	var items []any
	if fs.Changed("values") {
		if err := json.Unmarshal([]byte(values), &items); err != nil {
			return usagef("--values must be a JSON array: %v", err)
		}
	}

	cfg, err := common.load(true)
	if err != nil {
		return err
	}
	p, err := buildProcess(ctx, cfg, env.stderr, true)
	if err != nil {
		return err
	}

	return p.app.RunTask(ctx, func(ctx context.Context) error {
		var (
			out any
			err error
		)
		if fs.Changed("values") {
			out, err = p.lib.RunCollection(ctx, text, items)
		} else {
			out, err = p.lib.Run(ctx, text, decodeValue(value, literal))
		}
		if err != nil {
			return describeError(err)
		}
		return writeJSON(env.stdout, out)
	})
}

func mapCmd(ctx context.Context, env *cliEnv, args []string) error {
	var (
		common    commonFlags
		file      string
		record    string
		keepGoing bool
	)
	fs := newFlagSet("map", env)
	common.register(fs)
	fs.StringVarP(&file, "mapping", "m", "", "mapping file (default: mapping.file from config)")
	fs.StringVarP(&record, "record", "r", "", "record as a JSON object; records are read from stdin when omitted")
	fs.BoolVar(&keepGoing, "continue", false, "report failing records on stderr and keep going")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := common.load(true)
	if err != nil {
		return err
	}
	p, err := buildProcess(ctx, cfg, env.stderr, true)
	if err != nil {
		return err
	}
	mapper, err := p.loadMapper(file)
	if err == nil && mapper == nil {
		err = fmt.Errorf("no mapping: pass --mapping or set mapping.file")
	}
	if err != nil {
		_ = p.app.Shutdown(ctx)
		return err
	}

	var in io.Reader = env.stdin
	if record != "" {
		in = strings.NewReader(record)
	}

	return p.app.RunTask(ctx, func(ctx context.Context) error {
		dec := json.NewDecoder(bufio.NewReader(in))
		for n := 1; ; n++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec map[string]any
			if err := dec.Decode(&rec); err != nil {
				if goerrors.Is(err, io.EOF) {
					return nil
				}
				return fmt.Errorf("record %d: %w", n, err)
			}
			out, err := mapper.Apply(ctx, rec)
			if err != nil {
				if keepGoing {
					fmt.Fprintf(env.stderr, "record %d: %v\n", n, describeError(err))
					continue
				}
				return fmt.Errorf("record %d: %w", n, describeError(err))
			}
			if err := writeJSON(env.stdout, out); err != nil {
				return err
			}
		}
	})
}

func serveCmd(ctx context.Context, env *cliEnv, args []string) error {
	var (
		common commonFlags
		host   string
		port   int
		file   string
	)
	fs := newFlagSet("serve", env)
	common.register(fs)
	fs.StringVar(&host, "host", "", "listen host (default: server.host)")
	fs.IntVar(&port, "port", 0, "listen port (default: server.port)")
	fs.StringVarP(&file, "mapping", "m", "", "mapping file served at /v1/map (default: mapping.file)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, err := common.load(false)
	if err != nil {
		return err
	}
	if fs.Changed("host") {
		cfg.Server.Host = host
	}
	if fs.Changed("port") {
		cfg.Server.Port = port
	}

	p, err := buildProcess(ctx, cfg, env.stderr, false)
	if err != nil {
		return err
	}
	mapper, err := p.loadMapper(file)
	if err != nil {
		_ = p.app.Shutdown(ctx)
		return err
	}

	app := p.app
	srv := server.New(cfg.Server, app.Logger.WithComponent("http"))
	apiOpts := []server.APIOption{
		server.WithService(app.Name, app.Version),
		server.WithHealth(func(ctx context.Context) []component.Health {
			return append(app.Components.HealthAll(ctx), p.lib.Health(ctx)...)
		}),
	}
	if mapper != nil {
		apiOpts = append(apiOpts, server.WithMapper(mapper))
	}
	server.NewAPI(p.lib.Engine(), apiOpts...).Register(srv.Engine())

	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		_ = app.Shutdown(ctx)
		return err
	}
	return app.Run(ctx)
}

func convertersCmd(ctx context.Context, env *cliEnv, args []string) error {
	var (
		common   commonFlags
		table    string
		asJSON   bool
		selected []pipe.ConverterInfo
	)
	fs := newFlagSet("converters", env)
	common.register(fs)
	fs.StringVarP(&table, "table", "t", "", "only list one table (unary or n-ary)")
	fs.BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if table != "" && table != string(pipe.TableUnary) && table != string(pipe.TableNAry) {
		return usagef("--table must be %q or %q", pipe.TableUnary, pipe.TableNAry)
	}

	cfg, err := common.load(true)
	if err != nil {
		return err
	}
	p, err := buildProcess(ctx, cfg, env.stderr, true)
	if err != nil {
		return err
	}

	return p.app.RunTask(ctx, func(ctx context.Context) error {
		for _, info := range p.lib.Registry().List() {
			if table == "" || string(info.Table) == table {
				selected = append(selected, info)
			}
		}
		if asJSON {
			return writeJSON(env.stdout, selected)
		}
		tw := tabwriter.NewWriter(env.stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tTABLE\tPROVIDER")
		for _, info := range selected {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, info.Table, info.Provider)
		}
		return tw.Flush()
	})
}

func versionCmd(_ context.Context, env *cliEnv, args []string) error {
	var (
		asJSON bool
		short  bool
	)
	fs := newFlagSet("version", env)
	fs.BoolVar(&asJSON, "json", false, "print JSON")
	fs.BoolVar(&short, "short", false, "print the version only")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	info := version.GetVersionInfo()
	switch {
	case asJSON:
		return writeJSON(env.stdout, info)
	case short:
		_, err := fmt.Fprintln(env.stdout, version.GetShortVersion())
		return err
	default:
		_, err := fmt.Fprint(env.stdout, info.String())
		return err
	}
}

// decodeValue reads raw as JSON, falling back to the raw text so that
// `--value hello` works without quoting.
func decodeValue(raw string, literal bool) any {
	if literal {
		return raw
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// describeError renders an AppError with its code and details on one line.
func describeError(err error) error {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", appErr.Code, appErr.Message)
	for _, k := range slices.Sorted(maps.Keys(appErr.Details)) {
		fmt.Fprintf(&b, " %s=%v", k, appErr.Details[k])
	}
	return goerrors.New(b.String())
}
