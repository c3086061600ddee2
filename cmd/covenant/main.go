package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"covenant/internal/checker"
	"covenant/internal/config"
	"covenant/internal/contract"
	"covenant/internal/engine"
	"covenant/internal/runtime"
	"covenant/internal/store"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	var err error
	switch cmd {
	case "check":
		err = cmdCheck(os.Args[2:])
	case "run":
		err = cmdRun(os.Args[2:])
	case "repl":
		err = cmdRepl(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	case "version", "-v", "--version":
		fmt.Println("covenant", version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
	if err != nil {
		fail(err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`Covenant contract language CLI

Usage:
  covenant check <file.cov|dir>...
  covenant run [flags] <file.cov|dir>... [-call contract.function [args...]]
  covenant repl [flags]

Commands:
  check    Type-check contracts without running them
  run      Deploy contracts in dependency order, printing top-level results
  repl     Interactive session against a scratch contract
  version  Print the version

Flags (run, repl):
  -config  Configuration file (default: covenant.yaml if present)
  -store   Store driver: memory, sqlite or postgres
  -dsn     Store data source name
  -sender  tx-sender for deployments and calls (default: "user")
  -height  Simulated chain height
  -v       Log deployments and transactions to stderr`)
}

var colorStderr = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

func red(s string) string {
	if !colorStderr {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, red("error: "+err.Error()))
}

// options are the flags shared by run and repl.
type options struct {
	configPath string
	driver     string
	dsn        string
	sender     string
	height     int64
	verbose    bool
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "configuration file")
	fs.StringVar(&o.driver, "store", "", "store driver: memory|sqlite|postgres")
	fs.StringVar(&o.dsn, "dsn", "", "store data source name")
	fs.StringVar(&o.sender, "sender", "user", "tx-sender")
	fs.Int64Var(&o.height, "height", -1, "simulated chain height")
	fs.BoolVar(&o.verbose, "v", false, "verbose logging")
}

// config loads the configuration file and applies flag overrides.
func (o *options) config() (*config.Config, error) {
	path, optional := o.configPath, false
	if path == "" {
		path, optional = config.FileName, true
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return nil, err
	}
	if o.driver != "" {
		cfg.Store.Driver = o.driver
	}
	if o.dsn != "" {
		cfg.Store.DSN = o.dsn
	}
	if o.height >= 0 {
		cfg.Chain.Height = o.height
	}
	if o.verbose {
		cfg.Log.Verbose = true
	}
	return cfg, nil
}

// open builds an engine from cfg. The returned store must be closed.
func open(ctx context.Context, cfg *config.Config) (*engine.Engine, store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, nil, err
	}
	printer := runtime.WriterPrinter(os.Stdout)
	var opts engine.Options
	if cfg.Log.Verbose {
		opts.Logger = log.New(os.Stderr, "covenant: ", log.LstdFlags)
		printer = runtime.LogPrinter(opts.Logger)
	}
	opts.Env = runtime.NewEnv(printer, cfg.SimulatedChain(), cfg.Limits())
	return engine.New(st, opts), st, nil
}

// loadSources loads files and directories in argument order and sorts the
// result into deployment order.
func loadSources(paths []string) ([]*contract.Source, error) {
	var srcs []*contract.Source
	var errs []error
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if info.IsDir() {
			dirSrcs, dirErrs := contract.LoadDir(path)
			srcs = append(srcs, dirSrcs...)
			errs = append(errs, dirErrs...)
			continue
		}
		src, err := contract.LoadFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		srcs = append(srcs, src)
	}
	if len(errs) > 0 {
		for _, e := range errs {
			fail(e)
		}
		return nil, fmt.Errorf("loading failed with %d errors", len(errs))
	}
	if len(srcs) == 0 {
		return nil, fmt.Errorf("no %s sources given", contract.SourceExt)
	}
	return contract.DeployOrder(srcs)
}

// -------------- CHECK --------------

func cmdCheck(args []string) error {
	srcs, err := loadSources(args)
	if err != nil {
		return err
	}
	reg := contract.NewRegistry()
	for _, src := range srcs {
		c, err := checker.CheckContract(reg, src.Name, src.Prog)
		if err != nil {
			return fmt.Errorf("%s: %w", src.Path, err)
		}
		if err := reg.Register(c); err != nil {
			return err
		}
		fmt.Printf("%s: ok (%d functions, %d maps)\n", src.Name, len(c.Functions()), len(c.Maps()))
	}
	return nil
}

// -------------- RUN --------------

func cmdRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var opts options
	opts.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	paths, call := splitCall(fs.Args())
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	srcs, err := loadSources(paths)
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng, st, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	for _, src := range srcs {
		vals, err := eng.DeployProgram(ctx, opts.sender, src.Name, src.Prog)
		if err != nil {
			return fmt.Errorf("%s: %w", src.Path, err)
		}
		for _, v := range vals {
			fmt.Println(v)
		}
	}

	if call == nil {
		return nil
	}
	contractName, fn, ok := strings.Cut(call[0], ".")
	if !ok {
		return fmt.Errorf("-call: expected contract.function, got %q", call[0])
	}
	callArgs, err := parseArgs(call[1:])
	if err != nil {
		return err
	}
	v, err := eng.Call(ctx, opts.sender, contractName, fn, callArgs)
	if err != nil {
		return err
	}
	fmt.Println(v)
	return nil
}

// splitCall separates source paths from a trailing -call clause.
func splitCall(args []string) (paths, call []string) {
	for i, arg := range args {
		if arg == "-call" || arg == "--call" {
			if i+1 < len(args) {
				return args[:i], args[i+1:]
			}
			return args[:i], []string{""}
		}
	}
	return args, nil
}
