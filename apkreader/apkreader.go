package main

//
// Rudimentary program for examining Android APK files. An APK file
// is basically a ZIP file that contains an Android manifest and a series
// of DEX files, strings, resources, bitmaps, and assorted other items.
// This specific reader looks only at the DEX files, not the other
// bits and pieces. A bare classes.dex works too.
//

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/thanm/go-dex-query/apkdump"
	"github.com/thanm/go-dex-query/apkread"
	"github.com/thanm/go-dex-query/dexconfig"
	"github.com/thanm/go-dex-query/dexread"
)

var verbflag = flag.Int("v", 0, "Verbose trace output level")
var dumpflag = flag.String("dump", "", "What to dump: summary, methods, strings or classes")
var walkflag = flag.Bool("walk", false, "Walk classes and methods with the DEX visitor")
var configflag = flag.String("config", "", "TOML config file")
var strictflag = flag.Bool("strict", false, "Validate all offsets and indices before decoding")
var workersflag = flag.Int("workers", 0, "Max DEX files decoded at once (0 = GOMAXPROCS)")

func usage(msg string) {
	if len(msg) > 0 {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	}
	fmt.Fprintf(os.Stderr, "usage: apkreader [flags] <APK or DEX file>\n")
	flag.PrintDefaults()
	os.Exit(2)
}

// settings merges the config file with whatever flags were set explicitly.
func settings() (*dexconfig.Config, error) {
	cfg := dexconfig.Default()
	if *configflag != "" {
		var err error
		if cfg, err = dexconfig.LoadConfig(*configflag); err != nil {
			return nil, err
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":
			cfg.Verbose = *verbflag
		case "dump":
			cfg.Dump = *dumpflag
		case "strict":
			cfg.Strict = *strictflag
		case "workers":
			cfg.Workers = *workersflag
		}
	})
	return cfg, nil
}

func newLogger(verbose int) *zap.Logger {
	var logger *zap.Logger
	var err error
	if verbose > 0 {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger.Named("apkreader")
}

//
// apkreader main function. Nothing to see here.
//
func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		usage("please supply an input APK or DEX file")
	}
	cfg, err := settings()
	if err != nil {
		usage(err.Error())
	}
	kind, err := apkdump.ParseDumpKind(cfg.Dump)
	if err != nil {
		usage(err.Error())
	}

	logger := newLogger(cfg.Verbose)
	defer logger.Sync()
	logger.Debug("in main", zap.String("input", flag.Arg(0)), zap.Stringer("dump", kind))

	dexOpts := []dexread.Option{
		dexread.WithStrict(cfg.Strict),
		dexread.WithStringCache(cfg.CacheStrings),
	}
	if cfg.Verbose > 1 {
		dexOpts = append(dexOpts, dexread.WithLogger(logger.Named("dexread")))
	}
	archive, err := apkread.DecodeAPK(flag.Arg(0),
		apkread.WithWorkers(cfg.Workers),
		apkread.WithDexOptions(dexOpts...),
		apkread.WithLogger(logger))
	if err != nil {
		logger.Error("decode failed", zap.Error(err))
		if archive == nil || len(archive.Dexes) == 0 {
			os.Exit(1)
		}
	}

	if *walkflag {
		d := &apkdump.DexApkDumper{W: os.Stdout, Vlevel: cfg.Verbose, Log: logger.Sugar()}
		err = apkdump.Walk(archive, d)
	} else {
		err = apkdump.Dump(os.Stdout, kind, archive)
	}
	if err != nil {
		logger.Error("dump failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Debug("leaving main",
		zap.Int("dex_files", len(archive.Dexes)),
		zap.Int64("methods", archive.NumMethods))
}
