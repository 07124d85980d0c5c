// SPDX-License-Identifier: Apache-2.0
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	"sora/internal/config"
	"sora/internal/diag"
	"sora/internal/mir"
	"sora/internal/mirtext"
	"sora/internal/passes"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML pipeline configuration file")
		passList   = flag.String("passes", "", "comma-separated pass list (overrides the config)")
		debugList  = flag.String("debug", "", "comma-separated passes to trace, or \"all\"")
		noVerify   = flag.Bool("no-verify", false, "skip MIR verification around passes")
		noPrint    = flag.Bool("no-print", false, "do not print the resulting MIR")
		verbosity  = flag.Int("v", 0, "log verbosity")
	)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: sora-opt [flags] <file.mir>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	// Configure logging (0 = warnings only, nil = default backend)
	commonlog.Configure(*verbosity, nil)

	startTime := time.Now()
	path := flag.Arg(0)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	if *passList != "" {
		cfg.Passes = strings.Split(*passList, ",")
	}
	if *debugList != "" {
		cfg.Debug = strings.Split(*debugList, ",")
	}
	if *noVerify {
		cfg.Verify = false
	}

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read file: %v\n", err)
		os.Exit(1)
	}

	pkg, err := mirtext.ParsePackage(path, string(source))
	if err != nil {
		mirtext.ReportParseError(string(source), err)
		os.Exit(1)
	}

	reporter := diag.NewReporter()
	pipeline := passes.Default(reporter)
	if len(cfg.Passes) > 0 {
		pipeline.Passes = nil
		for _, name := range cfg.Passes {
			p, err := passes.ByName(strings.TrimSpace(name), reporter)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
				os.Exit(1)
			}
			pipeline.Passes = append(pipeline.Passes, p)
		}
	}
	pipeline.Verify = cfg.Verify
	pipeline.Debug = cfg.DebugSet()

	if _, err := pipeline.Run(pkg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	reporter.Flush(os.Stderr)

	if !*noPrint {
		fmt.Print(mir.Print(pkg))
	}

	duration := formatDuration(time.Since(startTime))
	if reporter.HasErrors() {
		color.Red("Failed after %s", duration)
		os.Exit(1)
	}
	color.Green("Optimized %s in %s", path, duration)
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
