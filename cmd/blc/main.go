// blc runs binary lambda calculus programs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/vic/goblc/internal/config"
	"github.com/vic/goblc/pkg/blc"
	"github.com/vic/goblc/pkg/execution"
	"github.com/vic/goblc/pkg/image"
	"github.com/vic/goblc/pkg/reduce"
)

var log = commonlog.GetLogger("blc")

func main() {
	expr := flag.String("e", "", "Program as ASCII bits")
	bitsFile := flag.String("f", "", "Read the program from a file of ASCII bits")
	packedFile := flag.String("x", "", "Read a packed program; bytes after it are prepended to the input")
	imageFile := flag.String("image", "", "Read a program image")
	sourceFile := flag.String("s", "", "Read the program from a file in x: body syntax")
	noInput := flag.Bool("n", false, "Run the program without input")
	binaryArg := flag.String("b", "", "Apply the program to this BLC term (ASCII bits) instead of stdin")
	saveImage := flag.String("o", "", "Write the loaded program as an image and exit")
	configFile := flag.String("config", "", "TOML configuration file")
	mode := flag.String("mode", "", "Output mode: bytes, auto or term")
	strategy := flag.String("strategy", "", "Reduction strategy: graph or tree")
	maxSteps := flag.Uint64("max-steps", 0, "Beta reduction limit (0 keeps the configured limit)")
	showStats := flag.Bool("stats", false, "Print reduction statistics to stderr")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: blc [options]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a binary lambda calculus program on stdin and writes its output to stdout.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  echo hi | blc -e 0010                 # identity\n")
		fmt.Fprintf(os.Stderr, "  blc -x sort.Blc < numbers.txt          # packed program\n")
		fmt.Fprintf(os.Stderr, "  blc -s church.lam -n -mode auto        # render a non-list result\n")
		fmt.Fprintf(os.Stderr, "  blc -f prog.blc -o prog.blcimg         # save an image\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment: BLC_MAX_STEPS, BLC_MAX_NODES, BLC_STRATEGY, BLC_OUTPUT,\n")
		fmt.Fprintf(os.Stderr, "BLC_TIMEOUT, BLC_ALLOW_FREE, BLC_VERBOSITY, BLC_DEBUG, BLC_TRACE\n")
	}
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			fatalf("%v", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		fatalf("%v", err)
	}
	if *mode != "" {
		cfg.Run.Output = *mode
	}
	if *strategy != "" {
		cfg.Run.Strategy = *strategy
	}
	if *maxSteps > 0 {
		cfg.Limits.MaxSteps = *maxSteps
	}
	if *verbose && cfg.Log.Verbosity < 3 {
		cfg.Log.Verbosity = 3
	}
	var logPath *string
	if cfg.Log.File != "" {
		logPath = &cfg.Log.File
	}
	commonlog.Configure(cfg.Log.Verbosity, logPath)

	opts, err := cfg.ExecutionOptions()
	if err != nil {
		fatalf("%v", err)
	}

	prog, name, err := loadProgram(*expr, *bitsFile, *packedFile, *imageFile, *sourceFile)
	if err != nil {
		fatalf("%v", err)
	}
	log.Infof("loaded program %q: %d bits", name, len(prog.Bits()))

	if *saveImage != "" {
		if err := image.FromTerm(name, prog.Term, prog.Prefix).Save(*saveImage); err != nil {
			fatalf("%v", err)
		}
		return
	}

	var in execution.Input
	switch {
	case *binaryArg != "":
		bits, err := blc.ParseBits(*binaryArg)
		if err != nil {
			fatalf("argument: %v", err)
		}
		in = execution.Binary(bits)
	case *noInput:
		in = execution.Nothing()
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fatalf("Error reading stdin: %v", err)
		}
		in = execution.Bytes(data)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	out := execution.Stream(ctx, prog, in, execution.WithOptions(opts))
	code := write(out)
	elapsed := time.Since(start)

	if *showStats {
		printStats(out.Stats(), out.Count(), elapsed)
		for _, ev := range out.Trace() {
			fmt.Fprintf(os.Stderr, "  trace: step %d %-10v thunk %d stack %d arena %d\n", ev.Step, ev.Kind, ev.Thunk, ev.Stack, ev.Arena)
		}
	}
	out.Close()
	stop()
	os.Exit(code)
}

// write copies the output to stdout as it is produced, so unbounded
// output streams. It returns the exit code.
func write(out *execution.Output) int {
	w := newLineWriter(os.Stdout)
	defer w.Flush()
	for {
		b, err := out.Next()
		if err == io.EOF {
			return 0
		}
		if err != nil {
			w.Flush()
			var e *execution.Error
			if errors.As(err, &e) {
				fmt.Fprintf(os.Stderr, "\nError (%v): %v\n", e.Kind, e.Err)
				if e.Kind == execution.KindMalformedEncoding {
					return 2
				}
			} else {
				fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
			}
			return 1
		}
		if err := w.WriteByte(b); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			return 1
		}
	}
}

func loadProgram(expr, bitsFile, packedFile, imageFile, sourceFile string) (execution.Program, string, error) {
	set := 0
	for _, s := range []string{expr, bitsFile, packedFile, imageFile, sourceFile} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return execution.Program{}, "", errors.New("exactly one of -e, -f, -x, -image, -s is required")
	}

	switch {
	case expr != "":
		p, err := execution.ParseProgram(expr)
		return p, "expr", err
	case imageFile != "":
		img, err := image.Load(imageFile)
		if err != nil {
			return execution.Program{}, "", err
		}
		t, err := img.Term()
		if err != nil {
			return execution.Program{}, "", err
		}
		return execution.Program{Term: t, Prefix: img.Input}, img.Name, nil
	}

	var path string
	for _, s := range []string{bitsFile, packedFile, sourceFile} {
		if s != "" {
			path = s
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return execution.Program{}, "", fmt.Errorf("read program: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var p execution.Program
	switch path {
	case bitsFile:
		p, err = execution.ParseProgram(string(data))
	case packedFile:
		p, err = execution.ProgramFromPacked(data)
	default:
		p, err = execution.ProgramFromSource(string(data))
	}
	return p, name, err
}

func printStats(stats reduce.Stats, bytes int, elapsed time.Duration) {
	seconds := elapsed.Seconds()

	fmt.Fprintf(os.Stderr, "\nStats:\n")
	fmt.Fprintf(os.Stderr, "Time: %v\n", elapsed)
	fmt.Fprintf(os.Stderr, "Output: %d bytes\n", bytes)
	fmt.Fprintf(os.Stderr, "Total Reductions: %d", stats.TotalReductions)
	if seconds > 0 {
		fmt.Fprintf(os.Stderr, " (%.2f ops/sec)", float64(stats.TotalReductions)/seconds)
	}
	fmt.Fprintf(os.Stderr, "\n")

	fmt.Fprintf(os.Stderr, "\nBreakdown:\n")
	fmt.Fprintf(os.Stderr, "  Thunk Updates:  %10d\n", stats.Updates)
	fmt.Fprintf(os.Stderr, "  Shared Hits:    %10d\n", stats.SharedHits)
	fmt.Fprintf(os.Stderr, "  Probes:         %10d\n", stats.Probes)
	if stats.Thunks > 0 {
		fmt.Fprintf(os.Stderr, "  Thunks:         %10d\n", stats.Thunks)
		fmt.Fprintf(os.Stderr, "  Env Cells:      %10d\n", stats.EnvCells)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
