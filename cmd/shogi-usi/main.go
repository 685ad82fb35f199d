// Command shogi-usi is a USI protocol shogi engine. It speaks the protocol
// over stdin/stdout; everything else (logging, profiling) goes to stderr or
// a file so it never corrupts the protocol stream.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/hailam/shogi-usi/internal/search"
	"github.com/hailam/shogi-usi/internal/storage"
	"github.com/hailam/shogi-usi/internal/telemetry"
	"github.com/hailam/shogi-usi/internal/tuning"
	"github.com/hailam/shogi-usi/internal/usi"
)

const defaultEvalFile = "nn.bin.gz"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	flag.Parse()
	log := telemetry.Logger()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Error(err, "create cpu profile", "path", profilePath)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Error(err, "start cpu profile")
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
		log.Info("cpu profiling enabled", "path", profilePath)
	}

	cache, err := storage.NewCache(log)
	if err != nil {
		log.Error(err, "weight/tuning cache unavailable, continuing without it")
		cache = nil
	}

	tp := tuning.DefaultParams()
	eng := search.NewEngine(search.DefaultThreads(), 64, tp)

	if path := autoLocateEvalFile(); path != "" {
		if err := eng.LoadEvaluator(path); err != nil {
			log.Error(err, "load evaluator failed; no evaluator is set until EvalFile is set", "path", path)
		} else {
			log.Info("evaluator loaded", "path", path)
		}
	} else {
		log.Info("no evaluator found on startup; none is set until EvalFile is set")
	}

	controller := usi.NewController(eng, tp, cache, os.Stdout)
	if err := controller.Run(os.Stdin); err != nil {
		log.Error(err, "session terminated")
		os.Exit(1)
	}
}

// autoLocateEvalFile looks for a default NNUE weights file in the working
// directory and then under ~/.shogi-usi, so a plain `shogi-usi` invocation
// with no setoption still gets NNUE evaluation if the weights are sitting in
// either place.
func autoLocateEvalFile() string {
	candidates := []string{
		filepath.Join(".", defaultEvalFile),
		filepath.Join(homeDir(), ".shogi-usi", defaultEvalFile),
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
