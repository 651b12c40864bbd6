package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/sonic/internal/engine"
	"github.com/hailam/sonic/internal/storage"
	"github.com/hailam/sonic/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	hashMB     = flag.Int("hash", 0, "transposition table size in MB (0 keeps the saved setting)")
	bookPath   = flag.String("book", "", "opening book file")
	dataDir    = flag.String("datadir", "", "directory for saved options (default: platform data dir)")
	noStore    = flag.Bool("nostore", false, "do not load or save options")
	logLevel   = flag.String("loglevel", "warn", "log level: debug, info, warn, error")
)

func main() {
	flag.Parse()

	// stdout belongs to the protocol.
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("bad -loglevel")
	}
	zerolog.SetGlobalLevel(level)

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	if err := run(); err != nil {
		log.Error().Err(err).Msg("exiting")
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

func run() error {
	fmt.Printf("%s Chess Engine, written by %s\n", uci.Name, uci.Author)

	eng := engine.NewEngine(engine.DefaultHashMB)
	protocol := uci.New(eng, os.Stdin, os.Stdout)

	opts := storage.DefaultOptions()
	if !*noStore {
		store, err := storage.Open(*dataDir)
		if err != nil {
			// Saved options are a convenience; play on without them.
			log.Warn().Err(err).Msg("options storage unavailable")
		} else {
			defer store.Close()
			opts = restoreOptions(store)
			protocol.SetStorage(store, opts)
		}
	}

	if *hashMB > 0 {
		opts.Hash = *hashMB
	}
	if *bookPath != "" {
		opts.Book = *bookPath
	}
	if err := opts.Apply(eng); err != nil {
		log.Warn().Err(err).Msg("ignoring saved parameters")
	}
	if opts.Book != "" {
		if err := protocol.OpenBook(opts.Book); err != nil {
			log.Warn().Err(err).Str("path", opts.Book).Msg("book not loaded")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return protocol.Run(ctx)
}

// restoreOptions loads the saved options, falling back to the defaults, and
// records the first launch. Storage errors are logged, never fatal.
func restoreOptions(store *storage.Storage) *storage.Options {
	opts := storage.DefaultOptions()
	if saved, err := store.LoadOptions(); err != nil {
		log.Warn().Err(err).Msg("could not load saved options")
	} else {
		opts = saved
	}

	first, err := store.IsFirstLaunch()
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("could not read first-launch marker")
	case first:
		log.Info().Msg("first launch, using default options")
		if err := store.MarkFirstLaunchComplete(); err != nil {
			log.Warn().Err(err).Msg("could not record first launch")
		}
	}
	return opts
}
