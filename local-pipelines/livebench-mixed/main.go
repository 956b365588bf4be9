package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/alexflint/go-arg"
	"github.com/dustin/go-humanize"
	"github.com/kiteco/livebench/kite-golib/diskcache"
	"github.com/kiteco/livebench/kite-golib/envutil"
	"github.com/kiteco/livebench/kite-golib/fileutil"
	"github.com/kiteco/livebench/kite-golib/hfhub"
	"github.com/kiteco/livebench/kite-golib/kitelog"
	"golang.org/x/time/rate"
)

const (
	outputFile = "livebench_mixed.jsonl"
	// requests per second sent to the dataset viewer
	defaultRate = 5
)

func maybeQuit(err error) {
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

// projectRoot is the nearest directory at or above the working directory holding a go.mod,
// or the working directory itself.
func projectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if root, ok := fileutil.FindUp(wd, "go.mod"); ok {
		return root, nil
	}
	return wd, nil
}

func defaultOutput(root string) string {
	return filepath.Join(root, "data", outputFile)
}

func main() {
	args := struct {
		Samples  int      `arg:"-n" help:"records kept per topic after shuffling, --samples=-1 keeps the whole test split"`
		Out      string   `help:"output path or s3:// URI (default <root>/data/livebench_mixed.jsonl)"`
		Root     string   `help:"project root (default: nearest directory with a go.mod)"`
		Catalog  string   `help:"JSON file listing {source, topic} entries to use instead of the built-in catalog"`
		CacheDir string   `arg:"--cache-dir" help:"directory for caching dataset viewer responses"`
		Endpoint string   `help:"dataset viewer endpoint"`
		Rate     float64  `help:"maximum dataset viewer requests per second, 0 for no limit"`
		Only     []string `help:"only write these record keys, e.g. --only 0-math/3 (see -v for the keys)"`
		Verbose  bool     `arg:"-v"`
	}{
		Samples:  DefaultSamplesPerTopic,
		Endpoint: envutil.GetenvDefault("HF_ENDPOINT", hfhub.DefaultEndpoint),
		Rate:     defaultRate,
	}
	arg.MustParse(&args)

	logger := kitelog.New(os.Stderr, "livebench-mixed")

	catalog := DefaultCatalog
	if args.Catalog != "" {
		var err error
		catalog, err = LoadCatalog(args.Catalog)
		maybeQuit(err)
	}

	out := args.Out
	if out == "" {
		root := args.Root
		if root == "" {
			var err error
			root, err = projectRoot()
			maybeQuit(err)
		}
		out = defaultOutput(root)
	}

	hub := hfhub.NewClient()
	hub.Endpoint = args.Endpoint
	if args.Verbose {
		hub.Logger = logger
	}
	if args.Rate > 0 {
		hub.Limiter = rate.NewLimiter(rate.Limit(args.Rate), 1)
	}
	if args.CacheDir != "" {
		cache, err := diskcache.Open(args.CacheDir, diskcache.Options{})
		maybeQuit(err)
		hub.Cache = cache
	}

	res, err := run(context.Background(), options{
		Catalog: catalog,
		Samples: args.Samples,
		Out:     out,
		Loader:  hubLoader{hub: hub},
		Logger:  logger,
		Only:    args.Only,
		Verbose: args.Verbose,
	})
	maybeQuit(err)

	logger.Printf("total combined examples: %d", res.Total)
	logger.Printf("saved JSONL to: %s (%s)", res.Path, humanize.Bytes(uint64(res.Bytes)))
	logger.Durations.Flush(logger)
}
