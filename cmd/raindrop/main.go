package main

import (
	"flag"
	"fmt"
	"image"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/droplens/raindrop"
	"github.com/droplens/raindrop/utils"
	"golang.org/x/term"
)

const HelpBanner = `
┬─┐┌─┐┬┌┐┌┌┬┐┬─┐┌─┐┌─┐
├┬┘├─┤││││ ││├┬┘│ │├─┘
┴└─┴ ┴┴┘└┘─┴┘┴└─└─┘┴

Raindrop synthesis library for wet-lens data augmentation.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// maxWorkers sets the maximum number of concurrently processed images.
const maxWorkers = 20

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", pipeName, "Source image or directory")
	destination = flag.String("out", pipeName, "Destination image or directory")
	labelDir    = flag.String("label", "", "Destination directory for label masks (enables label output)")
	confFile    = flag.String("conf", "", "TOML configuration file")
	seed        = flag.Int64("seed", 0, "Random seed, 0 derives one from the clock")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of images to process concurrently")
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "raindrop",
})

// validExtensions are the supported input image formats.
var validExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := raindrop.DefaultConfig()
	if *confFile != "" {
		var err error
		cfg, err = raindrop.LoadConfig(*confFile)
		if err != nil {
			logger.Fatal("invalid configuration", "err", err)
		}
	}
	if *labelDir != "" {
		cfg.ReturnLabel = true
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	if *source == pipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			logger.Fatal("`-` should be used with a pipe for stdin")
		}
		processPipe(cfg)
		return
	}

	fs, err := os.Stat(*source)
	if err != nil {
		logger.Fatal("failed to load the source path", "err", err)
	}

	now := time.Now()
	switch {
	case fs.Mode().IsDir():
		processDir(cfg)
	default:
		if err := processFile(cfg, *source, *destination, rand.New(rand.NewSource(*seed))); err != nil {
			logger.Fatal("failed to process the image", "file", *source, "err", err)
		}
	}
	logger.Info("done", "elapsed", utils.FormatTime(time.Since(now)))
}

// processDir walks the source directory and pushes every supported image
// through a bounded worker pool. A failing image is reported and skipped,
// the remaining ones are still processed.
func processDir(cfg *raindrop.Config) {
	if _, err := os.Stat(*destination); err != nil {
		if err := os.MkdirAll(*destination, 0755); err != nil {
			logger.Fatal("unable to create the output directory", "err", err)
		}
	}
	if *labelDir != "" {
		if err := os.MkdirAll(*labelDir, 0755); err != nil {
			logger.Fatal("unable to create the label directory", "err", err)
		}
	}

	entries, err := os.ReadDir(*source)
	if err != nil {
		logger.Fatal("unable to read the source directory", "err", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, ve := range validExtensions {
			if ext == ve {
				paths = append(paths, entry.Name())
				break
			}
		}
	}

	conc := *workers
	if conc <= 0 || conc > maxWorkers {
		conc = maxWorkers
	}

	var (
		wg     sync.WaitGroup
		sem    = make(chan struct{}, conc)
		failed int
		mu     sync.Mutex
	)
	for i, name := range paths {
		wg.Add(1)
		sem <- struct{}{}

		// One generator per image, seeded per file, keeps parallel batch
		// processing deterministic for a fixed base seed.
		rng := rand.New(rand.NewSource(*seed + int64(i)))

		go func(name string, rng *rand.Rand) {
			defer wg.Done()
			defer func() { <-sem }()

			in := filepath.Join(*source, name)
			out := filepath.Join(*destination, name)
			if err := processFile(cfg, in, out, rng); err != nil {
				logger.Error("skipping image", "file", name, "err", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			logger.Info("processed", "file", name)
		}(name, rng)
	}
	wg.Wait()

	if failed > 0 {
		logger.Warn("some images could not be processed", "failed", failed, "total", len(paths))
	}
}

// processFile runs the droplet engine over a single image file and writes
// the composited result, plus the label mask when requested.
func processFile(cfg *raindrop.Config, in, out string, rng *rand.Rand) error {
	ctype, err := utils.DetectFileContentType(in)
	if err != nil {
		return err
	}
	if !strings.Contains(ctype, "image") {
		return fmt.Errorf("%s is not an image file", in)
	}

	src, err := raindrop.DecodeImage(in)
	if err != nil {
		return err
	}

	gen, err := raindrop.NewGenerator(cfg, rng)
	if err != nil {
		return err
	}
	gen.Log = logger

	res, label, err := gen.GenerateDrops(src)
	if err != nil {
		return err
	}

	output, err := os.Create(out)
	if err != nil {
		return err
	}
	defer output.Close()

	if err := raindrop.EncodeImage(output, res); err != nil {
		return err
	}

	if cfg.ReturnLabel && *labelDir != "" {
		name := strings.TrimSuffix(filepath.Base(out), filepath.Ext(out)) + ".png"
		lf, err := os.Create(filepath.Join(*labelDir, name))
		if err != nil {
			return err
		}
		defer lf.Close()
		return raindrop.EncodeLabel(lf, label)
	}
	return nil
}

// processPipe reads a single image from stdin and writes the composited
// result to stdout as JPEG.
func processPipe(cfg *raindrop.Config) {
	src, _, err := image.Decode(os.Stdin)
	if err != nil {
		logger.Fatal("could not decode the piped image", "err", err)
	}

	gen, err := raindrop.NewGenerator(cfg, rand.New(rand.NewSource(*seed)))
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	gen.Log = logger

	res, _, err := gen.GenerateDrops(src)
	if err != nil {
		logger.Fatal("failed to process the image", "err", err)
	}
	if err := raindrop.EncodeImage(os.Stdout, res); err != nil {
		logger.Fatal("failed to encode the image", "err", err)
	}
}
