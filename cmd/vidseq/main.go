// Package main provides the CLI entry point for vidseq.
package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/vidseq/pkg/adapters/av1container"
	"github.com/user/vidseq/pkg/adapters/av1source"
	"github.com/user/vidseq/pkg/adapters/ggcodec"
	"github.com/user/vidseq/pkg/adapters/logger"
	"github.com/user/vidseq/pkg/adapters/osfilesystem"
	"github.com/user/vidseq/pkg/config"
	"github.com/user/vidseq/pkg/frame"
	"github.com/user/vidseq/pkg/ports"
	"github.com/user/vidseq/pkg/sequence"
)

var version = "dev"

// batchSize is the number of frames moved through memory at a time.
const batchSize = 8

func main() {
	app := &cli.App{
		Name:    "vidseq",
		Usage:   "Convert between videos and numbered image sequences.",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file path.",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error).",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"Q"},
				Usage:   "Suppress all log output.",
			},
		},
		Commands: []*cli.Command{
			extractCommand(),
			assembleCommand(),
			probeCommand(),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "vidseq: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Defaults(), nil
}

func newLogger(c *cli.Context, cfg config.Config) ports.Logger {
	if c.Bool("quiet") {
		return logger.NewNoop()
	}
	level := cfg.LogLevel
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	return logger.NewConsole(ports.ParseLogLevel(level))
}

func resizeTransform(width, height int) sequence.Transform {
	if width > 0 && height > 0 {
		return sequence.Resize(width, height)
	}
	return nil
}

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "Extract a video's frames into a numbered image directory.",
		ArgsUsage: "<input.mp4> <output-dir>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "ext", Aliases: []string{"e"}, Usage: "Image format extension (jpg or png)."},
			&cli.IntFlag{Name: "quality", Aliases: []string{"q"}, Usage: "JPEG quality (1-100)."},
			&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Usage: "Resize frames to this width."},
			&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Usage: "Resize frames to this height."},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("usage: vidseq extract <input.mp4> <output-dir>", 1)
			}
			input, outDir := c.Args().Get(0), c.Args().Get(1)

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if c.IsSet("ext") {
				cfg.Extension = c.String("ext")
			}
			if c.IsSet("quality") {
				cfg.Quality = c.Int("quality")
			}
			if c.IsSet("width") {
				cfg.Width = c.Int("width")
			}
			if c.IsSet("height") {
				cfg.Height = c.Int("height")
			}
			log := newLogger(c, cfg)

			source, err := av1source.NewEngine().Open(input)
			if err != nil {
				return fmt.Errorf("open %s: %w", input, err)
			}
			reader := sequence.NewVideoReader(source, resizeTransform(cfg.Width, cfg.Height))
			defer reader.Close()

			writer, err := sequence.NewImageWriter(outDir, cfg.Extension, osfilesystem.New(), ggcodec.NewWithQuality(cfg.Quality))
			if err != nil {
				return fmt.Errorf("prepare %s: %w", outDir, err)
			}

			log.Info(l10n.F("Extracting %s to %s...", input, outDir))
			if err := copyFrames(c.Context, reader, writer.Write); err != nil {
				return err
			}
			if err := writer.Close(); err != nil {
				return err
			}

			log.Info(l10n.F("Extracted %d frames to %s", reader.Len(), outDir))
			return nil
		},
	}
}

func assembleCommand() *cli.Command {
	return &cli.Command{
		Name:      "assemble",
		Usage:     "Assemble a numbered image directory into a video.",
		ArgsUsage: "<input-dir> <output.mp4>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "fps", Aliases: []string{"r"}, Usage: "Frame rate (e.g. 30, 29.97, 30000/1001)."},
			&cli.IntFlag{Name: "bit-rate", Aliases: []string{"b"}, Usage: "Target bit rate in bits per second."},
			&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Usage: "Resize frames to this width."},
			&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Usage: "Resize frames to this height."},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("usage: vidseq assemble <input-dir> <output.mp4>", 1)
			}
			inDir, output := c.Args().Get(0), c.Args().Get(1)

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if c.IsSet("fps") {
				cfg.FPS = c.String("fps")
			}
			if c.IsSet("bit-rate") {
				cfg.BitRate = c.Int("bit-rate")
			}
			if c.IsSet("width") {
				cfg.Width = c.Int("width")
			}
			if c.IsSet("height") {
				cfg.Height = c.Int("height")
			}
			log := newLogger(c, cfg)

			reader, err := sequence.NewImageReader(inDir, osfilesystem.New(), ggcodec.New(), resizeTransform(cfg.Width, cfg.Height))
			if err != nil {
				return fmt.Errorf("open %s: %w", inDir, err)
			}
			defer reader.Close()

			rate := cfg.Rate()
			writer, err := sequence.NewVideoWriter(av1container.NewEngine(), output, rate, sequence.VideoWriterOptions{
				BitRate: cfg.BitRate,
				Logger:  log.WithComponent("writer"),
			})
			if err != nil {
				return err
			}

			norm, err := rate.Resolve()
			if err != nil {
				return err
			}
			log.Info(l10n.F("Assembling %d frames from %s at %s fps...", reader.Len(), inDir, norm.String()))

			if err := copyFrames(c.Context, reader, writer.Write); err != nil {
				writer.Close()
				return err
			}
			if err := writer.Close(); err != nil {
				return err
			}

			log.Info(l10n.F("Output saved to %s", output))
			return nil
		},
	}
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     "Show a video's frame count and normalized frame rate.",
		ArgsUsage: "<input.mp4>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: vidseq probe <input.mp4>", 1)
			}
			input := c.Args().Get(0)

			source, err := av1source.NewEngine().Open(input)
			if err != nil {
				return fmt.Errorf("open %s: %w", input, err)
			}
			reader := sequence.NewVideoReader(source, nil)
			defer reader.Close()

			fmt.Printf("frames: %d\n", reader.Len())

			norm, err := reader.NormalizedRate()
			if err != nil {
				return fmt.Errorf("frame rate: %w", err)
			}
			fmt.Printf("frame rate: %s (%.3f fps)\n", norm, norm.Float64())
			return nil
		},
	}
}

// copyFrames streams every frame of reader into write, batchSize frames
// at a time, stopping early if ctx is cancelled.
func copyFrames(ctx context.Context, reader sequence.Reader, write func(frame.Batch) error) error {
	total := reader.Len()
	for start := 0; start < total; start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + batchSize
		if end > total {
			end = total
		}
		imgs := make([]image.Image, 0, end-start)
		for i := start; i < end; i++ {
			img, err := reader.Get(i)
			if err != nil {
				return err
			}
			imgs = append(imgs, img)
		}
		batch, err := frame.FromImages(imgs)
		if err != nil {
			return err
		}
		if err := write(batch); err != nil {
			return err
		}
	}
	return nil
}
