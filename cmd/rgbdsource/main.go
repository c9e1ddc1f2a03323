// Command rgbdsource inspects, converts, and benchmarks RGB-D dataset
// containers.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"github.com/densevision/rgbdsource/frame"
	"github.com/densevision/rgbdsource/source"
	// register the file-backed and synthetic backends
	_ "github.com/densevision/rgbdsource/source/hardware/fake"
	"github.com/densevision/rgbdsource/source/rawdepth"
	"github.com/densevision/rgbdsource/source/scene"
)

var logger = golog.NewDevelopmentLogger("rgbdsource")

var app = &cli.App{
	Name:            "rgbdsource",
	Usage:           "work with RGB-D dataset containers",
	HideHelpCommand: true,
	Commands: []*cli.Command{
		{
			Name:      "info",
			Usage:     "describe a container file",
			ArgsUsage: "<file>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "depth-only",
					Usage: "the container carries no color payload",
				},
			},
			Action: infoAction,
		},
		{
			Name:      "convert",
			Usage:     "convert an ICL-NUIM scene directory into a container file",
			ArgsUsage: "<scene-dir> <out-file>",
			Action:    convertAction,
		},
		{
			Name:      "bench",
			Usage:     "replay a source as fast as allowed and report the achieved rate",
			ArgsUsage: "<path>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "type",
					Value: source.TypeRawContainer.String(),
					Usage: "source type: raw-container, scene, structured-light, depth-camera",
				},
				&cli.IntFlag{
					Name:  "fps",
					Usage: "target frame rate, 0 for unthrottled",
				},
				&cli.BoolFlag{
					Name:  "blocking",
					Usage: "sleep so every frame is visited at the target rate",
				},
				&cli.IntFlag{
					Name:  "frames",
					Value: 0,
					Usage: "stop after this many frames, 0 for the whole stream",
				},
				&cli.BoolFlag{
					Name:  "depth-only",
					Usage: "the container carries no color payload",
				},
			},
			Action: benchAction,
		},
	},
}

func main() {
	if err := app.Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}

func infoAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected a container file argument")
	}
	info, err := rawdepth.Stat(c.Args().First(), c.Bool("depth-only"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "resolution:  %s\n", info.Resolution)
	fmt.Fprintf(c.App.Writer, "record size: %d bytes\n", info.RecordSize)
	fmt.Fprintf(c.App.Writer, "frames:      %d\n", info.Frames)
	if info.Trailing != 0 {
		fmt.Fprintf(c.App.Writer, "trailing:    %d bytes past the last whole record\n", info.Trailing)
	}
	return nil
}

func convertAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("expected scene directory and output file arguments")
	}
	src, err := scene.NewSource(source.Config{DataPath: c.Args().Get(0)}, logger)
	if err != nil {
		return err
	}
	defer goutils.UncheckedErrorFunc(src.Close)

	w, err := rawdepth.NewWriter(c.Args().Get(1), src.Resolution(), true)
	if err != nil {
		return err
	}
	defer goutils.UncheckedErrorFunc(w.Close)

	depth := frame.NewDepthBuffer(src.Resolution())
	for {
		if err := src.NextFrame(nil, depth); err != nil {
			if errors.Is(err, source.ErrEndOfStream) {
				break
			}
			return err
		}
		if err := w.WriteFrame(depth, nil); err != nil {
			return err
		}
	}
	logger.Infow("conversion done", "frames", w.Frames())
	return nil
}

func benchAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected a dataset path argument")
	}
	typ, err := source.TypeFromString(c.String("type"))
	if err != nil {
		return err
	}
	src, err := source.Open(typ, source.Config{
		FPS:          c.Int("fps"),
		BlockingRead: c.Bool("blocking"),
		DataPath:     c.Args().First(),
		DepthOnly:    c.Bool("depth-only"),
	}, logger)
	if err != nil {
		return err
	}
	defer goutils.UncheckedErrorFunc(src.Close)

	depth := frame.NewDepthBuffer(src.Resolution())
	limit := c.Int("frames")
	start := time.Now()
	read := 0
	for limit == 0 || read < limit {
		if err := src.NextFrame(nil, depth); err != nil {
			if errors.Is(err, source.ErrEndOfStream) {
				break
			}
			return err
		}
		read++
	}
	elapsed := time.Since(start)
	fmt.Fprintf(c.App.Writer, "read %d frames in %v (%.1f fps)\n",
		read, elapsed.Round(time.Millisecond), float64(read)/elapsed.Seconds())
	return nil
}
