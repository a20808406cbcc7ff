package main

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/kivra-dev/pocketdmg/backend"
	"github.com/kivra-dev/pocketdmg/backend/sdl2"
	"github.com/kivra-dev/pocketdmg/backend/terminal"
	"github.com/kivra-dev/pocketdmg/session"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "pocketdmg"
	app.Description = "A Game Boy (DMG) emulator core"
	app.Usage = "pocketdmg [options] <ROM file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "boot-rom",
			Usage: "Path to a boot ROM (skips the post-boot register preset)",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Display backend: terminal, sdl2, or headless",
			Value: "terminal",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (0 = unlimited)",
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Pixel scale factor for the sdl2 backend",
			Value: 3,
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("pocketdmg exited with error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	sess, err := session.LoadFile(romPath, c.String("boot-rom"))
	if err != nil {
		return err
	}
	defer sess.Close()

	var b backend.Backend
	switch c.String("backend") {
	case "headless":
		b = backend.NewHeadless(uint64(c.Int("frames")))
	case "sdl2":
		b = sdl2.New()
	case "terminal":
		b = terminal.New()
	default:
		return errors.New("unknown backend: " + c.String("backend"))
	}

	cfg := backend.Config{Title: "pocketdmg", Scale: c.Int("scale")}
	if err := b.Init(cfg); err != nil {
		return err
	}
	defer b.Cleanup()

	return runLoop(sess, b)
}

// runLoop drives the session/backend pair at roughly the Game Boy's
// native 59.7Hz frame rate until the backend requests a quit.
func runLoop(sess *session.Session, b backend.Backend) error {
	frameInterval := time.Second / 60

	for !b.ShouldQuit() {
		start := time.Now()

		sess.SetKeys(b.PollInput())
		frame := sess.RunUntilFrame()
		if err := b.RenderFrame(frame); err != nil {
			return err
		}

		if elapsed := time.Since(start); elapsed < frameInterval {
			time.Sleep(frameInterval - elapsed)
		}
	}

	return nil
}
