package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/FromCaio/fat16-fs-simulator/drivers/fat16"
)

// main wires up a thin, non-interactive command-line tool: one FAT16
// operation per invocation, each opening the partition file, loading the
// FAT as needed, performing the operation, and exiting. There is no
// tokenizer, no prompt loop, no REPL state held across invocations.
func main() {
	app := &cli.App{
		Name:  "fat16fmt",
		Usage: "Inspect and mutate a simulated FAT16 partition file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "image",
				Usage: "path to the partition backing file",
				Value: "fat.part",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "format",
				Usage:  "Create or wipe the partition",
				Action: runFormat,
			},
			{
				Name:      "mkdir",
				Usage:     "Create a directory",
				ArgsUsage: "PATH",
				Action:    withPath(func(fs *fat16.FS, path string) error { return fs.Mkdir(path) }),
			},
			{
				Name:      "create",
				Usage:     "Create an empty file",
				ArgsUsage: "PATH",
				Action:    withPath(func(fs *fat16.FS, path string) error { return fs.Create(path) }),
			},
			{
				Name:      "unlink",
				Usage:     "Remove a file or empty directory",
				ArgsUsage: "PATH",
				Action:    withPath(func(fs *fat16.FS, path string) error { return fs.Unlink(path) }),
			},
			{
				Name:      "read",
				Usage:     "Print a file's contents to stdout",
				ArgsUsage: "PATH",
				Action:    withPath(func(fs *fat16.FS, path string) error { return fs.Read(path, os.Stdout) }),
			},
			{
				Name:      "ls",
				Usage:     "List a directory or describe a file",
				ArgsUsage: "PATH",
				Action:    withPath(func(fs *fat16.FS, path string) error { return fs.Ls(path, os.Stdout) }),
			},
			{
				Name:      "write",
				Usage:     "Replace a file's contents with TEXT",
				ArgsUsage: "PATH TEXT",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("write requires PATH and TEXT", 1)
					}
					return withLoadedFS(c, func(fs *fat16.FS) error {
						return fs.Write(c.Args().Get(0), []byte(c.Args().Get(1)))
					})
				},
			},
			{
				Name:      "append",
				Usage:     "Append TEXT to a file's contents",
				ArgsUsage: "PATH TEXT",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("append requires PATH and TEXT", 1)
					}
					return withLoadedFS(c, func(fs *fat16.FS) error {
						return fs.Append(c.Args().Get(0), []byte(c.Args().Get(1)))
					})
				},
			},
			{
				Name:   "statfs",
				Usage:  "Report cluster usage accounting",
				Action: runStatfs,
			},
			{
				Name:   "fsck",
				Usage:  "Check cross-structure invariants",
				Action: runFsck,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fat16fmt: %s", err)
	}
}

func runFormat(c *cli.Context) error {
	f, err := createImage(c.String("image"))
	if err != nil {
		return err
	}
	defer f.Close()

	fs := fat16.New(f)
	return fs.Format()
}

func withPath(op func(fs *fat16.FS, path string) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("exactly one PATH argument is required", 1)
		}
		return withLoadedFS(c, func(fs *fat16.FS) error {
			return op(fs, c.Args().Get(0))
		})
	}
}

func runStatfs(c *cli.Context) error {
	return withLoadedFS(c, func(fs *fat16.FS) error {
		info, err := fs.Statfs()
		if err != nil {
			return err
		}
		log.Printf("total=%d used=%d free=%d", info.TotalClusters, info.UsedClusters, info.FreeClusters)
		return nil
	})
}

func runFsck(c *cli.Context) error {
	return withLoadedFS(c, func(fs *fat16.FS) error {
		report, err := fat16.CheckInvariants(fs)
		if err != nil {
			return err
		}
		log.Printf("ok: %d clusters reachable, %d free", report.ReachableCount, report.FreeClusters)
		return nil
	})
}

// withLoadedFS opens the image, loads the FAT, runs `op`, and closes the
// image file regardless of outcome.
func withLoadedFS(c *cli.Context, op func(fs *fat16.FS) error) error {
	f, err := openImage(c.String("image"))
	if err != nil {
		return err
	}
	defer f.Close()

	fs := fat16.New(f)
	if err := fs.Load(); err != nil {
		return err
	}
	return op(fs)
}

func openImage(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR, 0o644)
}

// createImage opens the backing file for format, creating it if it does
// not yet exist. Only format may create the file; every other command
// requires it to already be there.
func createImage(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
}
