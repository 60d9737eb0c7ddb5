package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	enshrine "github.com/pturley0/enshrine-commits"
	"github.com/pturley0/enshrine-commits/cmd"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootCmd struct {
	*cobra.Command

	configPath string
	strict     bool
	force      bool
	branch     string
	logLevel   string
}

func newRootCmd() *rootCmd {
	c := &rootCmd{
		Command: &cobra.Command{
			Use:   "enshrine-commits <author> <original-repo> <ref> <shrine-path>",
			Short: "extract one author's commits into a shrine repository",
			Long: `enshrine-commits finds the minimal contiguous segment of commits spanning
every commit by an author reachable from a ref, copies that segment (plus one
context commit) into a new repository at shrine-path, and squashes each run of
interleaving commits by other authors into a single joiner commit.

The author is matched exactly, as "Name" or "Name <email>". The shrine path
is recreated from scratch; pass --force to overwrite an existing one.`,
			Args:          cobra.ExactArgs(4),
			SilenceUsage:  true,
			SilenceErrors: true,
		},
	}

	c.Flags().StringVarP(&c.configPath, "config", "c", c.configPath, "path to the configuration")
	cmd.OrPanic(c.MarkFlagFilename("config"))
	c.Flags().BoolVar(&c.strict, "strict", c.strict, "fail instead of falling back to the repository root when the first author commit has no grandparent")
	c.Flags().BoolVarP(&c.force, "force", "f", c.force, "overwrite an existing shrine path")
	c.Flags().StringVar(&c.branch, "branch", c.branch, "branch name for the shrine (default master)")
	c.Flags().StringVar(&c.logLevel, "log-level", c.logLevel, "log level: debug, info, warn, error")

	c.RunE = c.run

	return c
}

func (c *rootCmd) run(_ *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	author, originalPath, ref, shrinePath := args[0], args[1], args[2], args[3]

	config := &enshrine.Config{}
	if c.configPath != "" {
		data, err := os.ReadFile(c.configPath)
		if err != nil {
			return printErr(err)
		}
		config, err = enshrine.ParseConfigYAML(data)
		if err != nil {
			return printErr(fmt.Errorf("cannot parse config %s: %w", c.configPath, err))
		}
	}

	if c.logLevel == "" {
		c.logLevel = config.LogLevel
	}
	if err := cmd.SetupSlog(c.logLevel); err != nil {
		return printErr(err)
	}

	if ref == "" {
		ref = config.DefaultRef
	}

	boundary, err := enshrine.ParseBoundaryPolicy(config.Boundary)
	if err != nil {
		return printErr(err)
	}
	if c.strict {
		boundary = enshrine.BoundaryStrict
	}

	if !c.force {
		if entries, err := os.ReadDir(shrinePath); err == nil && len(entries) > 0 {
			return printErr(fmt.Errorf("shrine path %s is not empty, pass --force to overwrite", shrinePath))
		}
	}

	result, err := enshrine.Enshrine(ctx, originalPath, shrinePath, &enshrine.Options{
		Author:   author,
		Ref:      ref,
		Boundary: boundary,
		Branch:   c.branch,
	})
	if err != nil {
		return printErr(err)
	}

	size, err := cmd.DirSize(shrinePath)
	if err != nil {
		return printErr(fmt.Errorf("cannot measure shrine size: %w", err))
	}

	fmt.Printf("shrine at %s: %d commits extracted, %d kept, %s on disk, head %s\n",
		shrinePath, result.Extracted, result.Picks, humanize.IBytes(size), result.Head)

	return nil
}

// printErr reports the diagnostic on stderr and passes the error through so
// the process exits 1.
func printErr(err error) error {
	fmt.Fprintln(os.Stderr, "enshrine-commits:", err)

	return err
}
