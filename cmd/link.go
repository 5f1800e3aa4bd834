package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/blight/internal/tool"
	"github.com/rnwolfe/blight/internal/ui"
)

func newLinkCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "link DIR",
		Short: "Create the blight-<tool> wrapper links in DIR",
		Long: `Create blight-cc, blight-c++ and the other wrapper names in DIR as symlinks
to this executable. DIR should be on the PATH of the build.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			self, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locating blight: %w", err)
			}
			if resolved, err := filepath.EvalSymlinks(self); err == nil {
				self = resolved
			}
			return linkWrappers(self, args[0], force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Replace existing files")
	return cmd
}

func linkWrappers(target, dir string, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	for _, k := range tool.AllKinds {
		link := filepath.Join(dir, k.Wrapper())
		err := os.Symlink(target, link)
		if errors.Is(err, fs.ErrExist) && force {
			if err = os.Remove(link); err == nil {
				err = os.Symlink(target, link)
			}
		}
		if err != nil {
			return fmt.Errorf("linking %s: %w", k.Wrapper(), err)
		}
		ui.Ok(link)
	}
	ui.Inf("put " + dir + " on the PATH the build sees")
	return nil
}
