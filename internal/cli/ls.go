package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmgilman/go/pa"
)

func (a *App) lsCommand() *cobra.Command {
	var recursive, all, noBackup bool
	cmd := &cobra.Command{
		Use:   "ls [DIR]",
		Short: "List directory entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			opts := when(!all, pa.WithNoDot())
			opts = append(opts, when(noBackup, pa.WithNoBackup())...)

			var names []string
			var err error
			if recursive {
				names, err = a.fs.LsR(dir, opts...)
			} else {
				names, err = a.fs.Ls(dir, opts...)
			}
			if err != nil {
				return err
			}
			for _, name := range names {
				if _, err := fmt.Fprintln(a.Out, a.colorize(pa.Join(dir, name), name)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "list descendants relative to DIR")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include entries starting with a dot")
	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "skip entries ending in ~")
	return cmd
}

func (a *App) globCommand() *cobra.Command {
	var dotMatch bool
	cmd := &cobra.Command{
		Use:   "glob PATTERN...",
		Short: "Print the paths matching patterns",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			paths, err := a.fs.GlobAll(args, when(dotMatch, pa.WithDotMatch())...)
			if err != nil {
				return err
			}
			for _, p := range paths {
				if _, err := fmt.Fprintln(a.Out, a.colorize(p.Path(), p.Path())); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dotMatch, "dotmatch", false, "let wildcards match leading dots")
	return cmd
}

// colorize renders label in the color of the file at p.
func (a *App) colorize(p, label string) string {
	switch {
	case a.fs.IsSymlink(p):
		return a.linkColor.Sprint(label)
	case a.fs.IsDir(p):
		return a.dirColor.Sprint(label)
	case a.fs.IsFile(p) && a.fs.IsExecutable(p):
		return a.execColor.Sprint(label)
	}
	return label
}
