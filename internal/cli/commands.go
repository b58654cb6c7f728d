package cli

import (
	"fmt"
	"io/fs"
	"strconv"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/spf13/cobra"

	"github.com/jmgilman/go/pa"
)

func (a *App) cpCommand() *cobra.Command {
	var force, parents, follow bool
	cmd := &cobra.Command{
		Use:   "cp SRC... DEST",
		Short: "Copy files and directories",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			srcs, dest := args[:len(args)-1], args[len(args)-1]
			opts := a.options(when(force, pa.WithForce())...)
			opts = append(opts, when(parents, pa.WithMkdir())...)
			opts = append(opts, when(follow, pa.WithFollowSymlinks())...)
			return a.fs.Cp(srcs, dest, opts...)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing destinations")
	cmd.Flags().BoolVarP(&parents, "parents", "p", false, "create the destination directory")
	cmd.Flags().BoolVarP(&follow, "dereference", "L", false, "copy symlink targets instead of links")
	return cmd
}

func (a *App) mvCommand() *cobra.Command {
	var force, parents bool
	cmd := &cobra.Command{
		Use:   "mv SRC... DEST",
		Short: "Move files and directories",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			srcs, dest := args[:len(args)-1], args[len(args)-1]
			opts := a.options(when(force, pa.WithForce())...)
			opts = append(opts, when(parents, pa.WithMkdir())...)
			return a.fs.Mv(srcs, dest, opts...)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace or merge into existing destinations")
	cmd.Flags().BoolVarP(&parents, "parents", "p", false, "create the destination directory")
	return cmd
}

func (a *App) rmCommand() *cobra.Command {
	var recursive, force, dirs bool
	cmd := &cobra.Command{
		Use:   "rm PATH...",
		Short: "Remove files, or directories with -r or -d",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			opts := a.options(when(force, pa.WithForce())...)
			switch {
			case recursive:
				return a.fs.RmR(args, opts...)
			case dirs:
				return a.fs.Rmdir(args, opts...)
			default:
				return a.fs.Rm(args, opts...)
			}
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "remove everything, ignoring missing paths")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip missing paths and wrong types")
	cmd.Flags().BoolVarP(&dirs, "dir", "d", false, "remove directories with their contents")
	return cmd
}

func (a *App) mkdirCommand() *cobra.Command {
	var force bool
	var mode string
	cmd := &cobra.Command{
		Use:   "mkdir PATH...",
		Short: "Create directories and their parents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			opts := a.options(when(force, pa.WithForce())...)
			if mode != "" {
				m, err := parseMode(mode)
				if err != nil {
					return err
				}
				opts = append(opts, pa.WithMode(m))
			}
			return a.fs.Mkdir(args, opts...)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "ignore existing paths")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "octal permission for created directories")
	return cmd
}

func (a *App) touchCommand() *cobra.Command {
	var force, parents bool
	cmd := &cobra.Command{
		Use:   "touch PATH...",
		Short: "Create empty files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			opts := a.options(when(force, pa.WithForce())...)
			opts = append(opts, when(parents, pa.WithMkdir())...)
			return a.fs.Touch(args, opts...)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "ignore existing paths")
	cmd.Flags().BoolVarP(&parents, "parents", "p", false, "create missing parent directories")
	return cmd
}

func (a *App) lnCommand() *cobra.Command {
	var symbolic, force bool
	cmd := &cobra.Command{
		Use:   "ln SRC... DEST",
		Short: "Create hard or symbolic links",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			srcs, dest := args[:len(args)-1], args[len(args)-1]
			opts := a.options(when(force, pa.WithForce())...)
			if symbolic {
				return a.fs.Symln(srcs, dest, opts...)
			}
			return a.fs.Ln(srcs, dest, opts...)
		},
	}
	cmd.Flags().BoolVarP(&symbolic, "symbolic", "s", false, "create symbolic links")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace existing destinations")
	return cmd
}

func (a *App) emptyCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "empty DIR...",
		Short: "Remove the contents of directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.fs.EmptyDir(args, a.options(when(force, pa.WithForce())...)...)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip missing paths and files")
	return cmd
}

func (a *App) tmpdirCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tmpdir [NAME]",
		Short: "Create a temporary directory and print its path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			dir, err := a.fs.MkTmpDir(name, a.options()...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.Out, dir.Path())
			return err
		},
	}
}

func parseMode(s string) (fs.FileMode, error) {
	m, err := strconv.ParseUint(s, 8, 32)
	if err != nil || m > 0o7777 {
		return 0, platformerrors.Newf(platformerrors.CodeInvalidInput, "invalid mode %q", s)
	}
	return fs.FileMode(m&0o777) | specialBits(m), nil
}

// specialBits maps the setuid, setgid and sticky octal digits to FileMode.
func specialBits(m uint64) fs.FileMode {
	var mode fs.FileMode
	if m&0o4000 != 0 {
		mode |= fs.ModeSetuid
	}
	if m&0o2000 != 0 {
		mode |= fs.ModeSetgid
	}
	if m&0o1000 != 0 {
		mode |= fs.ModeSticky
	}
	return mode
}
