package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmgilman/go/pa"
)

// Info describes a single path for pa info.
type Info struct {
	Path     string    `yaml:"path"`
	Dir      string    `yaml:"dir"`
	Name     string    `yaml:"name"`
	Ext      string    `yaml:"ext,omitempty"`
	Type     string    `yaml:"type"`
	Size     int64     `yaml:"size"`
	Mode     string    `yaml:"mode"`
	Modified time.Time `yaml:"modified"`
	Target   string    `yaml:"target,omitempty"`
}

func (a *App) infoCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "info PATH...",
		Short: "Describe paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			infos := make([]Info, 0, len(args))
			for _, arg := range args {
				info, err := a.describe(arg)
				if err != nil {
					return err
				}
				infos = append(infos, info)
			}

			switch output {
			case "yaml":
				enc := yaml.NewEncoder(a.Out)
				defer func() { _ = enc.Close() }()
				return enc.Encode(infos)
			case "text":
				for _, info := range infos {
					if err := writeInfo(a.Out, info); err != nil {
						return err
					}
				}
				return nil
			default:
				return platformerrors.Newf(platformerrors.CodeInvalidInput, "unknown output format %q", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (text, yaml)")
	return cmd
}

func (a *App) describe(arg string) (Info, error) {
	p := pa.New(arg)
	st, err := a.fs.Lstat(p.Path())
	if err != nil {
		return Info{}, err
	}
	kind, err := a.fs.Type(p.Path())
	if err != nil {
		return Info{}, err
	}
	mtime, err := a.fs.Mtime(p.Path())
	if err != nil {
		mtime = st.ModTime()
	}

	info := Info{
		Path:     p.Path(),
		Dir:      p.Dir(),
		Name:     p.Name(),
		Ext:      p.Ext(),
		Type:     kind,
		Size:     st.Size(),
		Mode:     st.Mode().String(),
		Modified: mtime.UTC(),
	}
	if kind == pa.TypeSymlink {
		if info.Target, err = a.fs.Readlink(p.Path()); err != nil {
			return Info{}, err
		}
	}
	return info, nil
}

func writeInfo(w io.Writer, info Info) error {
	_, err := fmt.Fprintf(w, "%s\n  type:     %s\n  size:     %s (%d bytes)\n  mode:     %s\n  modified: %s (%s)\n",
		info.Path,
		info.Type,
		humanize.Bytes(uint64(max(info.Size, 0))),
		info.Size,
		info.Mode,
		info.Modified.Format(time.RFC3339),
		humanize.Time(info.Modified),
	)
	if err != nil || info.Target == "" {
		return err
	}
	_, err = fmt.Fprintf(w, "  target:   %s\n", info.Target)
	return err
}
