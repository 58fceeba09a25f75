package opts

import (
	"context"
	"path/filepath"

	"github.com/walteh/forcesync/pkg/config"
	"github.com/walteh/forcesync/pkg/log"
	"github.com/walteh/forcesync/pkg/operation"
	"github.com/walteh/forcesync/pkg/profile"
	"github.com/walteh/forcesync/pkg/remote"
	"github.com/walteh/forcesync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Config      *config.Config
	ProjectDir  string
	Console     *log.Logger
	Interactive bool // progress bar instead of log lines
}

// Operator builds an operator for the project reporting changes to reporter.
// The remote source is only created when withRemote is set.
func (o *RootOpts) Operator(ctx context.Context, withRemote bool, reporter operation.Reporter) (operation.Operator, error) {
	options := operation.Options{
		Config:     o.Config,
		ProjectDir: o.ProjectDir,
		Reporter:   reporter,
	}

	if withRemote {
		src, err := remote.New(ctx, o.remote())
		if err != nil {
			return nil, errors.Errorf("creating remote source: %w", err)
		}
		options.Source = src
		options.Progress = o.progress(ctx)
	}

	op, err := operation.New(options)
	if err != nil {
		return nil, errors.Errorf("creating operator: %w", err)
	}
	return op, nil
}

// remote resolves a relative remote path against the config file, or the
// project when there is no config file.
func (o *RootOpts) remote() config.Remote {
	r := *o.Config.Remote
	if r.Path == "" || filepath.IsAbs(r.Path) || r.Provider == "github" {
		return r
	}
	if o.Config.Location() != "" {
		r.Path = o.Config.Resolve(r.Path)
	} else {
		r.Path = filepath.Join(o.ProjectDir, r.Path)
	}
	return r
}

// RemoteName describes the configured remote for run headers.
func (o *RootOpts) RemoteName() string {
	r := o.Config.Remote
	switch r.Provider {
	case "github":
		return "github:" + r.Repo + "@" + r.Ref
	case "":
		return "none"
	default:
		return r.Provider + ":" + r.Path
	}
}

// ConsoleChanges shows operation changes as aligned console lines so that the
// run summary counts them.
type ConsoleChanges struct {
	Console *log.Logger
	Kind    string
}

var _ operation.Reporter = ConsoleChanges{}

func (c ConsoleChanges) LogChange(ctx context.Context, change status.Change) {
	c.Console.LogChange(ctx, log.Change{
		Name:   change.Name,
		Path:   change.Path,
		Kind:   c.Kind,
		Action: actionOf(change.Type),
	})
	if change.Error != nil {
		c.Console.Errorf("%s: %v", status.NewDefaultFormatter().FormatChange(change), change.Error)
	}
}

func actionOf(t status.ChangeType) log.Action {
	switch t {
	case status.ChangeAdded:
		return log.ActionAdded
	case status.ChangeUpdated:
		return log.ActionUpdated
	case status.ChangeDeleted:
		return log.ActionDeleted
	case status.ChangeCopied:
		return log.ActionCopied
	case status.ChangeSkipped:
		return log.ActionSkipped
	default:
		return log.ActionFailed
	}
}

func (o *RootOpts) progress(ctx context.Context) profile.Progress {
	return status.NewProgress(ctx, "Retrieving profiles", o.Interactive)
}
