package system

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/julianstephens/tracklit/internal/cli"
)

var errBackupUnsupported = errors.New("backups are only available for the sqlite driver")

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Snapshot the database."`
	List    BackupListCmd    `cmd:"" help:"List available snapshots."`
	Restore BackupRestoreCmd `cmd:"" help:"Restore the database from a snapshot."`
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, ok := ctx.BackupManager()
	if !ok {
		return errBackupUnsupported
	}
	path, err := mgr.Create()
	if err != nil {
		return err
	}
	ctx.Printf("Backup created: %s\n", path)
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, ok := ctx.BackupManager()
	if !ok {
		return errBackupUnsupported
	}
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		ctx.Printf("No backups in %s\n", mgr.Dir())
		return nil
	}
	ctx.Println(cli.HeaderStyle.Render(fmt.Sprintf("Backups (%s)", mgr.Dir())))
	for _, b := range backups {
		ctx.Printf("  %s  %s  %s\n",
			b.Timestamp.In(ctx.Location()).Format("2006-01-02 15:04:05"),
			formatSize(b.Size),
			filepath.Base(b.Path))
	}
	return nil
}

type BackupRestoreCmd struct {
	File string `arg:"" help:"Snapshot file name or path."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, ok := ctx.BackupManager()
	if !ok {
		return errBackupUnsupported
	}
	path := c.File
	if filepath.Base(path) == path {
		path = filepath.Join(mgr.Dir(), path)
	}

	confirmed, err := ctx.Confirmed(c.Yes, fmt.Sprintf("Replace the current database with %s?", filepath.Base(path)))
	if err != nil {
		return err
	}
	if !confirmed {
		ctx.Println("Cancelled")
		return nil
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	previous, err := mgr.Restore(path)
	if err != nil {
		return err
	}
	if previous != "" {
		ctx.Printf("Previous database saved to %s\n", previous)
	}
	ctx.Printf("Restored from %s\n", path)
	return nil
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
