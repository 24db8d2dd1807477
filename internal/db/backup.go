package db

import (
	"io"
	"log"
	"os"
	"sync"
	"time"
)

var (
	backupMu       sync.Mutex
	lastBackupTime time.Time
)

// BackupPath returns the backup file destination from env.
func BackupPath() string {
	if p := os.Getenv("HEALTH_DB_BACKUP_PATH"); p != "" {
		return p
	}
	return "health_data_backup.db"
}

// Backup copies the database file to the backup path if the last copy is
// older than a day, or unconditionally when force is set. The copy is not
// coordinated with concurrent writers; a slightly stale backup is accepted.
func Backup(force bool) error {
	backupMu.Lock()
	defer backupMu.Unlock()

	if !force && !lastBackupTime.IsZero() && time.Since(lastBackupTime) < 24*time.Hour {
		return nil
	}
	if err := copyFile(Path(), BackupPath()); err != nil {
		return err
	}
	lastBackupTime = time.Now()
	return nil
}

// StartBackupLoop runs a best-effort daily backup until stop is closed.
func StartBackupLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := Backup(false); err != nil {
				log.Printf("database backup failed: %v", err)
			}
		case <-stop:
			return
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
