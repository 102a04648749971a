package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// maxLogFiles is how many rotated server logs are kept when file logging
// is enabled via LOG_DIR.
const maxLogFiles = 10

// SetupLogFile creates a timestamped log file under dir and prunes the
// oldest ones beyond maxLogFiles. The caller owns closing the handle.
func SetupLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("glossa-%s.log",
		time.Now().Format("2006-01-02T15-04-05")))

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	if err := pruneOldLogs(dir); err != nil {
		// Pruning failure must not take logging down with it.
		fmt.Fprintf(os.Stderr, "warning: failed to prune old logs: %v\n", err)
	}

	return f, nil
}

// pruneOldLogs removes the oldest log files once the count exceeds
// maxLogFiles. The timestamped naming keeps lexical order chronological.
func pruneOldLogs(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "glossa-*.log"))
	if err != nil {
		return err
	}
	if len(files) <= maxLogFiles {
		return nil
	}

	sort.Strings(files)
	for _, old := range files[:len(files)-maxLogFiles] {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("remove %s: %w", old, err)
		}
	}
	return nil
}
