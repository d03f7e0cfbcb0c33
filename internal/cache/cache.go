// Package cache prunes stale files from the directories the application writes to.
package cache

import (
	"os"
	"time"

	"github.com/anisan-cli/vidresolve/filesystem"
	"github.com/anisan-cli/vidresolve/log"
	"github.com/spf13/afero"
)

// CollectGarbage removes the regular files below dir that were last
// modified more than ttl ago. Unreadable entries are skipped.
func CollectGarbage(dir string, ttl time.Duration) (removed int) {
	now := time.Now()
	fs := filesystem.API()

	_ = afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		if now.Sub(info.ModTime()) <= ttl {
			return nil
		}

		if err := fs.Remove(path); err != nil {
			log.Warnf("cache: remove %s: %v", path, err)
			return nil
		}

		removed++
		return nil
	})

	if removed > 0 {
		log.Debugf("cache: removed %d stale files from %s", removed, dir)
	}

	return removed
}
