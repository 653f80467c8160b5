package output

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// DebugDir saves raw payloads under a fixed directory so failed runs can be
// inspected afterwards. Write failures are logged and never fail the run.
type DebugDir struct {
	dir string
}

// NewDebugDir returns a DebugDir rooted at dir. The directory is created lazily.
func NewDebugDir(dir string) *DebugDir {
	return &DebugDir{dir: dir}
}

// Dir returns the root directory
func (d *DebugDir) Dir() string {
	return d.dir
}

// Save writes content to dir/name and returns the path, or "" on failure
func (d *DebugDir) Save(name, content string) string {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		log.Warn().Err(err).Str("dir", d.dir).Msg("Failed to create debug directory")
		return ""
	}

	path := filepath.Join(d.dir, filepath.Base(name))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		log.Warn().Err(err).Str("file", path).Msg("Failed to write debug file")
		return ""
	}

	log.Debug().Str("file", path).Int("bytes", len(content)).Msg("Debug file saved")
	return path
}
