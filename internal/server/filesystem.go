package server

import (
	"os"

	"videosnatch-server/internal/config"
)

// PrepareFilesystem creates the temp directory used for in-flight downloads
func PrepareFilesystem(cfg *config.Config) error {
	return os.MkdirAll(cfg.TempDir, 0755)
}
