package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// workspaceDirName is the per-user directory under $HOME.
const workspaceDirName = ".brd-tui"

// DefaultWorkspace returns ~/.brd-tui.
func DefaultWorkspace() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("app: locate home directory: %w", err)
	}
	return filepath.Join(home, workspaceDirName), nil
}
