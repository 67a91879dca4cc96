package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFile is the configuration file name looked up by FindConfig.
const ConfigFile = "wxrmd.yaml"

// FindConfig looks upwards from startDir for a configuration file and returns
// its absolute path.
func FindConfig(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if candidate := filepath.Join(dir, ConfigFile); isFile(candidate) {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%s not found", ConfigFile)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
