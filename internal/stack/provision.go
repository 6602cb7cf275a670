package stack

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mmr-tortoise/stackup/internal/model"
)

// EnsureDirs creates every directory in dirs under root, including
// parents, with default permissions. Existing directories are left
// alone, so the call is idempotent.
//
// This runs before the compose launch so the directories are owned by
// the invoking user. If the container runtime created them instead
// (through volume mounts), they would come out root-owned and the
// application would fail on its first write.
func EnsureDirs(root string, dirs []string) error {
	for _, dir := range dirs {
		path := filepath.Join(root, dir)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return model.WrapCLIError(
				model.ExitGeneralError,
				fmt.Sprintf("failed to create directory %s", path),
				err,
			)
		}
	}
	return nil
}
