package runtime

import (
	"github.com/firefly-engineering/vivarium/internal/errors"
	"github.com/firefly-engineering/vivarium/internal/logging"
	"github.com/firefly-engineering/vivarium/internal/system"
)

// CheckPrerequisites returns a PrerequisiteMissing error naming every tool
// that is not on PATH.
func CheckPrerequisites(exec system.CommandExecutor, tools ...string) error {
	var missing []string
	for _, tool := range tools {
		path, err := exec.LookPath(tool)
		if err != nil {
			missing = append(missing, tool)
			continue
		}
		logging.Debug("found prerequisite", "tool", tool, "path", path)
	}
	if len(missing) > 0 {
		return errors.PrerequisiteMissing(missing)
	}
	return nil
}
