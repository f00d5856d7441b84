// Package moduleaccess resolves the base URLs of peer modules from the
// module_access.json file shipped under the base directory.
package moduleaccess

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tmavn/ordertrack/internal/platform/jsonvalidate"
)

// Known module/resource names.
const (
	ModuleOPS           = "OPS"
	ResourceCreateOrder = "CreateOrder"
)

// Entry maps one module resource to the URL it is reachable at.
type Entry struct {
	ModuleName   string `json:"moduleName"`
	ResourceName string `json:"resourceName"`
	URL          string `json:"url"`
}

// Registry is the loaded, immutable module-access table.
type Registry struct {
	entries []Entry
	logger  *slog.Logger
}

// Load reads and schema-validates the module-access file under baseDir.
// The file is read once at startup; lookups never touch the filesystem.
func Load(logger *slog.Logger, baseDir, fileName string) (*Registry, error) {
	path := filepath.Join(baseDir, fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read module access file %s: %w", path, err)
	}

	schemaPath := jsonvalidate.SchemaPath(baseDir, jsonvalidate.SchemaModuleAccess)
	if result := jsonvalidate.Validate(schemaPath, data); !result.Success {
		return nil, fmt.Errorf("module access file %s failed validation: %s", path, result.Message)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse module access file %s: %w", path, err)
	}

	return &Registry{
		entries: entries,
		logger:  logger.With("component", "module_access"),
	}, nil
}

// FindURL returns the URL registered for the module/resource pair, or
// "" and false when no entry matches.
func (r *Registry) FindURL(moduleName, resourceName string) (string, bool) {
	for _, e := range r.entries {
		if e.ModuleName == moduleName && e.ResourceName == resourceName {
			return e.URL, true
		}
	}
	r.logger.Warn("no module access entry", "module", moduleName, "resource", resourceName)
	return "", false
}
