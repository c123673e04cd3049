package config

import (
	"fmt"
	"strings"

	"github.com/querybench/querybench/internal/adapter"
)

// ValidateTarget checks that the target configuration is usable before any
// connection is attempted.
func ValidateTarget(t *TargetConfig) error {
	if t == nil {
		return fmt.Errorf("target configuration is required")
	}

	if !adapter.IsRegistered(t.Type) {
		available := strings.Join(adapter.ListAdapters(), ", ")
		return fmt.Errorf("unknown target type %q (available: %s)", t.Type, available)
	}

	switch t.Type {
	case "postgres":
		if t.Host == "" {
			return fmt.Errorf("postgres target requires a host")
		}
		if t.Database == "" {
			return fmt.Errorf("postgres target requires a database name")
		}
	}

	return nil
}
