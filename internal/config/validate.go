package config

import (
	"errors"
	"fmt"
)

// Validate reports every missing or unsupported setting at once.
func (c Config) Validate() error {
	var errs []error
	if len(c.SecretKey) == 0 {
		errs = append(errs, missing("SECRET_KEY"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, missing("DATABASE_URL"))
	}

	switch c.RevocationStore {
	case "db", "memory":
	default:
		errs = append(errs, fmt.Errorf("REVOCATION_STORE must be db or memory, got %q", c.RevocationStore))
	}

	switch c.SearchBackend {
	case "db":
	case "elasticsearch":
		if c.ESURL == "" {
			errs = append(errs, fmt.Errorf("SEARCH_BACKEND=elasticsearch requires ES_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("SEARCH_BACKEND must be db or elasticsearch, got %q", c.SearchBackend))
	}

	return errors.Join(errs...)
}

func missing(env string) error {
	return fmt.Errorf("missing required env %s", env)
}
