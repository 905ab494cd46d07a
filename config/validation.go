package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that every value the process cannot run without is
// present. Test environments are allowed to run without an object store
// bucket; production is not.
func ValidateConfig(cfg *Config) error {
	var errs []string

	required := map[string]string{
		"DB_USER":    cfg.DBUser,
		"DB_NAME":    cfg.DBName,
		"JWT_SECRET": cfg.JWTSecret,
	}
	if GetEnvironment() == Production {
		required["DB_PASSWORD"] = cfg.DBPassword
		required["S3_BUCKET_NAME"] = cfg.S3Bucket
	}

	for field, value := range required {
		if value == "" {
			errs = append(errs, ValidationError{Field: field, Message: "is required"}.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}
