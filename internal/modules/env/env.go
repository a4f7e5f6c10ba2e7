package env

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	cenv "github.com/caarlos0/env/v11"
)

var (
	ErrNotFound         = errors.New("environment variable with key not found")
	ErrConversionFailed = errors.New("failed to convert environment variable with key to value")
)

func errNotFound(key string) error {
	return fmt.Errorf("key: %s: %w", key, ErrNotFound)
}

func errConversionFailed(key string, typeName string, err error) error {
	return fmt.Errorf("key: %s type: %s: %w: %w", key, typeName, ErrConversionFailed, err)
}

// Parse fills a struct from the environment using its `env` tags.
func Parse[T any]() (T, error) {
	return cenv.ParseAs[T]()
}

// ParseFrom is Parse with an explicit environment, used by tests.
func ParseFrom[T any](environment map[string]string) (T, error) {
	return cenv.ParseAsWithOptions[T](cenv.Options{Environment: environment})
}

func GetBool(key string) (bool, error) {
	envVal, found := os.LookupEnv(key)
	if !found {
		return false, errNotFound(key)
	}

	val, err := strconv.ParseBool(envVal)
	if err != nil {
		return false, errConversionFailed(key, "bool", err)
	}

	return val, nil
}

// SkipInfrastructure reports whether test infrastructure is provided
// externally instead of being started by the tests.
func SkipInfrastructure() bool {
	skip, err := GetBool("SKIP_INFRASTRUCTURE")
	return err == nil && skip
}
