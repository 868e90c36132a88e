package storage

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

var pathComponentPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

const ParquetSuffix = ".parquet"

// BuildFlightFilePath lays flight files out as one hive-style partition per
// flight date: <table>/date=YYYY-MM-DD/part-NNNNN.parquet.
func BuildFlightFilePath(tableName string, flightDate time.Time, sequence int) (string, error) {
	if err := validatePathComponent(tableName, "table name"); err != nil {
		return "", err
	}
	if sequence < 0 {
		return "", fmt.Errorf("sequence must be >= 0")
	}
	return path.Join(
		tableName,
		fmt.Sprintf("date=%04d-%02d-%02d", flightDate.Year(), flightDate.Month(), flightDate.Day()),
		fmt.Sprintf("part-%05d%s", sequence, ParquetSuffix),
	), nil
}

func TablePrefix(tableName string) (string, error) {
	if err := validatePathComponent(tableName, "table name"); err != nil {
		return "", err
	}
	return tableName + "/", nil
}

func IsParquetKey(key string) bool {
	return strings.HasSuffix(strings.ToLower(key), ParquetSuffix)
}

func ValidateTableName(tableName string) error {
	return validatePathComponent(tableName, "table name")
}

func validatePathComponent(value, field string) error {
	if !pathComponentPattern.MatchString(value) {
		return fmt.Errorf("invalid %s: %q", field, value)
	}
	return nil
}
