package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex inv_01HZX3F6W4K6N2W6Q3B8M1V9ZT
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	// Prefixes for all domains and entities

	UUID_PREFIX_COMPANY = "comp"
	UUID_PREFIX_PREMISE = "prem"
	UUID_PREFIX_DEVICE  = "dev"
	UUID_PREFIX_INVOICE = "inv"
	UUID_PREFIX_USER    = "user"
)
