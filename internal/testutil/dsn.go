package testutil

import (
	"fmt"
)

// NewTestDSN generates a DSN for a named, shared-cache in-memory SQLite
// database. Connections opened with the same name see the same data.
func NewTestDSN(testName string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", testName)
}
