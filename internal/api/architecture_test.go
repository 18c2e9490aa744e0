package api

import (
	"testing"

	"parkcore/testutil"
)

func TestAPIDoesNotReachStorageDrivers(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.StorageDriverImport, "handlers go through core.Service")
}
