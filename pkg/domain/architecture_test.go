package domain

import (
	"testing"

	"parkcore/testutil"
)

// The domain model is shared by every driver and transport, so it must not
// pull any of them in.
func TestDomainDependsOnStandardLibraryOnly(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.AnyOf(testutil.ThirdPartyImport, testutil.InternalImport), "domain must stay dependency free")
	testutil.AssertNoTransitiveDependency(t, ".", ".", testutil.AnyOf(testutil.ThirdPartyImport, testutil.InternalImport), "domain must stay dependency free")
}
