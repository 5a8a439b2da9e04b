package trial

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storeTestMachineID = "9f2c1d4e5a6b7c8d9e0f1a2b3c4d5e6f9f2c1d4e5a6b7c8d9e0f1a2b3c4d5e6f"

func TestStorageLocations(t *testing.T) {
	locations := storageLocations("TicketZero", storeTestMachineID)

	require.GreaterOrEqual(t, len(locations), 2, "at least temp and one other location")
	seen := make(map[string]bool)
	for _, location := range locations {
		assert.True(t, filepath.IsAbs(location), "location %s must be absolute", location)
		assert.Regexp(t, `\.[0-9a-f]{12}\.dat$`, location)
		assert.False(t, seen[location], "locations must be distinct")
		seen[location] = true
	}
}

func TestStorageLocationsVaryPerMachine(t *testing.T) {
	first := storageLocations("TicketZero", storeTestMachineID)
	second := storageLocations("TicketZero",
		"1111111111111111111111111111111111111111111111111111111111111111")

	for i := range first {
		assert.NotEqual(t, first[i], second[i],
			"filenames must not be shared across machines")
	}
}

func TestAppDataDir(t *testing.T) {
	dir := appDataDir()
	require.NotEmpty(t, dir)
	assert.True(t, filepath.IsAbs(dir))
}
