package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaudit/compliance/internal/logging"
)

func writeRulePack(t *testing.T, dir string, rules string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.json"), []byte(rules), 0o644))
}

func TestGet_LoadsCommonAndCategoryRules(t *testing.T) {
	root := t.TempDir()
	writeRulePack(t, filepath.Join(root, "india", "common"),
		`[{"id":"c1","regulation":"DTC Act","title":"No unverified claims"}]`)
	writeRulePack(t, filepath.Join(root, "india", "supplements"),
		`[{"id":"s1","regulation":"FSSAI","title":"No cure claims"}]`)

	repo, err := NewRepository(root, logging.Get())
	require.NoError(t, err)
	defer repo.Close()

	pack, err := repo.Get("India", "", "supplements")
	require.NoError(t, err)
	assert.Len(t, pack, 2)
}

func TestGet_UnknownCountryReturnsEmptyPack(t *testing.T) {
	root := t.TempDir()

	repo, err := NewRepository(root, logging.Get())
	require.NoError(t, err)
	defer repo.Close()

	pack, err := repo.Get("Atlantis", "", "")
	require.NoError(t, err)
	assert.Empty(t, pack)
}

func TestGet_GCCRegionLoadsRegionDir(t *testing.T) {
	root := t.TempDir()
	writeRulePack(t, filepath.Join(root, "gcc", "uae"),
		`[{"id":"u1","regulation":"UAE Media Law","title":"No unlicensed health claims"}]`)

	repo, err := NewRepository(root, logging.Get())
	require.NoError(t, err)
	defer repo.Close()

	pack, err := repo.Get("GCC", "uae", "")
	require.NoError(t, err)
	require.Len(t, pack, 1)
	assert.Equal(t, "u1", pack[0].ID)
}

func TestGet_CachesSecondLookup(t *testing.T) {
	root := t.TempDir()
	writeRulePack(t, filepath.Join(root, "india", "common"),
		`[{"id":"c1","regulation":"DTC Act","title":"No unverified claims"}]`)

	repo, err := NewRepository(root, logging.Get())
	require.NoError(t, err)
	defer repo.Close()

	first, err := repo.Get("India", "", "")
	require.NoError(t, err)

	// Stop the hot-reload watcher so the removal below cannot invalidate
	// the cache before the second lookup.
	require.NoError(t, repo.Close())
	os.RemoveAll(filepath.Join(root, "india"))

	second, err := repo.Get("India", "", "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
