package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/screenerhq/scan-server/catalog"
)

func TestServicesCatalog(t *testing.T) {
	services := catalog.Services()
	require.Len(t, services, 18)

	ids := make(map[string]string, len(services))
	for _, s := range services {
		require.NotEmpty(t, s.Name)
		require.NotEmpty(t, s.Category)
		ids[s.ID] = s.Category
	}
	require.Equal(t, "Security", ids["iam"])
	require.Equal(t, "Compute", ids["ec2"])
}

func TestRegionsCatalog(t *testing.T) {
	regions := catalog.Regions()
	require.Len(t, regions, 17)
	require.Equal(t, "us-east-1", regions[0].ID)
	require.Equal(t, "US East (N. Virginia)", regions[0].Name)
}

func TestFrameworksCatalog(t *testing.T) {
	frameworks := catalog.Frameworks()
	require.Len(t, frameworks, 6)
	require.Equal(t, "CIS", frameworks[1].ID)
}

func TestCatalogReturnsCopies(t *testing.T) {
	first := catalog.Services()
	first[0].ID = "mutated"
	require.Equal(t, "apigateway", catalog.Services()[0].ID)
}

func TestProfilesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials")
	content := `[default]
aws_access_key_id = AKIAEXAMPLE
aws_secret_access_key = secret

[staging]
aws_access_key_id = AKIASTAGING
aws_secret_access_key = secret

[prod-audit]
aws_access_key_id = AKIAPROD
aws_secret_access_key = secret
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	profiles := catalog.ProfilesFromFile(path)
	require.Equal(t, []string{"default", "prod-audit", "staging"}, profiles)
}

func TestProfilesFromMissingFile(t *testing.T) {
	profiles := catalog.ProfilesFromFile(filepath.Join(t.TempDir(), "nope"))
	require.Equal(t, []string{"default"}, profiles)
}
