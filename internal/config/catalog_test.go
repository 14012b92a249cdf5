package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultServiceCatalog(t *testing.T) {
	catalog, err := DefaultServiceCatalog()
	require.NoError(t, err)

	ids := make([]string, 0)
	for _, svc := range catalog.List() {
		ids = append(ids, svc.ID)
	}
	assert.Equal(t, []string{"primeira_habilitacao", "renovacao_cnh", "segunda_via_cnh"}, ids)
	assert.Equal(t, []string{"RG", "BO"}, catalog.Services["segunda_via_cnh"].DocsNeeded)
}

func TestCatalogHolderReadsExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yml")
	content := []byte(`catalog:
  services:
    transferencia:
      name: "Transferência de Propriedade"
      requirements: ["Recibo assinado"]
      docs_needed: ["CRV"]
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	holder, err := NewCatalogHolder(Config{CatalogPath: path}, zap.NewNop())
	require.NoError(t, err)

	svc, ok := holder.Service("Transferencia")
	require.True(t, ok)
	assert.Equal(t, "transferencia", svc.ID)
	assert.Equal(t, []string{"Recibo assinado"}, holder.Requirements("transferencia"))
	assert.False(t, holder.IsEligible("renovacao_cnh"))
}

func TestStaticCatalogEligibility(t *testing.T) {
	catalog, err := DefaultServiceCatalog()
	require.NoError(t, err)
	holder := NewStaticCatalogHolder(catalog)

	assert.True(t, holder.IsEligible("renovacao_cnh"))
	assert.False(t, holder.IsEligible("emplacamento"))
	assert.Empty(t, holder.Requirements("emplacamento"))
}
