package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financeiro/internal/core"
)

func TestDefault(t *testing.T) {
	tx := Default()

	income := tx.CategoriesFor(core.Income)
	assert.Equal(t, "Salário", income[0])
	assert.Contains(t, income, core.OpeningBalanceCategory)
	assert.Contains(t, income, core.OtherCategory)

	expense := tx.CategoriesFor(core.Expense)
	assert.Equal(t, "Alimentação", expense[0])
	assert.Contains(t, expense, "Cartão de Crédito")
	assert.Nil(t, tx.CategoriesFor("Transfer"))
}

func TestCanonical(t *testing.T) {
	tx := Default()

	assert.Equal(t, "Saúde", tx.Canonical(core.Expense, "saude"))
	assert.Equal(t, "Alimentação", tx.Canonical(core.Expense, "  ALIMENTACAO "))
	assert.Equal(t, core.OtherCategory, tx.Canonical(core.Expense, "Salário"))
	assert.Equal(t, core.OtherCategory, tx.Canonical(core.Income, ""))
	assert.True(t, tx.Known(core.Income, "freelance"))
	assert.False(t, tx.Known(core.Income, "Moradia"))
}

func TestSuggest(t *testing.T) {
	tx := Default()

	assert.Equal(t, "Alimentação", tx.Suggest("Supermercado Dia"))
	assert.Equal(t, "Saúde", tx.Suggest("Farmácia São João"))
	assert.Equal(t, "Streaming", tx.Suggest("NETFLIX.COM"))
	assert.Equal(t, core.OtherCategory, tx.Suggest("presente"))
	assert.Equal(t, core.OtherCategory, tx.Suggest(""))
}

func TestParseAddsFallback(t *testing.T) {
	tx, err := Parse([]byte(`
categories:
  income: [Salário, salario]
  expense: [Mercado]
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Salário", core.OtherCategory}, tx.CategoriesFor(core.Income))
	assert.Equal(t, []string{"Mercado", core.OtherCategory}, tx.CategoriesFor(core.Expense))
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"bad yaml":     "categories: [",
		"no income":    "categories:\n  expense: [A]\n",
		"no expense":   "categories:\n  income: [A]\n",
		"unknown rule": "categories:\n  income: [A]\n  expense: [B]\nrules:\n  - pattern: x\n    category: Z\n",
		"empty rule":   "categories:\n  income: [A]\n  expense: [B]\nrules:\n  - pattern: ' '\n    category: B\n",
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoad(t *testing.T) {
	tx, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, tx.CategoriesFor(core.Expense))

	path := filepath.Join(t.TempDir(), "tax.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  income: [Bolsa]\n  expense: [Livros]\n"), 0644))
	tx, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bolsa", core.OtherCategory}, tx.CategoriesFor(core.Income))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
