package records

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"catalog_sync/internal/adapters/opener"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestLoader(dir string) *Loader {
	op := opener.NewCompoundOpener(opener.NewLocalOpener(zerolog.Nop()), nil, nil)
	return NewLoader(op, dir, zerolog.Nop())
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoad_jsonKeepsOrderAndNumbers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "products.json", `[
		{"sku":"A1","source":{"locale":"en-US"},"price":9.99},
		{"sku":"A2","source":{"locale":"en-US"},"price":12345678901234567890}
	]`)

	recs, err := newTestLoader(dir).Load(context.Background(), "products.json")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "A1", recs[0]["sku"])
	assert.Equal(t, "A2", recs[1]["sku"])
	assert.Equal(t, json.Number("12345678901234567890"), recs[1]["price"])

	out, err := json.Marshal(recs[1]["price"])
	require.NoError(t, err)
	assert.Equal(t, "12345678901234567890", string(out))
}

func TestLoad_emptyArray(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "prices.json", `[]`)

	recs, err := newTestLoader(dir).Load(context.Background(), "prices.json")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestLoad_errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "object.json", `{"sku":"A1"}`)
	writeFile(t, dir, "broken.json", `[{"sku":`)
	writeFile(t, dir, "scalars.json", `[1,2]`)
	writeFile(t, dir, "empty.json", ``)

	l := newTestLoader(dir)
	for _, name := range []string{"object.json", "broken.json", "scalars.json", "empty.json", "missing.json"} {
		_, err := l.Load(context.Background(), name)
		assert.Error(t, err, name)
	}
}

func TestLoad_xlsxFirstSheet(t *testing.T) {
	dir := t.TempDir()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"sku", "priceBookId", "regular"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"A1", "west", "9.99"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"", "", ""}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"A2", "east"}))
	require.NoError(t, f.SaveAs(filepath.Join(dir, "prices.xlsx")))
	require.NoError(t, f.Close())

	recs, err := newTestLoader(dir).Load(context.Background(), "prices.xlsx")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, Record{"sku": "A1", "priceBookId": "west", "regular": "9.99"}, recs[0])
	assert.Equal(t, Record{"sku": "A2", "priceBookId": "east"}, recs[1])
}

func TestProject(t *testing.T) {
	r := Record{"sku": "A1", "source": "S", "price": 9.99}
	assert.Equal(t, Record{"sku": "A1", "source": "S"}, r.Project("sku", "source"))
	assert.Equal(t, Record{"sku": "A1"}, r.Project("sku", "priceBookId"))
	assert.Len(t, r, 3)
}

func TestProjector(t *testing.T) {
	in := []Record{
		{"priceBookId": "west", "name": "West", "currency": "USD"},
		{"priceBookId": "east", "parentId": "west"},
	}
	out := Projector("priceBookId")(in)
	assert.Equal(t, []Record{{"priceBookId": "west"}, {"priceBookId": "east"}}, out)
}
