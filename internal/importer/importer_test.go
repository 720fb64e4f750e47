package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/celerix-dev/auditoria/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNormalize_LengthAndAllFields(t *testing.T) {
	records := []Record{
		{"id": "A1", "nome": "Caixa"},
		{},
		{"UNKNOWN": "x", "ID": "B2"},
	}

	rows := Normalize(records)
	require.Len(t, rows, len(records))
	assert.Equal(t, schema.AuditRow{ID: "A1", Name: "Caixa"}, rows[0])
	assert.Equal(t, schema.AuditRow{}, rows[1])
	assert.Equal(t, schema.AuditRow{ID: "B2"}, rows[2])
	for _, r := range rows {
		assert.Len(t, r.Values(), len(schema.Fields))
	}
}

func TestNormalize_UpperAndLowerKeysAgree(t *testing.T) {
	lower := Record{}
	upper := Record{}
	for _, f := range schema.Fields {
		lower[aliases[f][0]] = "v-" + f
		upper[aliases[f][1]] = "v-" + f
	}

	assert.Equal(t, Normalize([]Record{lower}), Normalize([]Record{upper}))
}

func TestNormalize_DocumentedAlternates(t *testing.T) {
	rows := Normalize([]Record{{
		"SUB-CATEGORIA":      "Pagamento",
		"SITUAÇÃO":           "Resolvido",
		"COMO FOI RESOLVIDO": "Troca de cabo",
	}})

	assert.Equal(t, "Pagamento", rows[0].Subcategory)
	assert.Equal(t, "Resolvido", rows[0].Status)
	assert.Equal(t, "Troca de cabo", rows[0].Resolution)
}

func TestNormalize_FoldedHeaders(t *testing.T) {
	rows := Normalize([]Record{{
		"Sub Categoria": "Pagamento",
		"Situação":      "Pendente",
		"Físico":        "Sim",
		" Nome ":        "Caixa 2",
	}})

	assert.Equal(t, "Pagamento", rows[0].Subcategory)
	assert.Equal(t, "Pendente", rows[0].Status)
	assert.Equal(t, "Sim", rows[0].Physical)
	assert.Equal(t, "Caixa 2", rows[0].Name)
}

func TestNormalize_FirstNonEmptyWins(t *testing.T) {
	rows := Normalize([]Record{{"id": "", "ID": "B2"}})
	assert.Equal(t, "B2", rows[0].ID)

	rows = Normalize([]Record{{"id": "A1", "ID": "B2"}})
	assert.Equal(t, "A1", rows[0].ID)
}

func TestFoldHeader(t *testing.T) {
	assert.Equal(t, "situacao", FoldHeader("SITUAÇÃO"))
	assert.Equal(t, "subcategoria", FoldHeader("Sub-Categoria"))
	assert.Equal(t, "comofoiresolvido", FoldHeader(" Como foi resolvido? "))
}

func TestParseCSV(t *testing.T) {
	input := "\uFEFF id , nome,categoria\n\nA1,Caixa\nB2,Balcão,Rede,extra\r\n"

	records, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Record{"id": "A1", "nome": "Caixa", "categoria": ""}, records[0])
	assert.Equal(t, Record{"id": "B2", "nome": "Balcão", "categoria": "Rede"}, records[1])
}

func TestParseCSV_QuotedCells(t *testing.T) {
	input := "ID,MOTIVO\nA1,\"falha, \"\"grave\"\"\"\n"

	records, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, `falha, "grave"`, records[0]["MOTIVO"])
}

func TestParseCSV_Empty(t *testing.T) {
	records, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestReadSpreadsheet(t *testing.T) {
	buf := workbook(t, [][]any{
		{"ID", "NOME", "SITUAÇÃO"},
		{"A1", "Caixa", "Pendente"},
		{"", "", ""},
		{"B2"},
	})

	records, err := ReadSpreadsheet(buf)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Record{"ID": "A1", "NOME": "Caixa", "SITUAÇÃO": "Pendente"}, records[0])
	assert.Equal(t, Record{"ID": "B2", "NOME": "", "SITUAÇÃO": ""}, records[1])
}

func TestReadSpreadsheet_NotAWorkbook(t *testing.T) {
	_, err := ReadSpreadsheet(strings.NewReader("id,nome\n"))
	assert.Error(t, err)
}

func TestDecodeByExtension(t *testing.T) {
	rows, err := Rows("Barra.CSV", strings.NewReader("ID,CATEGORIA\nA1,Rede\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, schema.AuditRow{ID: "A1", Category: "Rede"}, rows[0])

	buf := workbook(t, [][]any{{"id"}, {"X9"}})
	rows, err = Rows("Barra.xlsx", buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "X9", rows[0].ID)
}
