package report

import (
	"fmt"
	"testing"

	"github.com/celerix-dev/auditoria/pkg/schema"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	rows := []schema.AuditRow{
		{Status: "Pendente", Category: "Rede"},
		{Status: "Resolvido", Category: "Rede"},
		{Status: "Pendente"},
		{Category: "Impressora"},
	}

	s := Summarize(rows)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, []Count{{"Pendente", 2}, {"Resolvido", 1}, {Unset, 1}}, s.ByStatus)
	assert.Equal(t, []Count{{"Rede", 2}, {Unset, 1}, {"Impressora", 1}}, s.ByCategory)
}

func TestSummarize_IntegerLabelsFirst(t *testing.T) {
	var rows []schema.AuditRow
	for _, c := range []string{"Rede", "10", "2", "07", "Rede", "2", "-1", "4294967295", "0"} {
		rows = append(rows, schema.AuditRow{Category: c})
	}

	s := Summarize(rows)
	assert.Equal(t, []Count{
		{"0", 1}, {"2", 2}, {"10", 1},
		{"Rede", 2}, {"07", 1}, {"-1", 1}, {"4294967295", 1},
	}, s.ByCategory)
}

func TestSummarize_CapsCategories(t *testing.T) {
	var rows []schema.AuditRow
	for i := 0; i < 12; i++ {
		rows = append(rows, schema.AuditRow{Category: fmt.Sprintf("C%02d", i)})
	}

	s := Summarize(rows)
	assert.Len(t, s.ByCategory, MaxCategories)
	assert.Equal(t, "C00", s.ByCategory[0].Label)
	assert.Equal(t, "C09", s.ByCategory[9].Label)
	assert.Equal(t, []Count{{Unset, 12}}, s.ByStatus)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Total)
	assert.Empty(t, s.ByStatus)
	assert.Empty(t, s.ByCategory)
}
