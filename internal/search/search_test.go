package search

import (
	"testing"

	"github.com/celerix-dev/auditoria/pkg/schema"
	"github.com/stretchr/testify/assert"
)

var pair = []schema.AuditRow{
	{ID: "A1", Category: "X"},
	{ID: "B2", Category: "A1"},
}

func ids(rows []schema.AuditRow) []string {
	out := []string{}
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestApply_ModesAreOred(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"id only", Query{Text: "A1", MatchID: true}, []string{"A1"}},
		{"category only", Query{Text: "A1", MatchCategory: true}, []string{"B2"}},
		{"both", Query{Text: "A1", MatchID: true, MatchCategory: true}, []string{"A1", "B2"}},
		{"all fields", Query{Text: " a1 ", MatchAll: true}, []string{"A1", "B2"}},
		{"no mode", Query{Text: "A1"}, []string{}},
		{"blank query", Query{Text: "   "}, []string{"A1", "B2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(pair, tt.query, nil)))
		})
	}
}

func TestApply_FiltersAreAnded(t *testing.T) {
	got := Apply(pair, Query{}, FilterSet{"id": "A1", "categoria": "X"})
	assert.Equal(t, []schema.AuditRow{pair[0]}, got)

	got = Apply(pair, Query{}, FilterSet{"id": "a1", "categoria": "A1"})
	assert.Empty(t, got)
}

func TestApply_FilterCaseInsensitiveAndEmptyIgnored(t *testing.T) {
	rows := []schema.AuditRow{
		{ID: "1", Status: "Pendente"},
		{ID: "2", Status: "Resolvido"},
		{ID: "3"},
	}

	got := Apply(rows, Query{}, FilterSet{"situacao": "pend", "nome": ""})
	assert.Equal(t, []string{"1"}, ids(got))
}

func TestApply_IdentityAndPurity(t *testing.T) {
	rows := []schema.AuditRow{{ID: "C3", Category: "Z"}, pair[0], pair[1]}
	before := append([]schema.AuditRow(nil), rows...)

	assert.Equal(t, rows, Apply(rows, Query{}, FilterSet{}))

	q := Query{Text: "a", MatchAll: true}
	fs := FilterSet{"categoria": "x"}
	first := Apply(rows, q, fs)
	second := Apply(rows, q, fs)
	assert.Equal(t, first, second)
	assert.Equal(t, before, rows)
}

func TestSelect_PositionsInInput(t *testing.T) {
	rows := []schema.AuditRow{{ID: "A"}, {ID: "B"}, {ID: "AB"}}
	assert.Equal(t, []int{0, 2}, Select(rows, Query{Text: "a", MatchID: true}, nil))
}

func TestNewFilterSet(t *testing.T) {
	fs := NewFilterSet(map[string]string{"id": "A", "motivo": "x", "data": "", "bogus": "y"})
	assert.Equal(t, FilterSet{"id": "A"}, fs)
	assert.True(t, IsFilterField("data"))
	assert.False(t, IsFilterField("motivo"))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(nil))
	assert.NoError(t, Validate(map[string]string{"id": "A", "situacao": ""}))

	err := Validate(map[string]string{"id": "A", "motivo": "x", "bogus": "y"})
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Contains(t, err.Error(), `"bogus"`)
}
