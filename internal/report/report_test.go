package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestColumns(t *testing.T) {
	tests := []struct {
		name    string
		records []any
		want    []string
	}{
		{name: "Empty", records: nil, want: []string{}},
		{
			name: "Id first then sorted",
			records: []any{
				map[string]any{"name": "Ana", "id": 1},
				map[string]any{"email": "bo@agency.test", "id": 2, "active": true},
			},
			want: []string{"id", "active", "email", "name"},
		},
		{
			name:    "No id",
			records: []any{map[string]any{"b": 1, "a": 2}},
			want:    []string{"a", "b"},
		},
		{
			name:    "Scalars use the value column",
			records: []any{1, "two", map[string]any{"id": 3}},
			want:    []string{"id", "value"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Columns(tt.records))
		})
	}
}

func TestWriteExcel(t *testing.T) {
	records := []any{
		map[string]any{"id": json.Number("1"), "name": "Ana", "active": true},
		map[string]any{"id": json.Number("2"), "name": "Bo", "tags": []any{"a", "b"}, "score": json.Number("2.5")},
		"orphan",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, "employees", nil, records))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"employees"}, f.GetSheetList())

	rows, err := f.GetRows("employees")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"id", "active", "name", "score", "tags", "value"}, rows[0])
	assert.Equal(t, []string{"1", "TRUE", "Ana"}, rows[1])
	assert.Equal(t, []string{"2", "", "Bo", "2.5", `["a","b"]`}, rows[2])
	assert.Equal(t, []string{"", "", "", "", "", "orphan"}, rows[3])

	styleID, err := f.GetCellStyle("employees", "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestWriteExcel_DefaultSheetAndColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, "", []string{"name"}, []any{map[string]any{"name": "Ana", "id": 1}}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name"}, {"Ana"}}, rows)
}

func TestWriteExcel_InvalidSheetName(t *testing.T) {
	var buf bytes.Buffer
	err := WriteExcel(&buf, "bad:name", nil, []any{map[string]any{"id": 1}})
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestRows(t *testing.T) {
	records := []any{
		map[string]any{"id": json.Number("1"), "name": "Ana", "active": false, "team": map[string]any{"id": 4}},
		json.Number("2.5"),
	}
	columns := Columns(records)
	require.Equal(t, []string{"id", "active", "name", "team", "value"}, columns)

	assert.Equal(t, [][]string{
		{"1", "false", "Ana", `{"id":4}`, ""},
		{"", "", "", "", "2.5"},
	}, Rows(columns, records))
}

func TestWriteExcel_KeepsLargeIntegersAndUnicodeSheet(t *testing.T) {
	records := []any{
		map[string]any{"id": json.Number("12345678901234567890"), "ratio": json.Number("1e3")},
	}
	sheet := "empleados-de-la-agencia-de-viajes-ñ"

	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, sheet, nil, records))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 1)
	assert.Equal(t, []rune(sheet)[:maxSheetName], []rune(sheets[0]))

	rows, err := f.GetRows(sheets[0])
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "12345678901234567890", rows[1][0])
	assert.Equal(t, "1000", rows[1][1])
}

func TestWriteExcel_TruncatesMultibyteSheetNameByRunes(t *testing.T) {
	sheet := strings.Repeat("é", 40)

	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, sheet, nil, []any{map[string]any{"id": 1}}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{strings.Repeat("é", maxSheetName)}, f.GetSheetList())
}
