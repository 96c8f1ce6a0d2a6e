package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlassist/internal/adapter"
)

func TestReadCSVInfersTypes(t *testing.T) {
	input := "Freelancer_ID,Earnings_USD,Job_Category,Rating\n" +
		"1,5139.30,Graphic Design,4\n" +
		"2,4976,Web Development,\n" +
		"3,,Data Entry,5\n"

	frame, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []adapter.ColumnDef{
		{Name: "Freelancer_ID", Type: adapter.ColumnInteger},
		{Name: "Earnings_USD", Type: adapter.ColumnReal},
		{Name: "Job_Category", Type: adapter.ColumnText},
		{Name: "Rating", Type: adapter.ColumnInteger},
	}, frame.Columns)

	require.Len(t, frame.Rows, 3)
	assert.Equal(t, []any{int64(1), 5139.30, "Graphic Design", int64(4)}, frame.Rows[0])
	assert.Equal(t, []any{int64(2), 4976.0, "Web Development", nil}, frame.Rows[1])
	assert.Nil(t, frame.Rows[2][1])
}

func TestReadCSVEmptyColumnIsText(t *testing.T) {
	frame, err := ReadCSV(strings.NewReader("a,b\n1,\n2,\n"))
	require.NoError(t, err)
	assert.Equal(t, adapter.ColumnText, frame.Columns[1].Type)
}

func TestReadCSVNonFiniteWordsStayText(t *testing.T) {
	frame, err := ReadCSV(strings.NewReader("name,code\nNan,1\nInf,2\nInfinity,3\n"))
	require.NoError(t, err)

	assert.Equal(t, adapter.ColumnText, frame.Columns[0].Type)
	assert.Equal(t, adapter.ColumnInteger, frame.Columns[1].Type)
	assert.Equal(t, []any{"Nan", int64(1)}, frame.Rows[0])
	assert.Equal(t, "Inf", frame.Rows[1][0])
}

func TestReadCSVHeaderOnly(t *testing.T) {
	frame, err := ReadCSV(strings.NewReader("a,b\n"))
	require.NoError(t, err)
	assert.Len(t, frame.Columns, 2)
	assert.Empty(t, frame.Rows)
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"duplicate header", "a,A\n1,2\n"},
		{"blank header", "a,\n1,2\n"},
		{"ragged row", "a,b\n1,2\n3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestReadCSVStripsBOM(t *testing.T) {
	frame, err := ReadCSV(strings.NewReader("\ufeffid,name\n1,x\n"))
	require.NoError(t, err)
	assert.Equal(t, "id", frame.Columns[0].Name)
}
