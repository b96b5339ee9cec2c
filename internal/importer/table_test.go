package importer

import (
	"strings"
	"testing"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadXLSX_FirstSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"id", "name", "Progress: Design"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"1", "Build", 45}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := ReadXLSX(buf, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "Progress: Design"}, table.Header)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "45", table.Cell(0, 2))

	res, err := Convert(table, design)
	require.NoError(t, err)
	assert.Equal(t, 45, res.Tasks[0].DepartmentProgress["des"])
}

func TestReadXLSX_UnknownSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = ReadXLSX(buf, "Missing")
	assert.Error(t, err)
}

func TestReadTable_RejectsNonTabular(t *testing.T) {
	_, err := ReadTable(strings.NewReader("{}"), domain.FormatJSON)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
