package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/importer"
	"github.com/alexanderramin/wbsctl/internal/testutil"
	"github.com/alexanderramin/wbsctl/internal/wbs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

const baseline = "2025-01-16"

func exportProject(t *testing.T) *domain.Project {
	t.Helper()
	p := testutil.NewTestProject("Export",
		testutil.WithDepartment("des", "Design", 60),
		testutil.WithDepartment("eng", "Engineering", 40),
		testutil.WithTasks(
			testutil.NewTestTask("1", "", testutil.WithName("A")),
			testutil.NewTestTask("1.1", "1", testutil.WithName("A1"), testutil.WithAssignee("Kim"),
				testutil.WithProgress("des", 80), testutil.WithProgress("eng", 40)),
			testutil.NewTestTask("1.2", "1", testutil.WithName("A2"), testutil.WithStatus(domain.StatusInProgress),
				testutil.WithProgress("des", 20), testutil.WithProgress("eng", 0)),
			testutil.NewTestTask("2", "", testutil.WithName("B"), testutil.WithDates("2025-02-01", "2025-02-28"),
				testutil.WithProgress("des", 0), testutil.WithProgress("eng", 0)),
		),
	)
	require.Empty(t, wbs.Refresh(p))
	return p
}

func column(table *importer.Table, name string) int {
	for i, h := range table.Header {
		if h == name {
			return i
		}
	}
	return -1
}

func TestRows_HeaderAndOrder(t *testing.T) {
	table := Rows(exportProject(t), Options{Baseline: baseline, Indent: true})

	assert.Equal(t, importer.TaskColumns, table.Header[:len(importer.TaskColumns)])
	assert.Equal(t, []string{"Progress: Design", "Progress: Engineering"}, table.Header[9:11])
	assert.Equal(t, importer.DerivedColumns, table.Header[11:])

	require.Len(t, table.Rows, 4)
	names := column(table, importer.ColName)
	assert.Equal(t, "A", table.Rows[0][names])
	assert.Equal(t, "  A1", table.Rows[1][names])
	assert.Equal(t, "1", table.Rows[1][column(table, importer.ColParentID)])
	assert.Equal(t, "B", table.Rows[3][names])
}

func TestRows_DerivedColumns(t *testing.T) {
	table := Rows(exportProject(t), Options{Baseline: baseline})
	row := table.Rows[1]
	assert.Equal(t, "50", row[column(table, importer.ColPlannedProgress)])
	assert.Equal(t, "64", row[column(table, importer.ColOverallProgress)])
	assert.Equal(t, "14", row[column(table, importer.ColGap)])
	assert.Equal(t, "31", row[column(table, importer.ColDurationDays)])

	plain := Rows(exportProject(t), Options{OmitDerived: true})
	assert.Len(t, plain.Header, 11)
}

func assertSameTasks(t *testing.T, want, got []domain.Task) {
	t.Helper()
	require.Equal(t, testutil.TaskIDs(want), testutil.TaskIDs(got))
	for i := range want {
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.Equal(t, want[i].ParentID, got[i].ParentID)
		assert.Equal(t, want[i].StartDate, got[i].StartDate)
		assert.Equal(t, want[i].EndDate, got[i].EndDate)
		assert.Equal(t, want[i].Status, got[i].Status)
		assert.Equal(t, want[i].Assignee, got[i].Assignee)
		assert.Equal(t, want[i].DepartmentProgress, got[i].DepartmentProgress, want[i].ID)
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	p := exportProject(t)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, p, domain.FormatCSV, Options{Baseline: baseline, Indent: true}))
	assert.True(t, strings.HasPrefix(buf.String(), "id,parentId,name,"))

	table, err := importer.ReadCSV(&buf)
	require.NoError(t, err)
	res, err := importer.Convert(table, p.Departments)
	require.NoError(t, err)

	assert.Empty(t, res.Warnings)
	assert.Equal(t, p.Departments, res.Departments)
	assertSameTasks(t, p.Tasks, res.Tasks)
}

func TestXLSX_RoundTripWithFrozenHeader(t *testing.T) {
	p := exportProject(t)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, p, domain.FormatXLSX, Options{Baseline: baseline}))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	panes, err := f.GetPanes(SheetName)
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)

	table, err := importer.ReadXLSX(bytes.NewReader(buf.Bytes()), SheetName)
	require.NoError(t, err)
	res, err := importer.Convert(table, p.Departments)
	require.NoError(t, err)
	assertSameTasks(t, p.Tasks, res.Tasks)
}

func TestXLSX_TextCellsKeepLeadingZeros(t *testing.T) {
	p := exportProject(t)
	p.Tasks[1].Assignee = "007"
	p.Tasks[1].Notes = "0042"
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, p, domain.FormatXLSX, Options{Baseline: baseline}))

	table, err := importer.ReadXLSX(bytes.NewReader(buf.Bytes()), SheetName)
	require.NoError(t, err)
	row := table.Rows[1]
	assert.Equal(t, "007", row[column(table, importer.ColAssignee)])
	assert.Equal(t, "0042", row[column(table, importer.ColNotes)])
	assert.Equal(t, "80", row[column(table, "Progress: Design")])
	assert.Equal(t, "31", row[column(table, importer.ColDurationDays)])
}

func TestNumericColumn(t *testing.T) {
	assert.True(t, importer.NumericColumn("Progress: Design"))
	assert.True(t, importer.NumericColumn(importer.ColGap))
	assert.False(t, importer.NumericColumn(importer.ColAssignee))
	assert.False(t, importer.NumericColumn(importer.ColID))
}

func TestJSON_ReloadsAsDocument(t *testing.T) {
	p := exportProject(t)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, p, domain.FormatJSON, Options{}))

	loaded, warnings, err := importer.LoadProjectDocument(&buf)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, p.Name, loaded.Name)
	assert.Equal(t, p.Departments, loaded.Departments)
	assertSameTasks(t, p.Tasks, loaded.Tasks)
}

func TestYAML_Snapshot(t *testing.T) {
	p := exportProject(t)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, p, domain.FormatYAML, Options{Baseline: baseline}))

	var doc struct {
		Project struct {
			Name string `yaml:"name"`
		} `yaml:"project"`
		Summary struct {
			Baseline   string `yaml:"baseline"`
			TotalTasks int    `yaml:"totalTasks"`
		} `yaml:"summary"`
		Metrics []struct {
			TaskID string `yaml:"taskId"`
			Gap    int    `yaml:"gap"`
		} `yaml:"metrics"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "Export", doc.Project.Name)
	assert.Equal(t, baseline, doc.Summary.Baseline)
	assert.Equal(t, 4, doc.Summary.TotalTasks)
	require.Len(t, doc.Metrics, 4)
	assert.Equal(t, "1.1", doc.Metrics[1].TaskID)
	assert.Equal(t, 14, doc.Metrics[1].Gap)
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, exportProject(t), domain.Format("pdf"), Options{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
