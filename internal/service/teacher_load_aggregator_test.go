package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nastava-api/internal/dto"
)

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

func loadRow(professor, subjectID, program string, year, semester int, lecture float64) dto.FlatLoadRow {
	return dto.FlatLoadRow{
		ProfessorID:   professor,
		ProfessorName: "Prof " + professor,
		SubjectID:     subjectID,
		SubjectName:   "Subject " + subjectID,
		Programs:      map[string]bool{"RI": program == "RI", "EE": program == "EE", "MAS": program == "MAS"},
		Year:          year,
		Semester:      intPtr(semester),
		Lecture:       lecture,
		Combined:      lecture,
		Weighted:      lecture,
		Weekly:        lecture / 15,
	}
}

func TestAggregateSummaryMergesJointSubject(t *testing.T) {
	rows := []dto.FlatLoadRow{
		loadRow("p1", "s1", "RI", 1, 1, 20),
		loadRow("p1", "s1", "EE", 2, 3, 20),
	}

	summary := AggregateSummary(rows)
	require.Len(t, summary, 1)
	require.Len(t, summary[0].Lines, 1)
	line := summary[0].Lines[0]
	assert.Equal(t, 40.0, line.Lecture)
	assert.True(t, line.Programs["RI"])
	assert.True(t, line.Programs["EE"])
	assert.False(t, line.Programs["MAS"])
	assert.Equal(t, "1, 2", line.Years)
	assert.Equal(t, "1, 3", line.Semesters)
	assert.Equal(t, 2, line.MergedRowCount)

	scoped := AggregateFacultyScoped(rows)
	require.Len(t, scoped, 1)
	require.Len(t, scoped[0].Lines, 2)
	assert.Equal(t, 20.0, scoped[0].Lines[0].Lecture)
	assert.True(t, scoped[0].Lines[0].Programs["RI"])
	assert.False(t, scoped[0].Lines[0].Programs["EE"])
}

func TestAggregatePreservesFirstSeenOrder(t *testing.T) {
	rows := []dto.FlatLoadRow{
		loadRow("p2", "s9", "RI", 1, 1, 10),
		loadRow("p1", "s3", "RI", 1, 1, 10),
		loadRow("p2", "s1", "RI", 1, 1, 10),
		loadRow("p2", "s9", "EE", 1, 2, 10),
	}

	summary := AggregateSummary(rows)
	require.Len(t, summary, 2)
	assert.Equal(t, "p2", summary[0].ProfessorID)
	assert.Equal(t, "p1", summary[1].ProfessorID)
	require.Len(t, summary[0].Lines, 2)
	assert.Equal(t, "s9", summary[0].Lines[0].SubjectID)
	assert.Equal(t, "s1", summary[0].Lines[1].SubjectID)
}

func TestSubjectKeyFallbacks(t *testing.T) {
	code := "  ri-101 "
	assert.Equal(t, SubjectKey{Kind: SubjectKeyID, Value: "abc"}, SubjectKeyOf(dto.FlatLoadRow{SubjectID: "abc", SubjectCode: &code}))
	assert.Equal(t, SubjectKey{Kind: SubjectKeyCode, Value: "RI-101"}, SubjectKeyOf(dto.FlatLoadRow{SubjectCode: &code}))
	assert.Equal(t, SubjectKey{Kind: SubjectKeyName, Value: "linearna algebra"}, SubjectKeyOf(dto.FlatLoadRow{SubjectName: "  Linearna   Algebra "}))
}

func TestAggregateSummaryMergesByNameWithoutID(t *testing.T) {
	a := loadRow("p1", "", "RI", 1, 1, 10)
	a.SubjectName = "Fizika  I"
	b := loadRow("p1", "", "EE", 1, 1, 5)
	b.SubjectName = "fizika i"

	summary := AggregateSummary([]dto.FlatLoadRow{a, b})
	require.Len(t, summary[0].Lines, 1)
	assert.Equal(t, 15.0, summary[0].Lines[0].Lecture)
	assert.Equal(t, "Fizika  I", summary[0].Lines[0].SubjectName)
}

func TestAggregateSummaryNormMetLastNonNull(t *testing.T) {
	a := loadRow("p1", "s1", "RI", 1, 1, 10)
	a.NormMet = boolPtr(false)
	b := loadRow("p1", "s1", "EE", 1, 1, 10)
	b.NormMet = boolPtr(true)
	c := loadRow("p1", "s1", "MAS", 1, 1, 10)

	summary := AggregateSummary([]dto.FlatLoadRow{a, b, c})
	require.NotNil(t, summary[0].Lines[0].NormMet)
	assert.True(t, *summary[0].Lines[0].NormMet)

	summary = AggregateSummary([]dto.FlatLoadRow{c})
	assert.Nil(t, summary[0].Lines[0].NormMet)
}

func TestFilterBucketAndReport(t *testing.T) {
	rows := []dto.FlatLoadRow{
		loadRow("p1", "s1", "RI", 1, 1, 20),
		loadRow("p1", "s1", "EE", 1, 1, 20),
		loadRow("p2", "s2", "MAS", 1, 1, 10),
	}
	faculties := map[string][]string{"ETF": {"RI", "EE"}, "MF": {"MAS"}}

	assert.Len(t, FilterBucket(rows, dto.SummaryBucket, faculties), 3)
	assert.Len(t, FilterBucket(rows, "ETF", faculties), 2)
	assert.Len(t, FilterBucket(rows, "MF", faculties), 1)
	assert.Empty(t, FilterBucket(rows, "unknown", faculties))

	summary := BuildLoadReport(rows, dto.SummaryBucket, []string{"RI", "EE", "MAS"}, faculties)
	assert.True(t, summary.Merged)
	require.Len(t, summary.Professors, 2)
	assert.Len(t, summary.Professors[0].Lines, 1)

	etf := BuildLoadReport(rows, "ETF", []string{"RI", "EE", "MAS"}, faculties)
	assert.False(t, etf.Merged)
	assert.Equal(t, []string{"RI", "EE"}, etf.Programs)
	require.Len(t, etf.Professors, 1)
	assert.Len(t, etf.Professors[0].Lines, 2)
}
