package service

import (
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/nastava-api/internal/dto"
)

// SubjectKeyKind tells which attribute identifies a subject during merging.
type SubjectKeyKind string

const (
	SubjectKeyID   SubjectKeyKind = "id"
	SubjectKeyCode SubjectKeyKind = "code"
	SubjectKeyName SubjectKeyKind = "name"
)

// SubjectKey deduplicates a subject taught under several programs.
type SubjectKey struct {
	Kind  SubjectKeyKind
	Value string
}

// SubjectKeyOf prefers the subject id, then the normalised code, then the normalised name.
func SubjectKeyOf(row dto.FlatLoadRow) SubjectKey {
	if id := strings.TrimSpace(row.SubjectID); id != "" {
		return SubjectKey{Kind: SubjectKeyID, Value: id}
	}
	if row.SubjectCode != nil {
		if code := strings.ToUpper(strings.TrimSpace(*row.SubjectCode)); code != "" {
			return SubjectKey{Kind: SubjectKeyCode, Value: code}
		}
	}
	return SubjectKey{Kind: SubjectKeyName, Value: strings.ToLower(strings.Join(strings.Fields(row.SubjectName), " "))}
}

// orderedMap remembers the order in which keys were first inserted.
type orderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

func newOrderedMap[K comparable, V any]() *orderedMap[K, V] {
	return &orderedMap[K, V]{values: make(map[K]V)}
}

func (m *orderedMap[K, V]) get(key K) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *orderedMap[K, V]) set(key K, value V) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *orderedMap[K, V]) each(fn func(K, V)) {
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

type intSet map[int]struct{}

func (s intSet) label() string {
	values := make([]int, 0, len(s))
	for v := range s {
		values = append(values, v)
	}
	sort.Ints(values)
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

type lineAccumulator struct {
	line      dto.LoadLine
	years     intSet
	semesters intSet
}

func newLineAccumulator(row dto.FlatLoadRow) *lineAccumulator {
	acc := &lineAccumulator{
		line: dto.LoadLine{
			SubjectID:   row.SubjectID,
			SubjectCode: row.SubjectCode,
			SubjectName: row.SubjectName,
			Programs:    make(map[string]bool, len(row.Programs)),
		},
		years:     intSet{},
		semesters: intSet{},
	}
	return acc
}

func (a *lineAccumulator) add(row dto.FlatLoadRow) {
	for program, member := range row.Programs {
		a.line.Programs[program] = a.line.Programs[program] || member
	}
	if row.Year > 0 {
		a.years[row.Year] = struct{}{}
	}
	if row.Semester != nil {
		a.semesters[*row.Semester] = struct{}{}
	}
	a.line.Lecture += row.Lecture
	a.line.Exercise += row.Exercise
	a.line.Combined += row.Combined
	a.line.Weighted += row.Weighted
	a.line.Weekly += row.Weekly
	// last non-null indicator wins, so the result follows input order
	if row.NormMet != nil {
		met := *row.NormMet
		a.line.NormMet = &met
	}
	a.line.MergedRowCount++
}

func (a *lineAccumulator) finish() dto.LoadLine {
	a.line.Years = a.years.label()
	a.line.Semesters = a.semesters.label()
	return a.line
}

type professorGroup struct {
	load  dto.ProfessorLoad
	lines *orderedMap[SubjectKey, *lineAccumulator]
	flat  []*lineAccumulator
}

func professorKey(row dto.FlatLoadRow) string {
	if row.ProfessorID != "" {
		return row.ProfessorID
	}
	return strings.TrimSpace(row.ProfessorName)
}

func groupByProfessor(rows []dto.FlatLoadRow, merge bool) []dto.ProfessorLoad {
	groups := newOrderedMap[string, *professorGroup]()

	for _, row := range rows {
		key := professorKey(row)
		group, ok := groups.get(key)
		if !ok {
			group = &professorGroup{
				load: dto.ProfessorLoad{
					ProfessorID:   row.ProfessorID,
					ProfessorName: row.ProfessorName,
					Title:         row.Title,
					Engagement:    row.Engagement,
				},
				lines: newOrderedMap[SubjectKey, *lineAccumulator](),
			}
			groups.set(key, group)
		}

		if !merge {
			acc := newLineAccumulator(row)
			acc.add(row)
			group.flat = append(group.flat, acc)
			continue
		}

		subject := SubjectKeyOf(row)
		acc, ok := group.lines.get(subject)
		if !ok {
			acc = newLineAccumulator(row)
			group.lines.set(subject, acc)
		}
		acc.add(row)
	}

	result := make([]dto.ProfessorLoad, 0, len(groups.keys))
	groups.each(func(_ string, group *professorGroup) {
		load := group.load
		load.Lines = make([]dto.LoadLine, 0)
		if merge {
			group.lines.each(func(_ SubjectKey, acc *lineAccumulator) {
				load.Lines = append(load.Lines, acc.finish())
			})
		} else {
			for _, acc := range group.flat {
				load.Lines = append(load.Lines, acc.finish())
			}
		}
		result = append(result, load)
	})
	return result
}

// AggregateFacultyScoped groups rows by professor and keeps every row as its own line,
// so a subject taught in two programs appears twice.
func AggregateFacultyScoped(rows []dto.FlatLoadRow) []dto.ProfessorLoad {
	return groupByProfessor(rows, false)
}

// AggregateSummary groups rows by professor and merges rows of the same subject:
// program flags are OR-ed, years and semesters unioned and hours summed.
func AggregateSummary(rows []dto.FlatLoadRow) []dto.ProfessorLoad {
	return groupByProfessor(rows, true)
}

// FilterBucket returns the rows that belong to bucket. SUMMARY keeps every row; a
// faculty bucket keeps rows flagged for any of the faculty's programs.
func FilterBucket(rows []dto.FlatLoadRow, bucket string, facultyPrograms map[string][]string) []dto.FlatLoadRow {
	if bucket == dto.SummaryBucket {
		return rows
	}
	programs := facultyPrograms[bucket]
	filtered := make([]dto.FlatLoadRow, 0, len(rows))
	for _, row := range rows {
		for _, program := range programs {
			if row.Programs[program] {
				filtered = append(filtered, row)
				break
			}
		}
	}
	return filtered
}

// BuildLoadReport renders one bucket: merged for SUMMARY, faculty scoped otherwise.
func BuildLoadReport(rows []dto.FlatLoadRow, bucket string, programs []string, facultyPrograms map[string][]string) dto.LoadReport {
	report := dto.LoadReport{Bucket: bucket, Programs: programs}
	selected := FilterBucket(rows, bucket, facultyPrograms)
	if bucket == dto.SummaryBucket {
		report.Merged = true
		report.Professors = AggregateSummary(selected)
		return report
	}
	report.Programs = facultyPrograms[bucket]
	report.Professors = AggregateFacultyScoped(selected)
	return report
}
