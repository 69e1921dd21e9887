package service

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/noah-isme/nastava-api/internal/dto"
	"github.com/noah-isme/nastava-api/internal/models"
)

// DefaultTeachingWeeks is the semester length used for weekly figures.
const DefaultTeachingWeeks = 15

// InferMode derives the teaching mode from a row's totals. Both zero falls back to PV.
func InferMode(lecture, exercise int) models.TeachingMode {
	switch {
	case lecture > 0 && exercise == 0:
		return models.ModeLecture
	case lecture == 0 && exercise > 0:
		return models.ModeExercise
	default:
		return models.ModeBoth
	}
}

// NormalizeForSave zeroes the side of a row the chosen mode does not teach.
func NormalizeForSave(mode models.TeachingMode, lecture, exercise int) (int, int) {
	if lecture < 0 {
		lecture = 0
	}
	if exercise < 0 {
		exercise = 0
	}
	switch mode {
	case models.ModeExercise:
		lecture = 0
	case models.ModeLecture:
		exercise = 0
	}
	return lecture, exercise
}

// CoerceHours turns a loosely typed hour value into a non-negative integer.
// Invalid input yields 0 and fractions are truncated.
func CoerceHours(raw interface{}) int {
	var f float64
	switch v := raw.(type) {
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 || f > math.MaxInt32 {
		return 0
	}
	return int(math.Trunc(f))
}

// HourValue is an hour total sent by a client either as a number or as a numeric string.
type HourValue int

// UnmarshalJSON never fails; unusable values become 0.
func (h *HourValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		*h = 0
		return nil
	}
	*h = HourValue(CoerceHours(raw))
	return nil
}

// Int returns the value as a plain int.
func (h HourValue) Int() int {
	return int(h)
}

// ComputeCoverage splits a plan's hours into in-house (RO) and external (VS)
// buckets. Rows without a professor, or whose professor has no engagement,
// only count towards Total.
func ComputeCoverage(rows []models.PRNRowDetail, weeks int) dto.CoverageSummary {
	if weeks <= 0 {
		weeks = DefaultTeachingWeeks
	}
	summary := dto.CoverageSummary{Weeks: weeks}

	for _, row := range rows {
		lecture, exercise := row.LectureTotal, row.ExerciseTotal
		addToBucket(&summary.Total, lecture, exercise)

		if row.ProfessorID == nil || *row.ProfessorID == "" {
			summary.Unassigned++
			continue
		}
		if row.ProfessorEngagement == nil {
			continue
		}
		switch *row.ProfessorEngagement {
		case models.EngagementEmployed:
			addToBucket(&summary.RO, lecture, exercise)
		case models.EngagementExternal:
			addToBucket(&summary.VS, lecture, exercise)
		}
	}

	for _, bucket := range []*dto.CoverageBucket{&summary.RO, &summary.VS, &summary.Total} {
		finishBucket(bucket, summary.Total.Combined, weeks)
	}
	return summary
}

func addToBucket(bucket *dto.CoverageBucket, lecture, exercise int) {
	bucket.Lecture += lecture
	bucket.Exercise += exercise
	bucket.Combined += lecture + exercise
	bucket.Rows++
}

func finishBucket(bucket *dto.CoverageBucket, overall, weeks int) {
	w := float64(weeks)
	bucket.WeeklyLecture = float64(bucket.Lecture) / w
	bucket.WeeklyExercise = float64(bucket.Exercise) / w
	bucket.WeeklyCombined = float64(bucket.Combined) / w
	if overall == 0 {
		bucket.Share = 0
		return
	}
	bucket.Share = float64(bucket.Combined) / float64(overall) * 100
}
