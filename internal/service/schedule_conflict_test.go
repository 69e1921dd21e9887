package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/nastava-api/internal/models"
)

func strPtr(s string) *string { return &s }

func entryAt(id, professor, room string, start, end int, week models.WeekType) models.ScheduleEntryDetail {
	e := models.ScheduleEntry{
		ID:          id,
		TermID:      "term-1",
		CourseID:    "course-" + id,
		ProfessorID: professor,
		DayOfWeek:   1,
		StartMin:    start,
		EndMin:      end,
		WeekType:    week,
	}
	if room != "" {
		e.RoomID = strPtr(room)
	}
	return models.ScheduleEntryDetail{ScheduleEntry: e}
}

func TestOverlapsSymmetryAndTouching(t *testing.T) {
	for a := 0; a < 12; a++ {
		for b := a + 1; b <= 12; b++ {
			for c := 0; c < 12; c++ {
				for d := c + 1; d <= 12; d++ {
					assert.Equal(t, Overlaps(a, b, c, d), Overlaps(c, d, a, b), "[%d,%d) vs [%d,%d)", a, b, c, d)
				}
			}
			for d := b + 1; d <= 13; d++ {
				assert.False(t, Overlaps(a, b, b, d), "touching [%d,%d) [%d,%d)", a, b, b, d)
			}
		}
	}

	assert.True(t, Overlaps(480, 600, 540, 660))
	assert.True(t, Overlaps(480, 600, 500, 520))
	assert.False(t, Overlaps(480, 600, 600, 660))
}

func TestWeekTypesConflict(t *testing.T) {
	cases := []struct {
		a, b models.WeekType
		want bool
	}{
		{models.WeekAll, models.WeekA, true},
		{models.WeekAll, models.WeekB, true},
		{models.WeekAll, models.WeekAll, true},
		{models.WeekA, models.WeekB, false},
		{models.WeekB, models.WeekA, false},
		{models.WeekA, models.WeekA, true},
		{models.WeekA, models.WeekAll, true},
		{models.WeekB, models.WeekB, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, WeekTypesConflict(tc.a, tc.b), "%s vs %s", tc.a, tc.b)
	}
}

func TestCompatibleWeekTypesMatchesPredicate(t *testing.T) {
	all := []models.WeekType{models.WeekAll, models.WeekA, models.WeekB}
	for _, candidate := range all {
		compatible := CompatibleWeekTypes(candidate)
		for _, existing := range all {
			assert.Equal(t, WeekTypesConflict(candidate, existing), containsWeek(compatible, existing), "%s/%s", candidate, existing)
		}
	}
}

func containsWeek(list []models.WeekType, w models.WeekType) bool {
	for _, item := range list {
		if item == w {
			return true
		}
	}
	return false
}

func TestDetectConflictsRoom(t *testing.T) {
	existing := []models.ScheduleEntryDetail{entryAt("e1", "prof-p", "room-r", 480, 600, models.WeekAll)}
	candidate := entryAt("", "prof-q", "room-r", 540, 660, models.WeekAll).ScheduleEntry

	set := DetectConflicts(candidate, existing)
	assert.Len(t, set.Room, 1)
	assert.Empty(t, set.Professor)
	assert.Empty(t, set.Group)
	assert.False(t, set.Empty())
}

func TestDetectConflictsOnlineBypassesRoomOnly(t *testing.T) {
	existing := []models.ScheduleEntryDetail{entryAt("e1", "prof-p", "room-r", 480, 600, models.WeekAll)}

	online := entryAt("", "prof-q", "room-r", 540, 660, models.WeekAll).ScheduleEntry
	online.IsOnline = true
	assert.True(t, DetectConflicts(online, existing).Empty())

	sameProfessor := online
	sameProfessor.ProfessorID = "prof-p"
	set := DetectConflicts(sameProfessor, existing)
	assert.Empty(t, set.Room)
	assert.Len(t, set.Professor, 1)
}

func TestDetectConflictsExistingOnlineDoesNotHoldRoom(t *testing.T) {
	busy := entryAt("e1", "prof-p", "room-r", 480, 600, models.WeekAll)
	busy.IsOnline = true
	candidate := entryAt("", "prof-q", "room-r", 480, 600, models.WeekAll).ScheduleEntry

	assert.True(t, DetectConflicts(candidate, []models.ScheduleEntryDetail{busy}).Empty())
}

func TestDetectConflictsWeekParity(t *testing.T) {
	existingA := entryAt("a", "prof-p", "room-r", 480, 600, models.WeekA)
	existingB := entryAt("b", "prof-p", "room-r", 480, 600, models.WeekB)
	existingAll := entryAt("all", "prof-p", "room-r", 480, 600, models.WeekAll)

	candidate := entryAt("", "prof-p", "room-r", 480, 600, models.WeekA).ScheduleEntry
	assert.True(t, DetectConflicts(candidate, []models.ScheduleEntryDetail{existingB}).Empty())
	assert.Len(t, DetectConflicts(candidate, []models.ScheduleEntryDetail{existingA}).Room, 1)
	assert.Len(t, DetectConflicts(candidate, []models.ScheduleEntryDetail{existingAll}).Room, 1)

	candidate.WeekType = models.WeekAll
	set := DetectConflicts(candidate, []models.ScheduleEntryDetail{existingA, existingB, existingAll})
	assert.Len(t, set.Room, 3)
	assert.Len(t, set.Professor, 3)
}

func TestDetectConflictsGroup(t *testing.T) {
	existing := entryAt("e1", "prof-p", "room-r", 480, 600, models.WeekAll)
	existing.GroupName = strPtr("  Grupa 1 ")

	candidate := entryAt("", "prof-q", "room-s", 500, 560, models.WeekAll).ScheduleEntry
	assert.True(t, DetectConflicts(candidate, []models.ScheduleEntryDetail{existing}).Empty())

	candidate.GroupName = strPtr("grupa 1")
	set := DetectConflicts(candidate, []models.ScheduleEntryDetail{existing})
	assert.Len(t, set.Group, 1)
	assert.Empty(t, set.Room)

	candidate.GroupName = strPtr("   ")
	assert.True(t, DetectConflicts(candidate, []models.ScheduleEntryDetail{existing}).Empty())
}

func TestDetectConflictsIgnoresOtherDayAndTouching(t *testing.T) {
	otherDay := entryAt("e1", "prof-p", "room-r", 480, 600, models.WeekAll)
	otherDay.DayOfWeek = 2
	touching := entryAt("e2", "prof-p", "room-r", 600, 720, models.WeekAll)
	otherTerm := entryAt("e3", "prof-p", "room-r", 480, 600, models.WeekAll)
	otherTerm.TermID = "term-2"

	candidate := entryAt("", "prof-p", "room-r", 480, 600, models.WeekAll).ScheduleEntry
	assert.True(t, DetectConflicts(candidate, []models.ScheduleEntryDetail{otherDay, touching, otherTerm}).Empty())
}
