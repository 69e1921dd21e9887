package service

import (
	"strings"

	"github.com/noah-isme/nastava-api/internal/models"
)

// Overlaps reports whether the half-open minute intervals [aStart,aEnd) and
// [bStart,bEnd) intersect. Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return !(aEnd <= bStart || aStart >= bEnd)
}

// WeekTypesConflict reports whether two slots with the given week types run in
// the same week at least once.
func WeekTypesConflict(a, b models.WeekType) bool {
	return a == models.WeekAll || b == models.WeekAll || a == b
}

// CompatibleWeekTypes lists the existing week types a new slot of type w can collide with.
func CompatibleWeekTypes(w models.WeekType) []models.WeekType {
	switch w {
	case models.WeekA:
		return []models.WeekType{models.WeekAll, models.WeekA}
	case models.WeekB:
		return []models.WeekType{models.WeekAll, models.WeekB}
	default:
		return []models.WeekType{models.WeekAll, models.WeekA, models.WeekB}
	}
}

func normalizeGroup(group *string) string {
	if group == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*group))
}

func sameRoom(candidate models.ScheduleEntry, existing models.ScheduleEntry) bool {
	if candidate.IsOnline || existing.IsOnline {
		return false
	}
	if candidate.RoomID == nil || existing.RoomID == nil {
		return false
	}
	return *candidate.RoomID == *existing.RoomID
}

// DetectConflicts buckets the existing entries that collide with candidate.
// Entries from another term or day, outside the time window or on alternating
// weeks are ignored. Online slots never occupy a room and a candidate without a
// group is not checked for group collisions.
func DetectConflicts(candidate models.ScheduleEntry, existing []models.ScheduleEntryDetail) models.ScheduleConflictSet {
	set := models.ScheduleConflictSet{
		Room:      []models.ScheduleEntryDetail{},
		Professor: []models.ScheduleEntryDetail{},
		Group:     []models.ScheduleEntryDetail{},
	}
	group := normalizeGroup(candidate.GroupName)

	for _, other := range existing {
		entry := other.ScheduleEntry
		if entry.ID != "" && entry.ID == candidate.ID {
			continue
		}
		if entry.TermID != candidate.TermID || entry.DayOfWeek != candidate.DayOfWeek {
			continue
		}
		if !Overlaps(candidate.StartMin, candidate.EndMin, entry.StartMin, entry.EndMin) {
			continue
		}
		if !WeekTypesConflict(candidate.WeekType, entry.WeekType) {
			continue
		}

		if sameRoom(candidate, entry) {
			set.Room = append(set.Room, other)
		}
		if entry.ProfessorID == candidate.ProfessorID {
			set.Professor = append(set.Professor, other)
		}
		if group != "" && normalizeGroup(entry.GroupName) == group {
			set.Group = append(set.Group, other)
		}
	}
	return set
}
