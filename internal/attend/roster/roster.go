// Package roster joins a course's students with their attendance records for
// one schedule.
package roster

import "github.com/aussiebroadwan/stepattend/pkg/attendsdk"

// StatusUnmarked is the Status of a student with no attendance record.
const StatusUnmarked = ""

// Entry is one student and, if marked, their attendance.
type Entry struct {
	Student attendsdk.UserSummary

	// Record is nil when the student has not been marked.
	Record *attendsdk.AttendanceRecord

	// Status mirrors Record.Status, or StatusUnmarked.
	Status string
}

// Marked reports whether the entry carries a status.
func (e Entry) Marked() bool {
	return e.Status != StatusUnmarked
}

// Merge returns one Entry per student, in roster order. Records are matched
// on student ID; when a student has several records the last one wins.
// Records for students not on the roster are dropped.
func Merge(students []attendsdk.UserSummary, records []attendsdk.AttendanceRecord) []Entry {
	byStudent := make(map[string]attendsdk.AttendanceRecord, len(records))
	for _, rec := range records {
		byStudent[rec.StudentID] = rec
	}

	entries := make([]Entry, 0, len(students))
	for _, st := range students {
		entry := Entry{Student: st}
		if rec, ok := byStudent[st.ID]; ok {
			entry.Record = &rec
			entry.Status = rec.Status
		}
		entries = append(entries, entry)
	}
	return entries
}

// BatchRequest builds the batch update for scheduleID from the marked entries.
// Unmarked entries are skipped.
func BatchRequest(scheduleID string, entries []Entry) attendsdk.BatchAttendanceRequest {
	req := attendsdk.BatchAttendanceRequest{
		ScheduleID:        scheduleID,
		AttendanceRecords: make([]attendsdk.BatchAttendanceRecord, 0, len(entries)),
	}
	for _, e := range entries {
		if !e.Marked() {
			continue
		}
		var notes string
		if e.Record != nil {
			notes = e.Record.Notes
		}
		req.AttendanceRecords = append(req.AttendanceRecords, attendsdk.BatchAttendanceRecord{
			StudentID: e.Student.ID,
			Status:    e.Status,
			Notes:     notes,
		})
	}
	return req
}

// Mark sets the status for studentID, returning false when the student is not
// on the roster.
func Mark(entries []Entry, studentID, status string) bool {
	for i := range entries {
		if entries[i].Student.ID == studentID {
			entries[i].Status = status
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is one of the statuses the service accepts.
func ValidStatus(s string) bool {
	switch s {
	case attendsdk.StatusPresent, attendsdk.StatusAbsent, attendsdk.StatusLate, attendsdk.StatusExcused:
		return true
	default:
		return false
	}
}
