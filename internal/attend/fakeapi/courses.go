package fakeapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aussiebroadwan/stepattend/pkg/attendsdk"
	"github.com/aussiebroadwan/stepattend/pkg/httpx"
	"github.com/aussiebroadwan/stepattend/pkg/idx"
)

// AddCourse registers a course taught by teacherID and enrols studentIDs.
func (s *Server) AddCourse(course attendsdk.Course, studentIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	course.StudentIDs = append([]string(nil), studentIDs...)
	s.courses[course.ID] = course
	s.enrolments[course.ID] = course.StudentIDs
}

// AddAttendance stores a record as if it had been marked earlier.
func (s *Server) AddAttendance(rec attendsdk.AttendanceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attendance[rec.ScheduleID] = append(s.attendance[rec.ScheduleID], rec)
}

// Attendance returns every record stored for scheduleID, oldest first.
func (s *Server) Attendance(scheduleID string) []attendsdk.AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]attendsdk.AttendanceRecord(nil), s.attendance[scheduleID]...)
}

func (s *Server) registerUser() {
	s.mux.HandleFunc("GET /api/user/profile", s.requireAuth(s.handleProfile))
	s.mux.HandleFunc("GET /api/user/course", s.requireAuth(s.handleEnrolledCourses))
}

func (s *Server) registerCourses() {
	s.mux.HandleFunc("GET /api/teacher/courses", s.requireAuth(s.handleTeacherCourses))
	s.mux.HandleFunc("POST /api/teacher/courses/{courseId}/attendance", s.requireAuth(s.handleBatchAttendance))
	s.mux.HandleFunc("GET /api/admin/courses/{courseId}/students", s.requireAuth(s.handleCourseStudents))
	s.mux.HandleFunc("GET /api/attendance/schedule/{scheduleId}", s.requireAuth(s.handleScheduleAttendance))
}

func (s *Server) handleProfile(w http.ResponseWriter, _ *http.Request, u user) {
	httpx.WriteJSON(w, http.StatusOK, attendsdk.ProfileResponse{User: &attendsdk.UserDetail{
		ID:       u.id,
		Username: u.username,
		FullName: u.fullName,
		Role:     u.role,
	}})
}

func (s *Server) handleEnrolledCourses(w http.ResponseWriter, _ *http.Request, u user) {
	s.mu.Lock()
	defer s.mu.Unlock()

	courses := []attendsdk.Course{}
	for id, students := range s.enrolments {
		for _, sid := range students {
			if sid == u.id {
				courses = append(courses, s.courses[id])
				break
			}
		}
	}
	httpx.WriteJSON(w, http.StatusOK, courses)
}

func (s *Server) handleTeacherCourses(w http.ResponseWriter, _ *http.Request, u user) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type wrapped struct {
		Course attendsdk.Course `json:"course"`
	}
	out := []wrapped{}
	for _, c := range s.courses {
		if c.TeacherID == u.id {
			out = append(out, wrapped{Course: c})
		}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleCourseStudents(w http.ResponseWriter, r *http.Request, _ user) {
	courseID := r.PathValue("courseId")

	s.mu.Lock()
	defer s.mu.Unlock()

	ids, ok := s.enrolments[courseID]
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "Course not found")
		return
	}

	students := make([]attendsdk.UserSummary, 0, len(ids))
	for _, id := range ids {
		for _, u := range s.users {
			if u.id == id {
				students = append(students, attendsdk.UserSummary{
					ID:       u.id,
					Username: u.username,
					FullName: u.fullName,
					Role:     u.role,
				})
			}
		}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"students": students})
}

func (s *Server) handleScheduleAttendance(w http.ResponseWriter, r *http.Request, _ user) {
	records := s.Attendance(r.PathValue("scheduleId"))
	if records == nil {
		records = []attendsdk.AttendanceRecord{}
	}
	httpx.WriteJSON(w, http.StatusOK, records)
}

func (s *Server) handleBatchAttendance(w http.ResponseWriter, r *http.Request, u user) {
	if u.role != "TEACHER" && u.role != "ADMIN" {
		httpx.WriteError(w, http.StatusForbidden, "Only teachers can mark attendance")
		return
	}

	courseID := r.PathValue("courseId")

	var req attendsdk.BatchAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Malformed request")
		return
	}

	now := time.Now()
	for _, rec := range req.AttendanceRecords {
		s.AddAttendance(attendsdk.AttendanceRecord{
			ID:         idx.New().String(),
			ScheduleID: req.ScheduleID,
			CourseID:   courseID,
			StudentID:  rec.StudentID,
			Date:       now.Format(time.DateOnly),
			Status:     rec.Status,
			Time:       now.UnixMilli(),
			VerifiedBy: u.id,
			Notes:      rec.Notes,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, attendsdk.MessageResponse{Message: "Attendance recorded"})
}
