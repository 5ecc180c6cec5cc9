package attendsdk

import (
	"context"
	"net/http"
)

// ============================================================================
// Student
// ============================================================================

// ListEnrolledCourses returns the courses the signed-in student is enrolled in.
func (c *Client) ListEnrolledCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	if err := c.doJSON(ctx, http.MethodGet, "/api/user/course", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// ListStudentSchedules returns the schedules of one of the student's courses.
func (c *Client) ListStudentSchedules(ctx context.Context, courseID string) ([]Schedule, error) {
	var schedules []Schedule
	path := "/api/user/schedule/course/" + pathEscape(courseID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// ============================================================================
// Teacher
// ============================================================================

// ListTeacherCourses returns the courses taught by the signed-in teacher.
func (c *Client) ListTeacherCourses(ctx context.Context) ([]Course, error) {
	var wrapped []teacherCourse
	if err := c.doJSON(ctx, http.MethodGet, "/api/teacher/courses", nil, &wrapped); err != nil {
		return nil, err
	}

	courses := make([]Course, 0, len(wrapped))
	for _, w := range wrapped {
		courses = append(courses, w.Course)
	}
	return courses, nil
}

// ListTeacherSchedules returns the schedules of a course the teacher teaches.
func (c *Client) ListTeacherSchedules(ctx context.Context, courseID string) ([]Schedule, error) {
	var schedules []Schedule
	path := "/api/teacher/schedules/course/" + pathEscape(courseID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// TeacherStudents returns the students linked to studentID in the teacher's courses.
func (c *Client) TeacherStudents(ctx context.Context, studentID string) ([]UserSummary, error) {
	var resp studentsResponse
	path := "/api/teacher/courses/student/" + pathEscape(studentID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Students, nil
}

// ============================================================================
// Admin
// ============================================================================

// ListAllCourses returns every course.
func (c *Client) ListAllCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// CreateCourse creates a course.
func (c *Client) CreateCourse(ctx context.Context, req CourseRequest) (*Course, error) {
	var course Course
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/courses", req, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// DeleteCourse deletes a course.
func (c *Client) DeleteCourse(ctx context.Context, courseID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/admin/courses/"+pathEscape(courseID), nil, nil)
}

// CourseStudents returns the roster of a course.
func (c *Client) CourseStudents(ctx context.Context, courseID string) ([]UserSummary, error) {
	var resp studentsResponse
	path := "/api/admin/courses/" + pathEscape(courseID) + "/students"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Students, nil
}

// CreateSchedule adds a schedule to a course.
func (c *Client) CreateSchedule(ctx context.Context, req ScheduleRequest) (*Schedule, error) {
	var schedule Schedule
	path := "/api/admin/schedules/course/" + pathEscape(req.CourseID)
	if err := c.doJSON(ctx, http.MethodPost, path, req, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// CancelSchedule marks a schedule cancelled.
func (c *Client) CancelSchedule(ctx context.Context, scheduleID, notes string) (*Schedule, error) {
	return c.scheduleTransition(ctx, scheduleID, "cancel", notes)
}

// CompleteSchedule marks a schedule completed.
func (c *Client) CompleteSchedule(ctx context.Context, scheduleID, notes string) (*Schedule, error) {
	return c.scheduleTransition(ctx, scheduleID, "complete", notes)
}

func (c *Client) scheduleTransition(ctx context.Context, scheduleID, action, notes string) (*Schedule, error) {
	var schedule Schedule
	path := "/api/admin/schedules/" + pathEscape(scheduleID) + "/" + action
	if err := c.doJSON(ctx, http.MethodPost, path, NotesRequest{Notes: notes}, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListUsers returns every user account.
func (c *Client) ListUsers(ctx context.Context) ([]UserSummary, error) {
	var users []UserSummary
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserRole changes a user's role (ADMIN, TEACHER or STUDENT).
func (c *Client) UpdateUserRole(ctx context.Context, userID, role string) (*UserSummary, error) {
	var user UserSummary
	path := "/api/admin/users/" + pathEscape(userID)
	if err := c.doJSON(ctx, http.MethodPut, path, UpdateRoleRequest{Role: role}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
