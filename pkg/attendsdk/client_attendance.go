package attendsdk

import (
	"context"
	"net/http"
)

// ListScheduleAttendance returns the attendance records of one schedule.
func (c *Client) ListScheduleAttendance(ctx context.Context, scheduleID string) ([]AttendanceRecord, error) {
	var records []AttendanceRecord
	path := "/api/attendance/schedule/" + pathEscape(scheduleID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListStudentAttendance returns the signed-in student's records for a course.
func (c *Client) ListStudentAttendance(ctx context.Context, courseID string) ([]AttendanceRecord, error) {
	var records []AttendanceRecord
	path := "/api/user/attendance/course/" + pathEscape(courseID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveAttendance creates a single attendance record.
func (c *Client) SaveAttendance(ctx context.Context, req AttendanceRequest) (*AttendanceRecord, error) {
	var record AttendanceRecord
	if err := c.doJSON(ctx, http.MethodPost, "/api/attendance", req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateAttendance replaces an existing attendance record.
func (c *Client) UpdateAttendance(ctx context.Context, recordID string, req AttendanceRequest) (*AttendanceRecord, error) {
	var record AttendanceRecord
	path := "/api/attendance/" + pathEscape(recordID)
	if err := c.doJSON(ctx, http.MethodPut, path, req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteAttendance removes an attendance record.
func (c *Client) DeleteAttendance(ctx context.Context, recordID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/attendance/"+pathEscape(recordID), nil, nil)
}

// MarkBatchAttendance records attendance for several students of one
// schedule in a single request.
func (c *Client) MarkBatchAttendance(ctx context.Context, courseID string, req BatchAttendanceRequest) error {
	path := "/api/teacher/courses/" + pathEscape(courseID) + "/attendance"
	return c.doJSON(ctx, http.MethodPost, path, req, nil)
}
