package attendsdk

// ============================================================================
// Auth Types
// ============================================================================

// MFARequiredMessage is the login response message that signals a second
// factor is needed. It arrives on a 2xx response and is not an error.
const MFARequiredMessage = "MFA required"

// LoginRequest is the body of POST /api/auth/login. OTP is omitted from the
// JSON when empty, which is how the first login step is sent.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	OTP      string `json:"otp,omitempty"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// User is the identity embedded in auth responses.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

// AuthResponse is a 2xx login response. Which fields are set decides the
// outcome: AccessToken on success, Message == MFARequiredMessage for a
// challenge, Error for a rejection the server chose to send with 2xx.
type AuthResponse struct {
	Message      string `json:"message,omitempty"`
	User         *User  `json:"user,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	Error        string `json:"error,omitempty"`
}

// RegisterResponse is a 2xx register response.
type RegisterResponse struct {
	Message string `json:"message,omitempty"`
	User    *User  `json:"user,omitempty"`
}

// ============================================================================
// Profile Types
// ============================================================================

// UserDetail is the full profile of the signed-in user.
type UserDetail struct {
	ID          string `json:"id,omitempty"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	FullName    string `json:"fullName,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Role        string `json:"role,omitempty"`
}

// ProfileResponse wraps the profile returned by the profile endpoints.
type ProfileResponse struct {
	User *UserDetail `json:"user"`
}

// UpdateProfileRequest is the body of PUT /api/user/profile.
type UpdateProfileRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dateOfBirth"`
}

// ChangePasswordRequest is the body of PUT /api/user/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// MessageResponse is the generic {"message": "..."} success body.
type MessageResponse struct {
	Message string `json:"message,omitempty"`
}

// TwoFactorSetupResponse carries the TOTP secret and its otpauth:// URL.
type TwoFactorSetupResponse struct {
	SecretKey string `json:"secretKey"`
	QRCodeURL string `json:"qrCodeUrl"`
}

// TwoFactorVerifyRequest confirms 2FA enrollment with a current code.
type TwoFactorVerifyRequest struct {
	Code string `json:"code"`
}

// ============================================================================
// Course and Schedule Types
// ============================================================================

// Course is a course as returned by the student, teacher and admin endpoints.
type Course struct {
	ID           string   `json:"id,omitempty"`
	Code         string   `json:"code,omitempty"`
	Name         string   `json:"name,omitempty"`
	Description  string   `json:"description,omitempty"`
	TeacherID    string   `json:"teacherId,omitempty"`
	AcademicYear string   `json:"academicYear,omitempty"`
	Semester     string   `json:"semester,omitempty"`
	Active       bool     `json:"active,omitempty"`
	StudentIDs   []string `json:"studentIds,omitempty"`
}

// CourseRequest is the body for creating or updating a course.
type CourseRequest struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	TeacherID    string `json:"teacher_id,omitempty"` // the service reads this one in snake_case
	AcademicYear string `json:"academicYear"`
	Semester     string `json:"semester"`
}

// teacherCourse is the wrapper the teacher course listing uses: [{"course": {...}}].
type teacherCourse struct {
	Course Course `json:"course"`
}

// Schedule is one class session slot of a course.
type Schedule struct {
	ID           string `json:"id,omitempty"`
	CourseID     string `json:"courseId,omitempty"`
	DayOfWeek    *int   `json:"dayOfWeek,omitempty"`
	StartTime    string `json:"startTime,omitempty"`
	EndTime      string `json:"endTime,omitempty"`
	Room         string `json:"room,omitempty"`
	Type         string `json:"type,omitempty"`
	SpecificDate string `json:"specificDate,omitempty"`
	Status       string `json:"status,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// ScheduleRequest is the body of POST /api/admin/schedules/course/{courseId}.
type ScheduleRequest struct {
	CourseID     string `json:"courseId"`
	DayOfWeek    *int   `json:"dayOfWeek,omitempty"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Room         string `json:"room"`
	Type         string `json:"type"`
	SpecificDate string `json:"specificDate,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// NotesRequest is the body of the schedule cancel/complete endpoints.
type NotesRequest struct {
	Notes string `json:"notes,omitempty"`
}

// ============================================================================
// Attendance Types
// ============================================================================

// Attendance statuses the service accepts.
const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
	StatusLate    = "LATE"
	StatusExcused = "EXCUSED"
)

// AttendanceRecord is one student's attendance for one schedule. Time is in
// epoch milliseconds. Teacher listings may omit ID.
type AttendanceRecord struct {
	ID         string `json:"id,omitempty"`
	ScheduleID string `json:"scheduleId"`
	CourseID   string `json:"courseId"`
	StudentID  string `json:"studentId"`
	FullName   string `json:"fullname,omitempty"`
	Username   string `json:"username,omitempty"`
	Date       string `json:"date"`
	Status     string `json:"status,omitempty"`
	Time       int64  `json:"time"`
	VerifiedBy string `json:"verifiedBy,omitempty"`
	Notes      string `json:"notes,omitempty"`
	CreatedAt  int64  `json:"createdAt,omitempty"`
	UpdatedAt  int64  `json:"updatedAt,omitempty"`
}

// AttendanceRequest creates or replaces a single attendance record.
type AttendanceRequest struct {
	ScheduleID string `json:"scheduleId"`
	CourseID   string `json:"courseId"`
	StudentID  string `json:"studentId"`
	Date       string `json:"date"` // YYYY-MM-DD
	Status     string `json:"status"`
	Time       int64  `json:"time"` // epoch milliseconds
	Notes      string `json:"notes,omitempty"`
}

// BatchAttendanceRecord is one row of a batch attendance update.
type BatchAttendanceRecord struct {
	StudentID string `json:"studentId"`
	Status    string `json:"status"`
	Notes     string `json:"notes,omitempty"`
}

// BatchAttendanceRequest marks several students for one schedule at once.
type BatchAttendanceRequest struct {
	ScheduleID        string                  `json:"scheduleId"`
	AttendanceRecords []BatchAttendanceRecord `json:"attendanceRecords"`
}

// ============================================================================
// User Management Types
// ============================================================================

// UserSummary is a user as listed by admin and roster endpoints.
type UserSummary struct {
	ID               string `json:"id,omitempty"`
	Username         string `json:"username,omitempty"`
	Email            string `json:"email,omitempty"`
	FullName         string `json:"fullName,omitempty"`
	Role             string `json:"role,omitempty"`
	Active           bool   `json:"active,omitempty"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled,omitempty"`
}

// studentsResponse wraps roster listings: {"students": [...]}.
type studentsResponse struct {
	Students []UserSummary `json:"students"`
}

// UpdateRoleRequest is the body of PUT /api/admin/users/{userId}.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}
