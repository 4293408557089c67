// api/model/dashboard.go
package model

import "time"

// Dashboard payload shapes. These are pass-through reads: the fields mirror
// what the store returns, scoped to one tenant.

type TeacherSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Email   string `json:"email"`
}

type StudentSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ClassName string `json:"class_name"`
}

type Announcement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	PublishedAt time.Time `json:"published_at"`
}

type TimetableSlot struct {
	ID        string `json:"id"`
	ClassName string `json:"class_name"`
	Subject   string `json:"subject"`
	Weekday   string `json:"weekday"`
	StartsAt  string `json:"starts_at"`
	EndsAt    string `json:"ends_at"`
}

type AttendanceSummary struct {
	Date    string `json:"date"`
	Present int64  `json:"present"`
	Absent  int64  `json:"absent"`
}

type SchoolOverview struct {
	TenantID      string `json:"tenant_id"`
	SchoolName    string `json:"school_name"`
	Teachers      int64  `json:"teachers"`
	Students      int64  `json:"students"`
	Announcements int64  `json:"announcements"`
}
