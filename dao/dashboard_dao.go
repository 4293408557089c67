// api/dao/dashboard_dao.go
package dao

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	campus_errors "github.com/campuspulse/api/errors"
	logger "github.com/campuspulse/api/logging"
	"github.com/campuspulse/api/model"
)

// DashboardDAO reads the school-bound dashboard data. Every method takes a
// mandatory tenant id and every query carries the tenant predicate; there is
// deliberately no way to list dashboard data unscoped.
type DashboardDAO struct {
	Driver neo4j.Driver
}

func NewDashboardDAO(driver neo4j.Driver) *DashboardDAO {
	return &DashboardDAO{Driver: driver}
}

func (dao *DashboardDAO) readSession() neo4j.Session {
	return dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
}

func (dao *DashboardDAO) ListTeachers(ctx context.Context, tenantID string, limit, offset int) ([]model.TeacherSummary, error) {
	session := dao.readSession()
	defer session.Close()

	query := `
    MATCH (p:Principal {role: 'TEACHER'})-[:MEMBER_OF]->(t:Tenant {id: $tenantId})
    RETURN p.id AS id, p.name AS name, p.subject AS subject, p.email AS email
    ORDER BY p.name
    SKIP $offset
    LIMIT $limit
    `
	result, err := session.Run(query, map[string]interface{}{
		"tenantId": tenantID,
		"limit":    limit,
		"offset":   offset,
	})
	if err != nil {
		logger.Error("Failed to list teachers", zap.Error(err), zap.String("tenantID", tenantID))
		return nil, campus_errors.ErrDatabaseOperation
	}

	teachers := []model.TeacherSummary{}
	for result.Next() {
		record := result.Record()
		teachers = append(teachers, model.TeacherSummary{
			ID:      stringValue(record, "id"),
			Name:    stringValue(record, "name"),
			Subject: stringValue(record, "subject"),
			Email:   stringValue(record, "email"),
		})
	}
	return teachers, nil
}

func (dao *DashboardDAO) ListStudents(ctx context.Context, tenantID string, limit, offset int) ([]model.StudentSummary, error) {
	session := dao.readSession()
	defer session.Close()

	query := `
    MATCH (p:Principal {role: 'STUDENT'})-[:MEMBER_OF]->(t:Tenant {id: $tenantId})
    RETURN p.id AS id, p.name AS name, p.class_name AS class_name
    ORDER BY p.name
    SKIP $offset
    LIMIT $limit
    `
	result, err := session.Run(query, map[string]interface{}{
		"tenantId": tenantID,
		"limit":    limit,
		"offset":   offset,
	})
	if err != nil {
		logger.Error("Failed to list students", zap.Error(err), zap.String("tenantID", tenantID))
		return nil, campus_errors.ErrDatabaseOperation
	}

	students := []model.StudentSummary{}
	for result.Next() {
		record := result.Record()
		students = append(students, model.StudentSummary{
			ID:        stringValue(record, "id"),
			Name:      stringValue(record, "name"),
			ClassName: stringValue(record, "class_name"),
		})
	}
	return students, nil
}

func (dao *DashboardDAO) ListAnnouncements(ctx context.Context, tenantID string) ([]model.Announcement, error) {
	session := dao.readSession()
	defer session.Close()

	query := `
    MATCH (a:Announcement)-[:POSTED_IN]->(t:Tenant {id: $tenantId})
    RETURN a.id AS id, a.title AS title, a.body AS body, a.published_at AS published_at
    ORDER BY a.published_at DESC
    LIMIT 50
    `
	result, err := session.Run(query, map[string]interface{}{"tenantId": tenantID})
	if err != nil {
		logger.Error("Failed to list announcements", zap.Error(err), zap.String("tenantID", tenantID))
		return nil, campus_errors.ErrDatabaseOperation
	}

	announcements := []model.Announcement{}
	for result.Next() {
		record := result.Record()
		a := model.Announcement{
			ID:    stringValue(record, "id"),
			Title: stringValue(record, "title"),
			Body:  stringValue(record, "body"),
		}
		if v, ok := record.Get("published_at"); ok {
			if ts, ok := v.(time.Time); ok {
				a.PublishedAt = ts
			}
		}
		announcements = append(announcements, a)
	}
	return announcements, nil
}

func (dao *DashboardDAO) Timetable(ctx context.Context, tenantID string) ([]model.TimetableSlot, error) {
	session := dao.readSession()
	defer session.Close()

	query := `
    MATCH (s:TimetableSlot)-[:SCHEDULED_IN]->(t:Tenant {id: $tenantId})
    RETURN s.id AS id, s.class_name AS class_name, s.subject AS subject,
           s.weekday AS weekday, s.starts_at AS starts_at, s.ends_at AS ends_at
    ORDER BY s.weekday, s.starts_at
    `
	result, err := session.Run(query, map[string]interface{}{"tenantId": tenantID})
	if err != nil {
		logger.Error("Failed to load timetable", zap.Error(err), zap.String("tenantID", tenantID))
		return nil, campus_errors.ErrDatabaseOperation
	}

	slots := []model.TimetableSlot{}
	for result.Next() {
		record := result.Record()
		slots = append(slots, model.TimetableSlot{
			ID:        stringValue(record, "id"),
			ClassName: stringValue(record, "class_name"),
			Subject:   stringValue(record, "subject"),
			Weekday:   stringValue(record, "weekday"),
			StartsAt:  stringValue(record, "starts_at"),
			EndsAt:    stringValue(record, "ends_at"),
		})
	}
	return slots, nil
}

func (dao *DashboardDAO) AttendanceToday(ctx context.Context, tenantID string) (model.AttendanceSummary, error) {
	session := dao.readSession()
	defer session.Close()

	today := time.Now().Format("2006-01-02")
	query := `
    MATCH (r:AttendanceRecord {date: $date})-[:RECORDED_IN]->(t:Tenant {id: $tenantId})
    RETURN sum(CASE WHEN r.present THEN 1 ELSE 0 END) AS present,
           sum(CASE WHEN r.present THEN 0 ELSE 1 END) AS absent
    `
	result, err := session.Run(query, map[string]interface{}{
		"tenantId": tenantID,
		"date":     today,
	})
	if err != nil {
		logger.Error("Failed to load attendance", zap.Error(err), zap.String("tenantID", tenantID))
		return model.AttendanceSummary{}, campus_errors.ErrDatabaseOperation
	}

	summary := model.AttendanceSummary{Date: today}
	if result.Next() {
		record := result.Record()
		summary.Present = intValue(record, "present")
		summary.Absent = intValue(record, "absent")
	}
	return summary, nil
}

func (dao *DashboardDAO) CountByRole(ctx context.Context, tenantID string, role model.Role) (int64, error) {
	session := dao.readSession()
	defer session.Close()

	query := `
    MATCH (p:Principal {role: $role})-[:MEMBER_OF]->(t:Tenant {id: $tenantId})
    RETURN count(p) AS total
    `
	result, err := session.Run(query, map[string]interface{}{
		"tenantId": tenantID,
		"role":     string(role),
	})
	if err != nil {
		logger.Error("Failed to count principals", zap.Error(err),
			zap.String("tenantID", tenantID), zap.String("role", string(role)))
		return 0, campus_errors.ErrDatabaseOperation
	}

	if result.Next() {
		return intValue(result.Record(), "total"), nil
	}
	return 0, nil
}

func (dao *DashboardDAO) CountAnnouncements(ctx context.Context, tenantID string) (int64, error) {
	session := dao.readSession()
	defer session.Close()

	query := `
    MATCH (a:Announcement)-[:POSTED_IN]->(t:Tenant {id: $tenantId})
    RETURN count(a) AS total
    `
	result, err := session.Run(query, map[string]interface{}{"tenantId": tenantID})
	if err != nil {
		logger.Error("Failed to count announcements", zap.Error(err), zap.String("tenantID", tenantID))
		return 0, campus_errors.ErrDatabaseOperation
	}

	if result.Next() {
		return intValue(result.Record(), "total"), nil
	}
	return 0, nil
}

func stringValue(record *neo4j.Record, key string) string {
	if v, ok := record.Get(key); ok {
		s, _ := v.(string)
		return s
	}
	return ""
}

func intValue(record *neo4j.Record, key string) int64 {
	if v, ok := record.Get(key); ok {
		n, _ := v.(int64)
		return n
	}
	return 0
}
