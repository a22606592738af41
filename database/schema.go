/*
 * Copyright 2025 pai-group.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"database/sql"
	"time"

	"github.com/uptrace/bun"

	"github.com/pai-group/wellbeing/types"
)

// The schema catalog. These nine models are the single source of truth for
// the persisted layout; any column added to the product schema must be
// reflected here. Migration order follows registration priority: parent
// tables (student, assessment) are created before the tables that reference
// them, standalone tables in between.

// Student is a tracked student. Email is unique at the storage layer.
type Student struct {
	bun.BaseModel `bun:"table:student,alias:st"`

	StudentID string        `bun:"student_id,pk,type:text" json:"student_id"`
	FirstName string        `bun:"first_name,type:text" json:"first_name"`
	LastName  string        `bun:"lastname,type:text" json:"lastname"`
	Email     string        `bun:"email,unique,type:text" json:"email"`
	Password  string        `bun:"password,type:text" json:"-"`
	Year      sql.NullInt64 `bun:"year,type:integer" json:"year"`
}

// FullName joins the student's name fields for display.
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Attendance records one student session.
type Attendance struct {
	bun.BaseModel `bun:"table:attendance,alias:at"`

	AttendanceID int64                  `bun:"attendance_id,pk,autoincrement" json:"attendance_id"`
	StudentID    string                 `bun:"student_id,type:text" json:"student_id"`
	SessionDate  time.Time              `bun:"session_date,type:date,nullzero" json:"session_date"`
	SessionID    string                 `bun:"session_id,type:text" json:"session_id"`
	Status       types.AttendanceStatus `bun:"status,type:text" json:"status"`
}

// Assessment is a marked piece of coursework within a module.
type Assessment struct {
	bun.BaseModel `bun:"table:assessment,alias:as"`

	AssessmentID int64           `bun:"assessment_id,pk,autoincrement" json:"assessment_id"`
	ModuleCode   string          `bun:"module_code,type:text" json:"module_code"`
	Title        string          `bun:"title,type:text" json:"title"`
	DueDate      time.Time       `bun:"due_date,type:date,nullzero" json:"due_date"`
	Weight       sql.NullFloat64 `bun:"weight,type:real" json:"weight"`
}

// Submission links a student to an assessment with an optional mark.
type Submission struct {
	bun.BaseModel `bun:"table:submission,alias:su"`

	SubmissionID int64           `bun:"submission_id,pk,autoincrement" json:"submission_id"`
	StudentID    string          `bun:"student_id,type:text" json:"student_id"`
	AssessmentID int64           `bun:"assessment_id,type:integer" json:"assessment_id"`
	SubmittedAt  sql.NullTime    `bun:"submitted_at,type:datetime" json:"submitted_at"`
	Status       string          `bun:"status,type:text" json:"status"`
	Mark         sql.NullFloat64 `bun:"mark,type:real" json:"mark"`
}

// WellbeingRecord holds one week of survey metrics for a student.
type WellbeingRecord struct {
	bun.BaseModel `bun:"table:wellbeing_record,alias:wr"`

	RecordID    int64           `bun:"record_id,pk,autoincrement" json:"record_id"`
	StudentID   string          `bun:"student_id,type:text" json:"student_id"`
	WeekStart   time.Time       `bun:"week_start,type:date,nullzero" json:"week_start"`
	StressLevel sql.NullInt64   `bun:"stress_level,type:integer" json:"stress_level"`
	SleepHours  sql.NullFloat64 `bun:"sleep_hours,type:real" json:"sleep_hours"`
	SourceType  string          `bun:"source_type,type:text" json:"source_type"`
}

// Alert is a raised wellbeing concern for a student.
type Alert struct {
	bun.BaseModel `bun:"table:alert,alias:al"`

	AlertID   int64     `bun:"alert_id,pk,autoincrement" json:"alert_id"`
	StudentID string    `bun:"student_id,type:text" json:"student_id"`
	AlertType string    `bun:"alert_type,type:text" json:"alert_type"`
	Reason    string    `bun:"reason,type:text" json:"reason"`
	CreatedAt time.Time `bun:"created_at,type:datetime,nullzero,default:current_timestamp" json:"created_at"`
	Resolved  bool      `bun:"resolved,type:integer,default:0" json:"resolved"`
}

// RetentionRule is a standalone data retention policy record.
type RetentionRule struct {
	bun.BaseModel `bun:"table:retention_rule,alias:rr"`

	RuleID          int64  `bun:"rule_id,pk,autoincrement" json:"rule_id"`
	DataType        string `bun:"data_type,type:text" json:"data_type"`
	RetentionMonths int64  `bun:"retention_months,type:integer" json:"retention_months"`
	IsActive        bool   `bun:"is_active,type:integer,default:1" json:"is_active"`
}

// AuditLog is a standalone event record. Population logic lives outside this
// layer; only the schema is defined here.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_log,alias:au"`

	LogID      int64            `bun:"log_id,pk,autoincrement" json:"log_id"`
	UserID     string           `bun:"user_id,type:text" json:"user_id"`
	EntityType string           `bun:"entity_type,type:text" json:"entity_type"`
	EntityID   sql.NullInt64    `bun:"entity_id,type:integer" json:"entity_id"`
	ActionType types.ActionType `bun:"action_type,type:text" json:"action_type"`
	Timestamp  time.Time        `bun:"timestamp,type:datetime,nullzero,default:current_timestamp" json:"timestamp"`
	Details    types.JsonObject `bun:"details,type:text" json:"details"`
}

// User is a standalone application identity. This is the only table with
// schema-level NOT NULL columns; other tables enforce required fields by
// convention.
type User struct {
	bun.BaseModel `bun:"table:user,alias:us"`

	UserID       string `bun:"user_id,pk,type:text" json:"user_id"`
	FirstName    string `bun:"first_name,type:text,notnull" json:"first_name"`
	LastName     string `bun:"lastname,type:text,notnull" json:"lastname"`
	PasswordHash string `bun:"password_hash,type:text,notnull" json:"-"`
	Role         string `bun:"role,type:text,notnull" json:"role"`
}

// Registration priorities. Parents and standalone tables migrate before
// foreign-key dependents.
const (
	priorityParent     = 10
	priorityStandalone = 20
	priorityDependent  = 30
)

func init() {
	RegisteredModel(NewModelAdapter((*Student)(nil), priorityParent))
	RegisteredModel(NewModelAdapter((*Assessment)(nil), priorityParent))
	RegisteredModel(NewModelAdapter((*RetentionRule)(nil), priorityStandalone))
	RegisteredModel(NewModelAdapter((*AuditLog)(nil), priorityStandalone))
	RegisteredModel(NewModelAdapter((*User)(nil), priorityStandalone))
	RegisteredModel(NewModelAdapter((*Attendance)(nil), priorityDependent))
	RegisteredModel(NewModelAdapter((*Submission)(nil), priorityDependent))
	RegisteredModel(NewModelAdapter((*WellbeingRecord)(nil), priorityDependent))
	RegisteredModel(NewModelAdapter((*Alert)(nil), priorityDependent))
}

// SchemaTableNames returns the table names of the catalog in migration order.
func SchemaTableNames() []string {
	return []string{
		"student",
		"assessment",
		"retention_rule",
		"audit_log",
		"user",
		"attendance",
		"submission",
		"wellbeing_record",
		"alert",
	}
}
