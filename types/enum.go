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

package types

import "strings"

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// AttendanceStatus records a student's presence at a teaching session.
// Stored as TEXT in the attendance table.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
	AttendanceExcused AttendanceStatus = "Excused"
)

func (s AttendanceStatus) IsValid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceExcused:
		return true
	}
	return false
}

func (s AttendanceStatus) Number() int {
	switch s {
	case AttendancePresent:
		return 1
	case AttendanceAbsent:
		return 2
	case AttendanceExcused:
		return 3
	}
	return IllegalValue
}

func (s AttendanceStatus) String() string {
	if !s.IsValid() {
		return IllegalName
	}
	return string(s)
}

func (s AttendanceStatus) Name() string {
	return s.String()
}

func (s AttendanceStatus) Desc() string {
	switch s {
	case AttendancePresent:
		return "student attended the session"
	case AttendanceAbsent:
		return "student missed the session without notice"
	case AttendanceExcused:
		return "student missed the session with an approved excuse"
	}
	return IllegalDesc
}

// ParseAttendanceStatus matches a stored or user-supplied value against the
// known statuses, case-insensitively. Unrecognized input yields an invalid
// status.
func ParseAttendanceStatus(value string) AttendanceStatus {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "present":
		return AttendancePresent
	case "absent":
		return AttendanceAbsent
	case "excused":
		return AttendanceExcused
	}
	return AttendanceStatus(value)
}

// AttendanceStatuses lists every valid status in declaration order.
func AttendanceStatuses() []AttendanceStatus {
	return []AttendanceStatus{AttendancePresent, AttendanceAbsent, AttendanceExcused}
}

// ActionType categorizes audit log entries. Stored as TEXT in the
// audit_log table.
type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
	ActionDelete ActionType = "delete"
	ActionLogin  ActionType = "login"
	ActionExport ActionType = "export"
)

func (a ActionType) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionLogin, ActionExport:
		return true
	}
	return false
}

func (a ActionType) Number() int {
	switch a {
	case ActionCreate:
		return 1
	case ActionUpdate:
		return 2
	case ActionDelete:
		return 3
	case ActionLogin:
		return 4
	case ActionExport:
		return 5
	}
	return IllegalValue
}

func (a ActionType) String() string {
	if !a.IsValid() {
		return IllegalName
	}
	return string(a)
}

func (a ActionType) Name() string {
	return a.String()
}

func (a ActionType) Desc() string {
	switch a {
	case ActionCreate:
		return "record created"
	case ActionUpdate:
		return "record updated"
	case ActionDelete:
		return "record deleted"
	case ActionLogin:
		return "user signed in"
	case ActionExport:
		return "data exported"
	}
	return IllegalDesc
}
