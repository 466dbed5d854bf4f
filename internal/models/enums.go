package models

import "strings"

type Stage string

const (
	StageTodo       Stage = "TODO"
	StageInProgress Stage = "IN_PROGRESS"
	StageCompleted  Stage = "COMPLETED"
)

// Stages lists every stage in display order.
var Stages = []Stage{StageTodo, StageInProgress, StageCompleted}

// ParseStage accepts case-insensitive input and treats '-' as '_', so
// "in-progress" and "IN_PROGRESS" both resolve to StageInProgress.
func ParseStage(s string) (Stage, bool) {
	normalized := Stage(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_"))
	for _, stage := range Stages {
		if stage == normalized {
			return stage, true
		}
	}
	return "", false
}

type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityNormal Priority = "NORMAL"
	PriorityLow    Priority = "LOW"
)

var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityNormal, PriorityLow}

// ParsePriority uppercases the input. Empty input yields PriorityNormal.
func ParsePriority(s string) (Priority, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PriorityNormal, true
	}
	normalized := Priority(strings.ToUpper(s))
	for _, p := range Priorities {
		if p == normalized {
			return p, true
		}
	}
	return "", false
}

type ActivityType string

const (
	ActivityAssigned   ActivityType = "Assigned"
	ActivityStarted    ActivityType = "Started"
	ActivityInProgress ActivityType = "InProgress"
	ActivityBug        ActivityType = "Bug"
	ActivityCompleted  ActivityType = "Completed"
	ActivityCommented  ActivityType = "Commented"
)

var ActivityTypes = []ActivityType{
	ActivityAssigned,
	ActivityStarted,
	ActivityInProgress,
	ActivityBug,
	ActivityCompleted,
	ActivityCommented,
}

func foldActivity(s string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s))
}

// ParseActivityType matches case-insensitively and ignores '_', '-' and
// spaces, so "in_progress", "IN-PROGRESS" and "InProgress" are equal.
func ParseActivityType(s string) (ActivityType, bool) {
	folded := foldActivity(s)
	if folded == "" {
		return "", false
	}
	for _, t := range ActivityTypes {
		if foldActivity(string(t)) == folded {
			return t, true
		}
	}
	return "", false
}

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

type GroupRole string

const (
	GroupRoleAdmin  GroupRole = "Admin"
	GroupRoleMember GroupRole = "Member"
)

// ParseGroupRole is case-insensitive. Empty input yields GroupRoleMember.
func ParseGroupRole(s string) (GroupRole, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "member":
		return GroupRoleMember, true
	case "admin":
		return GroupRoleAdmin, true
	}
	return "", false
}

type TokenPurpose string

const (
	TokenPurposeRefresh       TokenPurpose = "refresh"
	TokenPurposeVerifyEmail   TokenPurpose = "verify_email"
	TokenPurposeResetPassword TokenPurpose = "reset_password"
)
