package stagekit

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// MembershipAuditLog records all membership changes for compliance and debugging.
type MembershipAuditLog struct {
	bun.BaseModel `bun:"table:membership_audit_log,alias:mal"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Timestamp time.Time `bun:"timestamp,notnull,default:current_timestamp"`

	// Who performed the action
	ActorID int64 `bun:"actor_id,notnull"`

	// What action was performed
	Action string `bun:"action,notnull"` // "granted", "revoked"

	// Target of the action
	TargetUserID int64        `bun:"target_user_id,notnull"`
	ResourceType ResourceType `bun:"resource_type,notnull"`
	ResourceID   int64        `bun:"resource_id,notnull"`
	Roles        []Role       `bun:"roles,type:text[]"`

	// Context: what roles did the target hold before and after?
	PreviousRoles []Role `bun:"previous_roles,type:text[]"`
	NewRoles      []Role `bun:"new_roles,type:text[]"`

	// Request metadata for forensics
	IPAddress string `bun:"ip_address"`
	UserAgent string `bun:"user_agent"`
	RequestID string `bun:"request_id"`

	// Additional context (JSON)
	Metadata map[string]any `bun:"metadata,type:jsonb"`
}

// AuditAction represents the type of action in the audit log.
type AuditAction string

const (
	AuditActionGranted AuditAction = "granted"
	AuditActionRevoked AuditAction = "revoked"
)

// AuditEntry is used to create new audit log entries.
type AuditEntry struct {
	ActorID       int64
	Action        AuditAction
	TargetUserID  int64
	ResourceType  ResourceType
	ResourceID    int64
	Roles         []Role
	PreviousRoles []Role
	NewRoles      []Role
	IPAddress     string
	UserAgent     string
	RequestID     string
	Metadata      map[string]any
}

// ToModel converts an AuditEntry to a MembershipAuditLog model.
func (e *AuditEntry) ToModel() *MembershipAuditLog {
	return &MembershipAuditLog{
		ActorID:       e.ActorID,
		Action:        string(e.Action),
		TargetUserID:  e.TargetUserID,
		ResourceType:  e.ResourceType,
		ResourceID:    e.ResourceID,
		Roles:         e.Roles,
		PreviousRoles: e.PreviousRoles,
		NewRoles:      e.NewRoles,
		IPAddress:     e.IPAddress,
		UserAgent:     e.UserAgent,
		RequestID:     e.RequestID,
		Metadata:      e.Metadata,
		Timestamp:     time.Now(),
	}
}

// logAudit writes an audit entry on the service's handle.
func (s *Service) logAudit(ctx context.Context, entry *AuditEntry) error {
	return s.logAuditOn(ctx, s.db, entry)
}

// logAuditOn writes an audit entry on a specific handle (used inside transactions).
func (s *Service) logAuditOn(ctx context.Context, db dbkit.IDB, entry *AuditEntry) error {
	model := entry.ToModel()
	result, err := db.NewInsert().Model(model).Exec(ctx)
	return dbkit.WithErr(result, err, "LogAudit").Err()
}

// GetAuditLog returns membership audit entries matching the filter, newest first.
//
// Example:
//
//	entries, err := service.GetAuditLog(ctx,
//	    stagekit.NewAuditFilter().
//	        WithResource(stagekit.ResourceVenue, venueID).
//	        WithLimit(20))
func (s *Service) GetAuditLog(ctx context.Context, filter AuditFilter) ([]MembershipAuditLog, error) {
	var entries []MembershipAuditLog

	q := s.db.NewSelect().Model(&entries)

	if filter.ActorID != 0 {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.TargetUserID != 0 {
		q = q.Where("target_user_id = ?", filter.TargetUserID)
	}
	if filter.ResourceType != "" {
		q = q.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.ResourceID != 0 {
		q = q.Where("resource_id = ?", filter.ResourceID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if !filter.Since.IsZero() {
		q = q.Where("timestamp >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		q = q.Where("timestamp <= ?", filter.Until)
	}

	q = q.Order("timestamp DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	err := q.Scan(ctx)
	if err = dbkit.WithErr1(err, "GetAuditLog").Err(); err != nil {
		return nil, NewError(ErrPersistence, "failed to query audit log")
	}
	return entries, nil
}
