package models

// AuditResource names the kind of record an audit entry refers to.
type AuditResource string

const (
	AuditResourceProduct AuditResource = "product"
	AuditResourceOrder   AuditResource = "order"
	AuditResourceUser    AuditResource = "user"
)

// AuditLog records admin actions and account-security events against one resource.
type AuditLog struct {
	Base
	UserID       string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Action       string         `gorm:"size:50;not null" json:"action"`
	ResourceType AuditResource  `gorm:"size:50;not null;index:idx_audit_resource" json:"resource_type"`
	ResourceID   string         `gorm:"size:64;index:idx_audit_resource" json:"resource_id"`
	IPAddress    string         `gorm:"size:45" json:"ip_address"`
	Changes      map[string]any `gorm:"type:text;serializer:json;not null" json:"changes,omitempty"`
}
