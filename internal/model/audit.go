package model

const (
	AuditActionBookCreate = "book.create"
	AuditActionBookUpdate = "book.update"
	AuditActionBookDelete = "book.delete"

	AuditStatusSuccess = "success"
	AuditStatusFailed  = "failed"
)

type AuditActor struct {
	ID    int64    `json:"id,omitempty"`
	Type  UserType `json:"type,omitempty"`
	Email string   `json:"email,omitempty"`
	IP    string   `json:"ip,omitempty"`
}

type AuditEntry struct {
	ID         int64      `json:"id,omitempty"`
	Action     string     `json:"action"`
	OccurredAt string     `json:"occurredAt"`
	Actor      AuditActor `json:"actor"`
	Status     string     `json:"status"`
	Resource   string     `json:"resource,omitempty"`
	Before     any        `json:"before,omitempty"`
	After      any        `json:"after,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type AuditQuery struct {
	Action    string
	ActorID   int64
	ActorType string
	Status    string
	Resource  string
	From      string
	To        string
	Page      int
	Limit     int
}

type AuditListData struct {
	Items []AuditEntry `json:"items"`
}
