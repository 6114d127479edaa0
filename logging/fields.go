package logging

// Field names shared by all log entries.
const (
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"
	FieldUserID    = "user_id"

	FieldLogType = "log_type"
	LogTypeAudit = "audit"

	FieldAction   = "action"
	FieldTargetID = "target_id"
)

const headerRequestID = "X-Request-ID"
