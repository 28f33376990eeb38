package log

// Request fields, set by GinMiddleware.
const (
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldRoute     = "route"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"
	FieldSlow      = "slow"
)

// Viewer fields. The names double as gin context keys in pkg/middleware.
const (
	FieldUserID   = "user_id"
	FieldUsername = "username"
)

// Blog entity fields.
const (
	FieldPostID    = "post_id"
	FieldCommentID = "comment_id"
	FieldAuthorID  = "author_id"
	FieldGroupSlug = "group_slug"
	FieldImageKey  = "image_key"
)

// Follow-count pipeline fields.
const (
	FieldCDCOp = "cdc_op"
	FieldTopic = "topic"
	FieldCount = "count"
)

const (
	FieldService = "service"
	FieldSource  = "source"

	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
