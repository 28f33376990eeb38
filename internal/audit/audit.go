package audit

import (
	"context"

	"github.com/weiawesome/wes-io-blog/pkg/log"
)

// Audit actions for the blog.
const (
	ActionPostCreate     = "post.create"
	ActionPostUpdate     = "post.update"
	ActionPostDelete     = "post.delete"
	ActionCommentCreate  = "comment.create"
	ActionCommentDelete  = "comment.delete"
	ActionFollow         = "follow.create"
	ActionUnfollow       = "follow.delete"
	ActionGroupCreate    = "group.create"
	ActionGroupDelete    = "group.delete"
	ActionTimelineFlush  = "cache.timeline_invalidate"
	ActionPostEditDenied = "post.edit_denied"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldDetail   = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action, userID, targetID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldTargetID, targetID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action, userID, targetID, detail, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldTargetID, targetID).
		Str(FieldDetail, detail).
		Msg(msg)
}
