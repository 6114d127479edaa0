package logging

import "context"

// Audit actions.
const (
	ActionRegister      = "user.register"
	ActionLogin         = "user.login"
	ActionLoginFailed   = "user.login_failed"
	ActionLogout        = "user.logout"
	ActionUpdateUser    = "user.update"
	ActionDeleteUser    = "user.delete"
	ActionFollow        = "graph.follow"
	ActionUnfollow      = "graph.unfollow"
	ActionCreatePost    = "post.create"
	ActionDeletePost    = "post.delete"
	ActionLike          = "post.like"
	ActionUnlike        = "post.unlike"
	ActionUploadImage   = "image.upload"
	ActionDeleteComment = "comment.delete"
)

// Audit emits an audit entry through the context logger. targetID is the id
// of the record the action was applied to, or 0 if there is none.
func Audit(ctx context.Context, action string, userID, targetID int, msg string) {
	l := Ctx(ctx)
	e := l.Info().
		Str(FieldLogType, LogTypeAudit).
		Str(FieldAction, action).
		Int(FieldUserID, userID)
	if targetID != 0 {
		e = e.Int(FieldTargetID, targetID)
	}
	e.Msg(msg)
}
