package controller

import "context"

type contextKey int

const (
	userIdCtxKey contextKey = iota
	connectionIdCtxKey
	isAdminCtxKey
)

func (c controller) getUserIdFromCtx(ctx context.Context) string {
	userId, ok := ctx.Value(userIdCtxKey).(string)
	if !ok {
		return ""
	}

	return userId
}

func (c controller) getConnectionIdFromCtx(ctx context.Context) string {
	connectionId, ok := ctx.Value(connectionIdCtxKey).(string)
	if !ok {
		return ""
	}

	return connectionId
}

func (c controller) getIsAdminFromCtx(ctx context.Context) bool {
	isAdmin, ok := ctx.Value(isAdminCtxKey).(bool)
	if !ok {
		return false
	}

	return isAdmin
}
