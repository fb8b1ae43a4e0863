package internal

import "context"

type ctxKey string

const ContextUserKey ctxKey = "userID"

// Version is the API version reported by /api/version and checked by
// the client status command.
const Version = "1.2.0"

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if userID, ok := ctx.Value(ContextUserKey).(string); ok {
		return userID
	}
	return ""
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}
