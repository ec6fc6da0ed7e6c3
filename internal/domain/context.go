package domain

import (
	"context"
	"fmt"
)

type contextKey string

const CtxUserInfo contextKey = "userInfo"

const (
	CtxSystemAdminId = "_IP_SYS_ADMIN_"
	CtxUnknownUserId = "_IP_SYS_UNKNOWN_"
)

// ContextUserInfo identifies the acting user of a request context. It is used for
// access checks and for the created-by/updated-by columns of persisted records.
type ContextUserInfo struct {
	Id      string
	IsAdmin bool
}

func (u *ContextUserInfo) String() string {
	return fmt.Sprintf("%s|%t", u.Id, u.IsAdmin)
}

func (u *ContextUserInfo) UserId() string {
	return u.Id
}

func DefaultContextUserInfo() *ContextUserInfo {
	return &ContextUserInfo{
		Id:      CtxUnknownUserId,
		IsAdmin: false,
	}
}

// SystemAdminContextUserInfo is used by internal jobs that act on behalf of the system.
func SystemAdminContextUserInfo() *ContextUserInfo {
	return &ContextUserInfo{
		Id:      CtxSystemAdminId,
		IsAdmin: true,
	}
}

func SetUserInfo(ctx context.Context, info *ContextUserInfo) context.Context {
	return context.WithValue(ctx, CtxUserInfo, info)
}

func GetUserInfo(ctx context.Context) *ContextUserInfo {
	rawInfo := ctx.Value(CtxUserInfo)
	if rawInfo == nil {
		return DefaultContextUserInfo()
	}

	if info, ok := rawInfo.(*ContextUserInfo); ok {
		return info
	}

	return DefaultContextUserInfo()
}

// ValidateAdminAccessRights returns ErrNoPermission if the context user is not an admin.
func ValidateAdminAccessRights(ctx context.Context) error {
	if !GetUserInfo(ctx).IsAdmin {
		return ErrNoPermission
	}
	return nil
}
