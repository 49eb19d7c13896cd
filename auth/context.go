package auth

import "context"

// Context keys are unexported struct types so no other package can collide
// with them.
type userInfoContextKey struct{}
type accessTokenContextKey struct{}

// ContextWithUserInfo returns a context carrying the validated identity
func ContextWithUserInfo(ctx context.Context, info *UserInfo) context.Context {
	return context.WithValue(ctx, userInfoContextKey{}, info)
}

// UserInfoFromContext retrieves the validated identity, if any
func UserInfoFromContext(ctx context.Context) (*UserInfo, bool) {
	info, ok := ctx.Value(userInfoContextKey{}).(*UserInfo)
	return info, ok
}

// ContextWithAccessToken returns a context carrying the raw bearer token so
// downstream handlers can present it to the Miro API without re-extraction.
func ContextWithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenContextKey{}, token)
}

// AccessTokenFromContext retrieves the raw bearer token, if any
func AccessTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenContextKey{}).(string)
	return token, ok
}
