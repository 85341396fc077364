package ctxutil

import "context"

// AnonymousProfile owns the settings of requests that carry no identity.
const AnonymousProfile = "anonymous"

type profileKey struct{}

// ProfileData identifies whose accessibility settings a request operates on.
type ProfileData struct {
	ProfileID string
	// Source is "jwt", "header", "query" or "anonymous".
	Source string
}

func WithProfile(ctx context.Context, pd *ProfileData) context.Context {
	return context.WithValue(ctx, profileKey{}, pd)
}

func GetProfile(ctx context.Context) *ProfileData {
	if pd, ok := ctx.Value(profileKey{}).(*ProfileData); ok {
		return pd
	}
	return nil
}

// ProfileID returns the request's profile id, or AnonymousProfile.
func ProfileID(ctx context.Context) string {
	if pd := GetProfile(Default(ctx)); pd != nil && pd.ProfileID != "" {
		return pd.ProfileID
	}
	return AnonymousProfile
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
