package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/SLASHOO/SkyMotion-Library/internal/httputil"
)

// MemberHeader carries the member id resolved by the identity provider.
const MemberHeader = "X-Ms-Id"

// LoginRequired is the error message for requests without a member.
const LoginRequired = "LOGIN_REQUIRED"

type contextKey string

const memberIDKey contextKey = "memberID"

type Handler struct {
	tokenSecret string
}

// NewHandler returns member middleware. With an empty tokenSecret the member
// header is trusted as-is; otherwise a bearer member token for the same
// member is required too.
func NewHandler(tokenSecret string) *Handler {
	return &Handler{tokenSecret: tokenSecret}
}

func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		memberID := strings.TrimSpace(r.Header.Get(MemberHeader))
		if memberID == "" {
			httputil.WriteError(w, http.StatusUnauthorized, LoginRequired)
			return
		}

		if h.tokenSecret != "" {
			tokenStr, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found {
				httputil.WriteError(w, http.StatusUnauthorized, "member token required")
				return
			}
			claims, err := ValidateMemberToken(h.tokenSecret, tokenStr)
			if err != nil {
				httputil.WriteError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if claims.MemberID != memberID {
				httputil.WriteError(w, http.StatusUnauthorized, "member mismatch")
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(ContextWithMemberID(r.Context(), memberID)))
	})
}

func ContextWithMemberID(ctx context.Context, memberID string) context.Context {
	return context.WithValue(ctx, memberIDKey, memberID)
}

func MemberIDFromContext(ctx context.Context) string {
	memberID, _ := ctx.Value(memberIDKey).(string)
	return memberID
}
