package auth

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"

	apperrors "voyageiq/pkg/errors"
	"voyageiq/pkg/model"
)

const (
	MsgNotLoggedIn  = "You are not logged in! Please log in to get access."
	MsgUserGone     = "The user belonging to this token does no longer exist."
	MsgUserInactive = "This account has been deactivated."
	MsgForbidden    = "You do not have permission to perform this action"

	bearerPrefix = "Bearer "
)

type contextKey struct{}

// UserLookup loads the account a token was issued for. It returns an error
// wrapping a not-found sentinel when the account no longer exists.
type UserLookup func(ctx context.Context, id string) (*model.User, error)

type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

// Claims is the payload of every session token.
type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret     []byte
	cookieName string
	users      UserLookup
	isNotFound func(error) bool
	onError    ErrorFunc
}

type Config struct {
	Secret     string
	CookieName string
	Users      UserLookup
	// IsNotFound reports whether a lookup error means the user is gone.
	IsNotFound func(error) bool
	OnError    ErrorFunc
}

func New(cfg Config) *Authenticator {
	if cfg.IsNotFound == nil {
		cfg.IsNotFound = func(error) bool { return false }
	}
	return &Authenticator{
		secret:     []byte(cfg.Secret),
		cookieName: cfg.CookieName,
		users:      cfg.Users,
		isNotFound: cfg.IsNotFound,
		onError:    cfg.OnError,
	}
}

// Issue signs a token for userID valid for ttl.
func (a *Authenticator) Issue(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify parses token and returns its claims. Token failures are returned as
// jwt errors so the central handler can classify them.
func (a *Authenticator) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("failed to verify token: %w", jwt.ErrTokenRequiredClaimMissing)
	}
	return claims, nil
}

// Protect rejects requests without a valid token for an existing, active
// user. The user is stored in the request context.
func (a *Authenticator) Protect(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		user, err := a.authenticate(r)
		if err != nil {
			a.onError(w, r, err)
			return
		}
		next(w, r.WithContext(WithUser(r.Context(), user)), ps)
	}
}

// RestrictTo allows only users holding one of roles. It must run after
// Protect.
func (a *Authenticator) RestrictTo(roles ...string) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			user, ok := UserFrom(r.Context())
			if !ok {
				a.onError(w, r, apperrors.Unauthorized(MsgNotLoggedIn))
				return
			}
			if !slices.Contains(roles, user.Role) {
				a.onError(w, r, apperrors.Forbidden(MsgForbidden))
				return
			}
			next(w, r, ps)
		}
	}
}

func (a *Authenticator) authenticate(r *http.Request) (*model.User, error) {
	token := a.tokenFrom(r)
	if token == "" {
		return nil, apperrors.Unauthorized(MsgNotLoggedIn)
	}

	claims, err := a.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := a.users(r.Context(), claims.ID)
	switch {
	case err != nil && a.isNotFound(err):
		return nil, apperrors.Unauthorized(MsgUserGone)
	case err != nil:
		return nil, err
	case user == nil:
		return nil, apperrors.Unauthorized(MsgUserGone)
	case user.Active != nil && !*user.Active:
		return nil, apperrors.Unauthorized(MsgUserInactive)
	}
	return user, nil
}

// tokenFrom prefers the Authorization header over the session cookie.
func (a *Authenticator) tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, bearerPrefix))
	}
	if a.cookieName == "" {
		return ""
	}
	cookie, err := r.Cookie(a.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

func UserFrom(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(contextKey{}).(*model.User)
	return user, ok && user != nil
}
