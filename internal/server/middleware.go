package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"helplink/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/sirupsen/logrus"
)

const accessTokenCookie = "hl_access_token"

// Context key types to avoid collisions
type contextKey string

const contextKeyActor contextKey = "actor"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		elapsed := time.Since(started)
		s.metrics.ObserveHTTP(r.Method, r.URL.Path, rw.statusCode, elapsed)
		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": elapsed.Milliseconds(),
		}).Info("http request")
	})
}

// RequireAuth verifies the encrypted session cookie against the identity
// provider's JWKS, syncs the verified claims into the local user record and
// attaches the resulting actor to the request context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(accessTokenCookie)
		if err != nil {
			s.logger.WithError(err).Debug("no access token cookie found")
			s.respondMessage(w, http.StatusUnauthorized, "请先登录")
			return
		}

		var accessToken string
		err = s.cookie.Decode(accessTokenCookie, cookie.Value, &accessToken)
		if err != nil {
			s.logger.WithError(err).Error("failed to decrypt access token")
			s.respondMessage(w, http.StatusUnauthorized, "请先登录")
			return
		}

		set, err := s.jwksCache.Lookup(r.Context(), s.jwksURL)
		if err != nil {
			s.logger.WithError(err).Error("failed to fetch JWKS")
			s.respondMessage(w, http.StatusUnauthorized, "请先登录")
			return
		}

		token, err := jwt.Parse(
			[]byte(accessToken),
			jwt.WithKeySet(set),
			jwt.WithValidate(true),
		)
		if err != nil {
			s.logger.WithError(err).Error("failed to parse JWT")
			s.respondMessage(w, http.StatusUnauthorized, "请先登录")
			return
		}

		userID, ok := token.Subject()
		if !ok || userID == "" {
			s.logger.Error("no user ID in JWT subject claim")
			s.respondMessage(w, http.StatusUnauthorized, "请先登录")
			return
		}

		actor, err := s.syncActor(r.Context(), userID, token)
		if err != nil {
			s.logger.WithError(err).Error("failed to sync authenticated user")
			s.respondMessage(w, http.StatusInternalServerError, "服务器内部错误")
			return
		}

		s.logger.WithFields(logrus.Fields{
			"user_id": actor.UserID,
			"admin":   actor.Admin,
		}).Debug("authenticated user")

		ctx := context.WithValue(r.Context(), contextKeyActor, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// syncActor upserts the token claims into the user store and reads back the
// stored record, which carries the admin flag.
func (s *Service) syncActor(ctx context.Context, userID string, token jwt.Token) (types.Actor, error) {
	user := &types.User{ID: userID}

	var username string
	if err := token.Get("preferred_username", &username); err == nil && username != "" {
		user.Username = username
	}

	var email string
	if err := token.Get("email", &email); err == nil && user.Username == "" {
		user.Username = email
	}

	var fullName string
	if err := token.Get("name", &fullName); err == nil && fullName != "" {
		user.FullName = &fullName
	}

	var phone string
	if err := token.Get("phone_number", &phone); err == nil && phone != "" {
		user.Phone = &phone
	}

	if err := s.engine.SyncIdentity(ctx, user); err != nil {
		return types.Actor{}, err
	}

	stored, err := s.engine.User(ctx, userID)
	if err != nil {
		return types.Actor{}, err
	}

	return types.Actor{UserID: stored.ID, Admin: stored.IsAdmin()}, nil
}

func (s *Service) actorFromContext(ctx context.Context) types.Actor {
	actor, _ := ctx.Value(contextKeyActor).(types.Actor)
	return actor
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newPath := strings.TrimSuffix(path, "/")
			newURL := *r.URL
			newURL.Path = newPath

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
