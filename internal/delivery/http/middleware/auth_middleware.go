package middleware

import (
	"context"
	"net/http"
	"strings"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/pkg/jwt"
	"go-clinic-management/pkg/response"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type contextKey string

const ActorKey contextKey = "actor"

// RevokedTokenPrefix marks access tokens the identity service has revoked
const RevokedTokenPrefix = "revoked_token:"

type AuthMiddleware struct {
	jwtService  *jwt.JWTService
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewAuthMiddleware(jwtService *jwt.JWTService, redisClient *redis.Client, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		redisClient: redisClient,
		log:         log,
	}
}

// Authenticate resolves the bearer token into an entity.Actor on the request context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		if claims.TokenType != jwt.AccessToken {
			response.Unauthorized(w, "Invalid token type")
			return
		}

		role := entity.RoleNameByID(claims.RoleID)
		if role == "" {
			response.Unauthorized(w, "Unknown role")
			return
		}

		if m.redisClient != nil {
			revoked, err := m.redisClient.Exists(r.Context(), RevokedTokenPrefix+claims.TokenID).Result()
			if err != nil {
				m.log.Warnf("Failed to check token revocation: %+v", err)
				response.InternalServerError(w, "Failed to validate token")
				return
			}
			if revoked > 0 {
				response.Unauthorized(w, "Token has been revoked")
				return
			}
		}

		actor := entity.Actor{UserID: claims.UserID, Role: role}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ActorKey, actor)))
	})
}

// GetActorFromContext extracts the authenticated caller from context
func GetActorFromContext(ctx context.Context) (entity.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(entity.Actor)
	return actor, ok
}
