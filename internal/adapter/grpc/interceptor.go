package grpc

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// UserIDHeader carries the opaque id of the calling user
const UserIDHeader = "x-user-id"

type userIDKey struct{}

// WithUserID returns a context carrying the caller's user id
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the caller's user id set by AuthInterceptor
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

// AuthInterceptor returns a gRPC unary server interceptor that validates
// the authorization token from request metadata and resolves the caller.
// If the token or the user id is missing or invalid, it returns status.Unauthenticated.
func AuthInterceptor(validToken string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		if strings.TrimPrefix(authHeaders[0], "Bearer ") != validToken {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		userIDs := md.Get(UserIDHeader)
		if len(userIDs) == 0 || strings.TrimSpace(userIDs[0]) == "" {
			return nil, status.Error(codes.Unauthenticated, "missing user id")
		}

		return handler(WithUserID(ctx, strings.TrimSpace(userIDs[0])), req)
	}
}

// LoggingInterceptor logs every unary call with its status code and duration
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("grpc")

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("duration", time.Since(start)),
		}
		if userID, ok := UserIDFromContext(ctx); ok {
			fields = append(fields, zap.String("user_id", userID))
		}

		switch code {
		case codes.OK:
			logger.Info("request handled", fields...)
		case codes.Internal, codes.Unknown, codes.Unavailable:
			logger.Error("request failed", append(fields, zap.Error(err))...)
		default:
			logger.Warn("request rejected", append(fields, zap.Error(err))...)
		}
		return resp, err
	}
}
