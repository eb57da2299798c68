// Package middleware provides HTTP middleware for the Inkwell API.
//
// The middleware package contains reusable middleware components for
// authentication, authorization, rate limiting, and request processing.
//
// # Available Middleware
//
// Core middleware components:
//
//   - Auth / OptionalAuth: JWT token validation and claims extraction
//   - AdminOnly: admin role gate, run after Auth
//   - RequirePermission: permission-code enforcement with per-record grants
//   - RateLimit: request rate limiting per user/IP
//   - Idempotency: idempotent replay of POST/PATCH requests
//
// # Authentication
//
// The auth middleware validates JWT tokens and extracts user information.
// After authentication, handlers can access user info:
//
//	userID := middleware.GetUserID(r.Context())
//	claims := middleware.GetClaims(r.Context())
//
// OptionalAuth lets a route serve both anonymous and authenticated
// callers; anonymous requests carry nil claims.
//
// # Authorization
//
// RequirePermission enforces a single permission code per route. The
// decision order (admin, anonymous allowance, group permissions,
// per-record grants) lives in the service layer; the middleware only
// translates a denial into 401 or 403.
//
// # Context Values
//
// Middleware sets context values accessible via helper functions:
//
//   - GetUserID(ctx): authenticated user ID
//   - GetClaims(ctx): full token claims, nil when anonymous
//   - GetRequestID(ctx): unique request identifier
package middleware
