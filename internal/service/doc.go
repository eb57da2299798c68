// Package service contains the business logic layer.
//
// Services own validation, permission enforcement, and orchestration
// across repositories. Each service declares the repository interfaces
// it depends on, so storage can be swapped or mocked without touching
// business rules. Handlers translate the sentinel errors in errors.go
// into HTTP problem responses.
package service
