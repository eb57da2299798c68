// Package helpers provides test utilities for the Inkwell API.
//
// The helpers package covers token signing, HTTP request building, and
// response and database assertions for tests that drive handlers or
// full middleware stacks.
//
// # Tokens
//
// JWTHelper signs tokens directly and exposes a jwt.Service sharing the
// same key, so minted tokens validate against services built from it:
//
//	signer := helpers.NewJWTHelper(t)
//	token := signer.GenerateToken(user)
//
// # Requests
//
// Build JSON requests fluently:
//
//	req := helpers.NewRequest(t, http.MethodPost, "/v1/posts").
//	    WithAuth(signer, user).
//	    WithBody(body).
//	    Build()
//
// # Assertions
//
// Check responses and database state:
//
//	helpers.AssertProblemDetails(t, rr, http.StatusForbidden, model.ErrCodeForbidden)
//	helpers.AssertRecordExists(t, db, "post", "post:123")
package helpers
