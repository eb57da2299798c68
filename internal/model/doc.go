// Package model defines domain entities and data structures for the Inkwell API.
//
// The model package contains all struct definitions for domain objects, request/response
// types, and error definitions. Models are used across all layers of the application.
//
// # Audit Fields
//
// Content entities (Post, Category) carry a common set of audit fields
// maintained by the service layer:
//
//   - CreatedBy / ModifiedBy: user record IDs
//   - CreatedOn / ModifiedOn: timestamps set by the database
//   - IsActive: soft-delete flag; defaults to true
//
// Deleting a record flips IsActive to false rather than removing the row.
// Default listings exclude inactive records.
//
// # Permission Codes
//
// Permissions are dotted codes of the form "<app>.<resource>.<action>",
// e.g. "blog.post.create". See permission.go for parsing and wildcard
// expansion rules.
//
// # Error Handling
//
// API errors use RFC 9457 Problem Details (errors.go) with typed
// constructors for each error category. Field-level validation failures
// are reported as FieldError entries on the problem.
package model
