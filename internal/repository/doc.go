// Package repository implements the data access layer for the Inkwell API.
//
// The repository package contains all database operations using SurrealDB.
// Each repository struct handles CRUD operations for a specific domain entity.
//
// # Repository Pattern
//
// All repositories follow a consistent pattern:
//
//   - Constructor function (NewXxxRepository) accepts a database connection
//   - Methods implement specific data operations (Create, GetByID, Update, List, etc.)
//   - SurrealQL queries are used for all database interactions
//   - Results are parsed and mapped to model structs
//
// # Soft Delete
//
// Content repositories (post, category) never remove rows on delete; they
// flip the is_active flag. List methods filter on is_active = true by
// default, with ListAll variants for administrative views.
//
// # Error Handling
//
// Repositories translate driver failures into the sentinel errors of the
// database package (ErrNotFound, ErrDuplicate) so services can branch with
// errors.Is().
package repository
