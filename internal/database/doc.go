// Package database provides the SurrealDB access layer for the bookshelf.
//
// The Database interface has three query methods:
//   - Query: one {status, result} entry per statement
//   - QueryOne: the first record of the first statement, or ErrNotFound
//   - Execute: no return value (for CREATE/UPDATE/DELETE mutations)
//
// # Atomic Batches
//
// Statements that must succeed together (deleting a post together with its
// comments) go through AtomicBatch. Statements are accumulated in memory and
// sent as one BEGIN TRANSACTION / COMMIT TRANSACTION block, with variables
// namespaced per statement so $id in two statements does not collide.
//
//	err := database.NewAtomicBatch().
//	    Add("DELETE comment WHERE post = type::record($id)", vars).
//	    Add("DELETE type::record($id)", vars).
//	    Execute(ctx, db)
//
// # Error Handling
//
// Unique index violations are reported as ErrDuplicate, so repositories can
// translate them without inspecting driver messages:
//
//	if errors.Is(err, database.ErrDuplicate) {
//	    // a book with that title already exists
//	}
package database
