// Package repository implements the data access layer for the bookshelf.
//
// Each repository struct handles the records of one entity (book, post,
// comment, user) over a database.Database.
//
// # Repository Pattern
//
//   - Constructor function (NewXxxRepository) accepts a database connection
//   - Get methods return (nil, nil) when the record does not exist
//   - Unique index violations come back wrapped in database.ErrDuplicate
//   - Results are decoded into model structs; record links such as a post's
//     author become "table:id" strings
//
// # Query Patterns
//
//   - Parameterized queries with $variable syntax
//   - type::record() for safe ID handling
//   - time::now() for automatic timestamps
//   - Posts are deleted together with their comments through database.AtomicBatch
//
// # Example Usage
//
//	repo := NewBookRepository(db)
//	book, err := repo.GetByTitle(ctx, "Dune")
//	if err != nil {
//	    return err
//	}
//	if book == nil {
//	    // Handle not found
//	}
package repository
