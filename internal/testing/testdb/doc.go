// Package testdb provides test database utilities for the bookshelf.
//
// Each call to New connects to SurrealDB, creates a unique namespace, applies
// every migrations/*.surql file in order, and registers cleanup that removes
// the namespace again:
//
//	func TestBookRepository_Create(t *testing.T) {
//	    tdb := testdb.New(t)
//	    repo := repository.NewBookRepository(tdb.DB)
//	    ...
//	}
//
// Connection settings come from TEST_DB_HOST, TEST_DB_PORT, TEST_DB_USER
// and TEST_DB_PASSWORD. Without a reachable database the test is skipped;
// TEST_DB_REQUIRED=1 turns that into a failure for CI.
package testdb
