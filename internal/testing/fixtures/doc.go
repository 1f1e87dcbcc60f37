// Package fixtures provides test data factories for database-backed tests.
//
// Create a factory with a database connection:
//
//	f := fixtures.New(tdb.DB)
//
// Factory methods go through the repositories and return populated models:
//
//	user := f.CreateUser(t)              // member of Viewers
//	admin := f.CreateAdmin(t)            // member of Admins
//	book := f.CreateBook(t)              // unique title
//	post := f.CreatePost(t, user)        // written by user
//	f.CreateComment(t, post, admin)
//
// Use option functions for customization:
//
//	book := f.CreateBook(t, func(o *fixtures.BookOpts) {
//	    o.Title = "Dune"
//	    o.PublicationYear = 1965
//	})
//
// Fixture users share DefaultPassword. Test data disappears with the
// testdb namespace.
package fixtures
