// Package session keeps browser sessions for the server-rendered pages.
//
// It wraps github.com/alexedwards/scs/v2. Sessions live in memory unless a
// store URL is configured, in which case they are persisted with the
// sqlite3 store:
//
//	manager, err := session.New(session.Config{StoreURL: "sqlite3:sessions.db"})
//	handler := manager.LoadAndSave(mux)
//
// Besides the logged in user id, the session carries flash messages and the
// one-shot tokens of delete confirmation pages.
package session
