// Package mongo provides MongoDB implementations of webauth.UserStore and of
// the scs.Store that holds sessions, using the v2 Go driver.
//
// # Collections
//
//   - users: one document per user.  EnsureIndexes adds a unique index on
//     email; duplicate key errors from it are reported as
//     webauth.ErrDuplicateUser.
//   - sessions: one document per session token with the encoded session data
//     and its expiry.  A TTL index on expiry lets MongoDB drop expired
//     sessions; reads also ignore them so expiry is exact.
//
// # Usage
//
//	client, _ := mongo.Connect(options.Client().ApplyURI(uri))
//	db := client.Database("webauth")
//	users := mongostore.NewUserStore(db)
//	sessions := mongostore.NewSessionStore(db)
//	if err := users.EnsureIndexes(ctx); err != nil { ... }
//	if err := sessions.EnsureIndexes(ctx); err != nil { ... }
package mongo
