//go:build !wasm
// +build !wasm

// Package gae provides a Google Cloud Datastore implementation of
// webauth.UserStore.  It supports multi-tenancy through Datastore namespaces.
//
// # Datastore Kinds
//
//   - User: user accounts keyed by a generated id
//   - UserEmail: one entity per email, keyed by the email itself, pointing at
//     the owning User.  Creating both in one transaction is what keeps emails
//     unique.
//
// # Usage
//
//	client, _ := datastore.NewClient(ctx, projectID)
//	users := gae.NewUserStore(client, "")  // default namespace
package gae
