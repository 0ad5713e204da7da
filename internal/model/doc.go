// Package model defines the entities tracked by fintrack: bank accounts, credit cards,
// categories and the transactions that reference them.
//
// Transactions reference categories by name rather than id. Renaming or deleting a
// category therefore rewrites the category field of the affected transactions; see the
// state package for those cascades.
package model
