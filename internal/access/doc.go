// Package access implements the permission resolution engine.
//
// The engine answers two kinds of questions for an explicitly passed user:
//
//   - navigation questions (dashboard, page, feature action, CRUD verb), answered
//     by Resolver from the user's roles and per-user overrides;
//   - document questions (read, write, delete on an individually governed policy),
//     answered by ResolveResourcePermission from the policy's grant rows.
//
// # Navigation precedence
//
// Resolver evaluates tiers top to bottom and the first tier holding an entry wins:
//
//  1. a full-access role (dashboard, page and CRUD queries only)
//  2. the user's individual override for the exact key
//  3. the user's department override, when the query is tagged with the user's department
//  4. the OR of every role the user holds
//  5. deny
//
// An override key that is present is an explicit decision, including false.
// An absent key defers to the next tier.
//
// # Document grants
//
// A grant row for the user wins over the row for the user's primary role. Additional
// roles and full-access roles play no part in document grants, so every document
// decision can be traced back to a stored row.
//
// Every function in this package is a pure computation over its arguments and is
// safe for concurrent use.
package access
