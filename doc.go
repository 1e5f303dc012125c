// Package designkit provides role-based access control and editing primitives
// for low-code designer applications.
//
// Permissions are configured per object (a data collection such as "orders"
// or "customers") and evaluated against the roles a user holds, expanded
// through role inheritance.
//
// # Core Concepts
//
// Role: A named role that may inherit other roles. Inheritance is resolved
// breadth-first, cycles are tolerated, and the first definition of a name wins.
//
// Object permissions: Per object, the actions open to everyone (public
// access) and, per role, the allowed actions plus optional field-level and
// row-level restrictions.
//
// Fail-open: An object with no permission configuration allows every action.
// Configure an object to restrict it.
//
// # Key Features
//
//   - Pure evaluation: Evaluate and ResolveRoles never error or panic
//   - Field-level permissions: default-allow read/write flags per field
//   - Row-level permissions: row filters carried in the check result and applied with RowFilterMatcher
//   - Conditions: eq, neq, gt, gte, lt, lte, in, not_in, contains, is_null, is_not_null
//   - Store: concurrency-safe holder answering checks for one user
//   - Persistence: Postgres tables, migrations and an audit log through dbkit
//   - Middleware: net/http guards returning 403 on denial
//
// # Basic Usage
//
//	// 1. Define the policy (at application startup)
//	policy := designkit.NewPolicy()
//
//	policy.DefineRole("viewer").Label("Viewer").
//	    DefineRole("editor").Inherits("viewer").
//	    DefineRole("admin").Inherits("editor")
//
//	policy.Object("orders").
//	    Public(designkit.ActionRead).
//	    Grant("editor").
//	        Actions(designkit.ActionCreate, designkit.ActionUpdate).
//	        Field("margin", designkit.Bool(false), designkit.Bool(false)).
//	        Rows(`owner == user`, designkit.ActionUpdate).
//	    Grant("admin").
//	        Actions(designkit.ActionDelete, designkit.ActionExport)
//
//	if err := policy.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	// 2. Check permissions
//	store := designkit.NewStoreFromPolicy(policy, "editor")
//	res := store.Check("orders", designkit.ActionUpdate, designkit.Record{"owner": "u1"})
//	if res.Allowed && res.CanWriteField("total") {
//	    // ...
//	}
//
// # Persistence
//
//	service := designkit.NewService(db)
//	service.Migrate(ctx)
//
//	ctx = designkit.WithActorID(ctx, adminID)
//	service.SavePolicy(ctx, policy)
//
//	store, err := service.NewStore(ctx, []string{"editor"}, nil)
//
// # Middleware Usage
//
//	mw := designkit.NewMiddleware(store,
//	    designkit.WithUserRolesExtractor(rolesFromSession),
//	)
//
//	mux.Handle("DELETE /objects/{object}/records/{id}",
//	    mw.RequirePermission(designkit.ActionDelete, designkit.ObjectFromParam("object"))(deleteHandler))
//
// # Editing Primitives
//
// The history, selection and clipboard subpackages hold per-designer editing
// state: a bounded undo/redo history, a multi-select set and a deep-copy
// clipboard. The collab subpackage publishes edits and presence to a
// collaboration service over WebSocket.
//
// # Audit Log
//
// Every policy change made through Service is logged with:
//   - Actor (who made the change)
//   - Action (role_saved, role_deleted, permissions_saved, ...)
//   - Object and role affected
//   - Timestamp
//   - Request metadata (IP, user agent, request ID)
package designkit
