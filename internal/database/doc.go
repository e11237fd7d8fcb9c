// Package database provides the SurrealDB connection used by the surreal
// object store and by integration tests.
//
// The Database interface provides three query methods:
//   - Query: Returns every statement result wrapped as {status, result}
//   - QueryOne: Returns the first record of the first statement
//   - Execute: No return value (for CREATE/UPDATE/DELETE mutations)
//
// # Error Handling
//
// Standard errors are defined for common failure cases:
//   - ErrNotFound: Record does not exist
//   - ErrDuplicate: Unique constraint violation
//   - ErrConnection: Database connection issues
//   - ErrQuery: Query execution failures
//
// Use errors.Is() to check error types:
//
//	if errors.Is(err, database.ErrNotFound) {
//	    // Handle missing record
//	}
//
// # Usage Example
//
//	db := database.NewSurrealDB(cfg)
//	if err := db.Connect(ctx); err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	record, err := db.QueryOne(ctx, "CREATE type::table($table) CONTENT $content",
//	    map[string]interface{}{"table": "user", "content": fields})
//	id := database.RecordID(record)
package database
