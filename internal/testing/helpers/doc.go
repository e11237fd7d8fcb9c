// Package helpers provides test utility functions for factory users.
//
// # Registry Helpers
//
// Each test gets its own registry, reset on cleanup:
//
//	reg := helpers.NewRegistry(t, tdb.Store)
//	fixtures.MustDefine(t, reg, fixtures.Define)
//
// # Strategy Helpers
//
// Fail-fast wrappers with typed results:
//
//	user := helpers.MustBuild[*model.User](t, reg, "user", nil)
//	post := helpers.MustCreate[*model.Post](t, reg, "post", nil)
//	attrs := helpers.MustAttributes(t, reg, "user", factory.Attrs{"first_name": "Bill"})
//	stub := helpers.MustStub(t, reg, "user", nil)
package helpers
