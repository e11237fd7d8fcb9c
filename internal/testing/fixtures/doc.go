// Package fixtures holds the factory definitions shared by the tests.
//
// # Factories
//
//   - user: Jimi Hendrix, email derived from first and last name
//   - admin: Ben Stein, admin, email drawn from the email sequence
//   - post: "Test Post" with an author association to user
//   - saved_author_post: post whose author is always created
//
// # Traits
//
//   - with_password: password plus a bcrypt hash derived from it
//   - with_login: login "Awesome!" (nested family only)
//
// # Nested family
//
// DefineNested registers user > admin > nested_admin >
// double_nested_admin > triple_nested_admin, plus admin_with_traits,
// which always applies with_login.
package fixtures
