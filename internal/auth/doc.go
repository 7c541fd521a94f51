// Package auth provides the password primitives behind login.
//
// New hashes are bcrypt. Hashes produced by werkzeug's
// generate_password_hash (pbkdf2 and scrypt variants) still verify, so
// accounts seeded by older tooling keep working.
package auth
