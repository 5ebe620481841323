// Package jwt issues and verifies HS256 bearer tokens bound to a user id and
// its roles.
package jwt
