// Package requestid assigns every HTTP request an identifier, echoes it in
// the X-Request-ID response header and exposes it to handlers and logs.
package requestid
