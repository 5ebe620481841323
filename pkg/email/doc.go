// Package email sends transactional messages through Postmark, an SMTP relay,
// the local filesystem (development) or the application log.
package email
