// Package audit records security-relevant operator actions.
//
// Events are written as RFC5424 syslog lines (to stdout by default) and,
// when AUDIT_DATABASE_URL is set, persisted to the messages table:
//
//	audit.Log(audit.LoginEvent{Username: "emilys", ClientIP: ip, Success: true})
//
// Set STOREFRONT_AUDIT_ENABLED=false to turn auditing off.
package audit
