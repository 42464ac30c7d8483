// Package trustedhost provides a middleware rejecting requests whose Host
// header is not on the allow list.
//
// Patterns:
//   - "*" allows every host
//   - "*.example.com" allows every subdomain of example.com, not example.com itself
//   - anything else must match the host exactly
//
// Matching ignores case and the port. Rejected requests get
// 400 "Invalid host header" as plain text.
//
// Usage:
//
//	app.Use(trustedhost.New(cfg.AllowedHosts...))
package trustedhost
