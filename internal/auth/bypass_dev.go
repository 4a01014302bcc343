//go:build dev

package auth

// BypassAvailable reports whether GuardOptions.Bypass can take effect.
//
// SECURITY WARNING: dev builds only. A binary built with -tags dev and
// auth.guard_bypass: true serves every admin page without a login.
const BypassAvailable = true
