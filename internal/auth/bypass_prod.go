//go:build !dev

package auth

// BypassAvailable is false in production builds: the guard ignores
// GuardOptions.Bypass and config validation rejects the flag outright.
const BypassAvailable = false
