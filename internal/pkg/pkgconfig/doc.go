// Package pkgconfig reads service settings through the Config interface.
//
// Viper backs it in production. Every known key has an entry in Defaults, so
// a missing file or key never yields a zero value by accident, and a few keys
// are bound to environment variables (see EnvBindings). Binary values are
// base64 encoded.
package pkgconfig
