// Package pkgerror defines the structured Error used across the application.
//
// Core packages return plain sentinel errors. The usecase layer maps them to
// an Error carrying a user-facing message, a type and a stable code, which the
// HTTP edge turns into a status code and the CLI into an exit status.
package pkgerror
