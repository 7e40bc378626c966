// Package pkgserial builds business-facing serial strings.
//
// A Serializer accumulates fed bytes and is then built exactly once. Build
// returns a Task immediately; the work runs in its own goroutine and may
// perform I/O (the ticket strategy asks an Inspector whether a code is
// already taken). After Build, the serializer rejects further input with
// ErrConsumed.
//
// Strategies are reusable factories that hand out fresh serializers:
//   - TimeStrategy: fixed-width digits from a shared pkguid.Frame.
//   - TicketStrategy: dated alphanumeric tickets checked by an Inspector.
//   - HashStrategy: UUID-shaped output from salted MD5/SHA-1, or random v4.
//   - Random62Strategy: fixed-length base-62 strings.
//   - CounterStrategy: prefixed auto-increment serials.
//
// Anything implementing io.WriterTo (pkguid.Token does) can contribute its
// bytes through Contribute.
package pkgserial
