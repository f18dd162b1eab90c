// Package outlook wraps the Outlook desktop automation object model.
//
// The package is organised in three layers:
//
//   - Object and Connector abstract the late-bound automation surface. On
//     Windows they are backed by COM through go-ole; elsewhere Connect always
//     fails with a connection error.
//   - Formatters turn host items (mail, appointments, contacts, rules) into
//     JSON-ready Records. A formatter never fails: fields that cannot be read
//     fall back to defaults, and an item that cannot be read at all becomes a
//     single-key {"error": ...} record.
//   - Client implements the mailbox operations (listing, searching, sending,
//     calendar, contacts, out-of-office) on top of a fresh host session per
//     call and a shared FolderCache for custom folder lookups.
//
// Failures are reported as *Error values carrying a Kind (connection,
// not_found, validation, unsupported, host) so callers can map them to a
// response envelope in one place.
package outlook
