// Package message decodes the typed bodies of Galaxy Buds Pro protocol
// frames.
//
// Each wire message ID maps to one decoder in an explicit table; the
// frame layer hands a body here after CRC validation. Revision-aware
// messages (extended status) derive their layout from a declarative
// presence table rather than scattered conditionals, so the
// revision-to-field mapping stays auditable in one place.
//
// Unknown IDs are not errors: Decode returns a nil Message so the
// frame can still be delivered to listeners with its raw body.
package message
