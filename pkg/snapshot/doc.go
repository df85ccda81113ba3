// Package snapshot reads and writes tree snapshots.
//
// A snapshot is a YAML (or JSON) document describing one vdom tree:
//
//	tag: ul
//	attrs:
//	  - {name: class, value: list}
//	  - {name: onclick, handler: select}
//	children:
//	  - tag: li
//	    attrs: [{name: key, value: a}]
//	    children: [{text: "Apple"}]
//
// Element nodes carry a tag and optional ns, attrs and children. Text nodes
// carry only text. Attribute values are strings, booleans or numbers;
// callbacks are referenced by name through a Registry so that two snapshots
// naming the same handler produce equal callbacks.
//
// Documents are validated against an embedded JSON schema before decoding.
// Failures are reported as internal/errors codes E201 to E204.
package snapshot
