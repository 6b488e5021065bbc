// Package writers turns counter snapshots into serialized outputs.
//
// Writers own all presentation knowledge (text table, JSON, JSONL
// progress). Every format goes through pkg/api (v1) so the wire shape
// stays stable.
package writers
