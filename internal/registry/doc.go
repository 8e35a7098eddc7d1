// Package registry stores one claim per project under a user-scoped root
// directory:
//
//	~/.local/share/vivarium/
//	├── shop/
//	│   ├── state.json    claim record
//	│   ├── compose.yaml  rendered by setup
//	│   └── .env          compose interpolation variables
//	└── blog/
//	    └── state.json
//
// The directory tree is the only source of truth; nothing is cached between
// invocations. Records are written atomically (temp file + rename) so a
// reader sees either the previous or the new record. A record that cannot
// be read or parsed is treated as absent, so one damaged project never
// blocks the others.
package registry
