// Package data embeds the default car catalog.
package data

import _ "embed"

// Cars is the JSON catalog shipped with the binary.
//
//go:embed cars.json
var Cars []byte
