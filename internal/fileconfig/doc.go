// Package fileconfig loads option files of every supported format.
//
// # Formats
//
// The format is chosen by file extension:
//
//	.hcl          hcl_adapter
//	.toml         pelletier/go-toml/v2
//	.yaml, .yml   gopkg.in/yaml.v3
//
// TOML and YAML documents are decoded into a generic map and handed to
// config.FromMap, so all three formats share one set of keys.
//
// # Ordering
//
// Paths are processed in argument order. A directory contributes every
// supported file below it in lexical order. Later files override earlier
// ones; items append.
package fileconfig
