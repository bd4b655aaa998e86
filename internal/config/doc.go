// Package config defines the format-agnostic option model loaded from
// configuration files, along with the Loader interface that format-specific
// packages implement.
//
// The `config.Model` is the single source of truth for the options a binding
// starts with. Concrete loaders for HCL, TOML and YAML live in separate
// packages (hcl_adapter, fileconfig).
package config
