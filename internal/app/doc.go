// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle, decoupled
// from any specific entrypoint like a CLI or server.
//
// An App loads option files into an options.Store, binds a binding.Binding to
// it and resolves the configured value against the configured items. In watch
// mode it keeps running, pushes every change to the option files through the
// store and resolves again.
package app
