package binding

import "github.com/specialistvlad/dataexpr/internal/options"

// Host is the component a Binding is attached to. It receives the options the
// binding forwards to the collection view it renders.
type Host interface {
	SetCollectionOption(name options.Name, value any)
}

// HostFunc adapts a function to Host.
type HostFunc func(name options.Name, value any)

// SetCollectionOption implements Host.
func (f HostFunc) SetCollectionOption(name options.Name, value any) { f(name, value) }

type nopHost struct{}

func (nopHost) SetCollectionOption(options.Name, any) {}
