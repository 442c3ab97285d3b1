package adapter

import (
	"fmt"

	"github.com/coconutick512/bot-for-crypt/internal/models"
	"github.com/coconutick512/bot-for-crypt/pkg/utils"
)

// Registry maps a wallet's declared network to its adapter. It is built
// once at startup; only fully working adapters are registered, so a resolve
// miss always means the network is genuinely unsupported.
type Registry struct {
	adapters map[models.Network]Adapter
}

// NewRegistry builds a registry from the given adapters
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{
		adapters: make(map[models.Network]Adapter, len(adapters)),
	}
	for _, a := range adapters {
		r.adapters[a.Network()] = a
	}
	return r
}

// Resolve returns the adapter for a network
func (r *Registry) Resolve(network models.Network) (Adapter, error) {
	a, ok := r.adapters[network]
	if !ok {
		return nil, utils.NewAppError(utils.ErrCodeUnsupportedNetwork,
			fmt.Sprintf("no adapter registered for network %s", network))
	}
	return a, nil
}

// Networks returns the registered networks
func (r *Registry) Networks() []models.Network {
	networks := make([]models.Network, 0, len(r.adapters))
	for n := range r.adapters {
		networks = append(networks, n)
	}
	return networks
}
