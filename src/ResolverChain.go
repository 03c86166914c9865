package sheet

import (
	"errors"

	"formulaSheet/contracts"
)

// NewResolverChain combines two resolvers: addresses the first one reports
// as unresolved fall through to the second.
func NewResolverChain(first contracts.Resolver, second contracts.Resolver) contracts.Resolver {
	if second == nil {
		return first
	}

	if first == nil {
		return second
	}

	return func(addr contracts.Address) (float64, error) {
		value, err := first(addr)
		if errors.Is(err, contracts.UnresolvedError) {
			return second(addr)
		}
		return value, err
	}
}
