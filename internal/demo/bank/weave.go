package bank

import (
	"github.com/alexisbeaulieu97/advisor/internal/registry"
	"github.com/alexisbeaulieu97/advisor/pkg/weave"
)

// Class is the woven name of *Account.
const Class = "*bank.Account"

// Weave builds the Account type with every method, InterestRate and
// NewAccount routed through the advices r assembles.
func Weave(r *registry.Registry) (*weave.Type, error) {
	b, err := weave.Reflect(&Account{})
	if err != nil {
		return nil, err
	}
	b.StaticFunc("InterestRate", InterestRate).ConstructorFunc(NewAccount)

	b, err = r.Transform(b)
	if err != nil {
		return nil, err
	}
	return b.Build()
}
