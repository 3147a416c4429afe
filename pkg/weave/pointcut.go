package weave

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Pointcut selects the methods a handler is bound to.
type Pointcut interface {
	Matches(desc MethodDescription) bool
}

// PointcutFunc adapts a function to Pointcut.
type PointcutFunc func(desc MethodDescription) bool

// Matches implements Pointcut.
func (f PointcutFunc) Matches(desc MethodDescription) bool {
	return f(desc)
}

// Any matches every method.
func Any() Pointcut {
	return PointcutFunc(func(MethodDescription) bool { return true })
}

// Named matches methods whose name is one of names.
func Named(names ...string) Pointcut {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return PointcutFunc(func(desc MethodDescription) bool {
		_, ok := set[desc.Name]
		return ok
	})
}

// NameGlob matches method names against a doublestar glob such as "Get*" or
// "{Deposit,Withdraw}".
func NameGlob(pattern string) (Pointcut, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid method pattern %q", pattern)
	}
	return PointcutFunc(func(desc MethodDescription) bool {
		ok, err := doublestar.Match(pattern, desc.Name)
		return err == nil && ok
	}), nil
}

// MustNameGlob is like NameGlob but panics on an invalid pattern.
func MustNameGlob(pattern string) Pointcut {
	p, err := NameGlob(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// OfKind matches methods of the given kinds.
func OfKind(kinds ...Kind) Pointcut {
	return PointcutFunc(func(desc MethodDescription) bool {
		for _, k := range kinds {
			if desc.Kind == k {
				return true
			}
		}
		return false
	})
}

// And matches when every pointcut matches.
func And(pointcuts ...Pointcut) Pointcut {
	return PointcutFunc(func(desc MethodDescription) bool {
		for _, p := range pointcuts {
			if !p.Matches(desc) {
				return false
			}
		}
		return true
	})
}

// Or matches when at least one pointcut matches.
func Or(pointcuts ...Pointcut) Pointcut {
	return PointcutFunc(func(desc MethodDescription) bool {
		for _, p := range pointcuts {
			if p.Matches(desc) {
				return true
			}
		}
		return false
	})
}

// Not inverts a pointcut.
func Not(p Pointcut) Pointcut {
	return PointcutFunc(func(desc MethodDescription) bool {
		return !p.Matches(desc)
	})
}
