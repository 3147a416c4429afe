package weave

import (
	"fmt"
	"strings"
)

// Kind distinguishes the interception kinds a woven type exposes.
type Kind int

const (
	KindInstanceMethod Kind = iota
	KindStaticMethod
	KindConstructor
)

// ConstructorName is the method name reported for constructor calls.
const ConstructorName = "<init>"

func (k Kind) String() string {
	switch k {
	case KindInstanceMethod:
		return "instance"
	case KindStaticMethod:
		return "static"
	case KindConstructor:
		return "constructor"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses the textual form produced by Kind.String. An empty string
// selects instance methods.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "instance":
		return KindInstanceMethod, nil
	case "static":
		return KindStaticMethod, nil
	case "constructor":
		return KindConstructor, nil
	default:
		return 0, fmt.Errorf("unknown interception kind %q", s)
	}
}

// MethodDescription describes a method prepared for interception.
type MethodDescription struct {
	Owner string
	Name  string
	Kind  Kind
}

func (d MethodDescription) String() string {
	return fmt.Sprintf("%s.%s (%s)", d.Owner, d.Name, d.Kind)
}
