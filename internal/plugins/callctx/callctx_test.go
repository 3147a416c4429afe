package callctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/advisor/pkg/advice"
)

type startKey struct{}

func TestAttachAndLookup(t *testing.T) {
	args := advice.Args{context.Background(), 100}

	require.True(t, Attach(args, startKey{}, "outer"))
	v, ok := Lookup(args, startKey{})
	require.True(t, ok)
	require.Equal(t, "outer", v)

	_, ok = Lookup(args, "other")
	require.False(t, ok)
}

func TestNestedCallDoesNotSeeOuterValues(t *testing.T) {
	outer := advice.Args{context.Background()}
	require.True(t, Attach(outer, startKey{}, "outer"))

	// The body forwards its rewritten context into a nested call.
	nested := advice.Args{outer[0]}
	_, ok := Lookup(nested, startKey{})
	require.False(t, ok)

	require.True(t, Attach(nested, startKey{}, "nested"))
	v, _ := Lookup(nested, startKey{})
	require.Equal(t, "nested", v)
	v, _ = Lookup(outer, startKey{})
	require.Equal(t, "outer", v)
}

func TestCallsWithoutContext(t *testing.T) {
	for name, args := range map[string]advice.Args{
		"empty":       nil,
		"no context":  {42},
		"nil context": {nil},
	} {
		t.Run(name, func(t *testing.T) {
			require.False(t, Attach(args, startKey{}, 1))
			_, ok := Lookup(args, startKey{})
			require.False(t, ok)
			require.False(t, Replace(args, context.Background()))
		})
	}
}

func TestReplace(t *testing.T) {
	type k struct{}
	args := advice.Args{context.Background()}
	ctx := context.WithValue(context.Background(), k{}, "v")

	require.True(t, Replace(args, ctx))
	got, ok := Context(args)
	require.True(t, ok)
	require.Equal(t, "v", got.Value(k{}))
	require.False(t, Replace(args, nil))
}
