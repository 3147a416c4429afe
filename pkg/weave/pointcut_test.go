package weave

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPointcutCombinators(t *testing.T) {
	t.Parallel()

	withdraw := MethodDescription{Owner: "bank.Account", Name: "Withdraw", Kind: KindInstanceMethod}
	deposit := MethodDescription{Owner: "bank.Account", Name: "Deposit", Kind: KindInstanceMethod}
	open := MethodDescription{Owner: "bank.Account", Name: "Open", Kind: KindStaticMethod}

	cases := []struct {
		name     string
		pointcut Pointcut
		matches  []MethodDescription
		rejects  []MethodDescription
	}{
		{name: "any", pointcut: Any(), matches: []MethodDescription{withdraw, deposit, open}},
		{name: "named", pointcut: Named("Withdraw", "Open"), matches: []MethodDescription{withdraw, open}, rejects: []MethodDescription{deposit}},
		{name: "glob", pointcut: MustNameGlob("{With,De}*"), matches: []MethodDescription{withdraw, deposit}, rejects: []MethodDescription{open}},
		{name: "kind", pointcut: OfKind(KindStaticMethod), matches: []MethodDescription{open}, rejects: []MethodDescription{withdraw}},
		{name: "and", pointcut: And(OfKind(KindInstanceMethod), Named("Deposit")), matches: []MethodDescription{deposit}, rejects: []MethodDescription{withdraw, open}},
		{name: "or", pointcut: Or(Named("Deposit"), OfKind(KindStaticMethod)), matches: []MethodDescription{deposit, open}, rejects: []MethodDescription{withdraw}},
		{name: "not", pointcut: Not(Named("Deposit")), matches: []MethodDescription{withdraw, open}, rejects: []MethodDescription{deposit}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			for _, desc := range tc.matches {
				require.True(t, tc.pointcut.Matches(desc), "expected %s to match", desc)
			}
			for _, desc := range tc.rejects {
				require.False(t, tc.pointcut.Matches(desc), "expected %s to be rejected", desc)
			}
		})
	}
}

func TestNameGlobRejectsInvalidPatterns(t *testing.T) {
	t.Parallel()

	_, err := NameGlob("[Get")
	require.Error(t, err)
	require.Panics(t, func() { MustNameGlob("[Get") })
}
