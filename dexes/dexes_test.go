package dexes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeAliases(t *testing.T) {
	require.Equal(t, "orca", Normalize("Whirlpool"))
	require.Equal(t, "orca", Normalize("whirlpool "))
	require.Equal(t, "raydium", Normalize("Raydium CLMM"))
	require.Equal(t, "meteora", Normalize("Meteora DLMM"))
	require.Equal(t, "solfi", Normalize("SolFi V2"))
	require.Equal(t, "unknown xyz", Normalize(" Unknown XYZ "))
	require.Equal(t, "", Normalize(""))
}

func TestNormalizeSetDedupes(t *testing.T) {
	labels := NormalizeSet([]string{"Whirlpool", "Orca", "Raydium CLMM", "raydium", ""})
	require.Equal(t, []string{"orca", "raydium"}, labels)
}

func TestIncludeAllVsAny(t *testing.T) {
	route := []string{"orca", "raydium"}

	all := NewPolicy([]string{"orca"}, IncludeAll, nil)
	require.False(t, all.Allows(route))

	any := NewPolicy([]string{"orca"}, IncludeAny, nil)
	require.True(t, any.Allows(route))
}

func TestExcludeWinsOverInclude(t *testing.T) {
	policy := NewPolicy([]string{"pump", "orca"}, IncludeAny, []string{"pump"})
	require.False(t, policy.Allows([]string{"pump", "orca"}))
	require.True(t, policy.Allows([]string{"orca"}))
}

func TestEmptyIncludeMeansUnconstrained(t *testing.T) {
	policy := NewPolicy(nil, IncludeAll, nil)
	require.True(t, policy.Allows([]string{"orca", "meteora", "anything"}))
}

func TestPolicyNormalizesMembers(t *testing.T) {
	policy := NewPolicy([]string{"Whirlpool"}, IncludeAll, []string{" PUMP "})
	require.True(t, policy.Allows([]string{"orca"}))
	require.False(t, policy.Allows([]string{"pump"}))
}
