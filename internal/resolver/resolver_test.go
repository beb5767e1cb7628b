package resolver

import (
	"fmt"
	"testing"

	"github.com/signature-opensource/cksetup/internal/naming"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSource = cksetup.ScriptSource{Name: "test"}

func edge(t *testing.T, from, to string) Edge {
	t.Helper()
	raw := fmt.Sprintf("T.%s.to.%s.sql", from, to)
	n, err := naming.TryParse(raw, raw, true)
	require.NoError(t, err)
	e, ok := EdgeOf(cksetup.NewScript(n, "sql", testSource, cksetup.StaticContent("")))
	require.True(t, ok, raw)
	return e
}

func ver(s string) cksetup.Version { return *cksetup.MustParseVersion(s) }

func pairs(chain []Edge) []string {
	out := make([]string, len(chain))
	for i, e := range chain {
		out[i] = e.From.String() + "->" + e.To.String()
	}
	return out
}

func TestResolve_PrefersShortcut(t *testing.T) {
	var edges []Edge
	for i := 0; i < 7; i++ {
		edges = append(edges, edge(t, fmt.Sprintf("1.0.%d", i), fmt.Sprintf("1.0.%d", i+1)))
	}
	edges = append(edges, edge(t, "1.0.0", "1.0.5"))

	chain, reached := Resolve(edges, ver("1.0.0"), ver("1.0.7"))

	assert.Equal(t, []string{"1.0.0->1.0.5", "1.0.5->1.0.6", "1.0.6->1.0.7"}, pairs(chain))
	assert.Equal(t, ver("1.0.7"), reached)
}

func TestResolve_ConcreteScenario(t *testing.T) {
	edges := []Edge{
		edge(t, "1.1.5", "1.1.6"),
		edge(t, "1.1.6", "1.1.7"),
		edge(t, "1.1.7", "1.1.8"),
		edge(t, "1.1.7", "1.2.1"),
		edge(t, "1.1.8", "1.1.9"),
		edge(t, "1.1.9", "1.2.0"),
		edge(t, "1.2.0", "1.2.1"),
		edge(t, "1.2.1", "1.2.2"),
		edge(t, "1.2.2", "1.2.3"),
	}

	chain, reached := Resolve(edges, ver("1.1.5"), ver("1.2.3"))

	assert.Equal(t, []string{"1.1.5->1.1.6", "1.1.6->1.1.7", "1.1.7->1.2.1", "1.2.1->1.2.2", "1.2.2->1.2.3"}, pairs(chain))
	assert.Equal(t, ver("1.2.3"), reached)
}

func TestResolve_OrderOfCandidatesIrrelevant(t *testing.T) {
	edges := []Edge{
		edge(t, "1.2.2", "1.2.3"),
		edge(t, "1.1.7", "1.2.1"),
		edge(t, "1.2.1", "1.2.2"),
		edge(t, "1.1.5", "1.1.7"),
		edge(t, "1.1.7", "1.1.8"),
	}

	chain, _ := Resolve(edges, ver("1.1.5"), ver("1.2.3"))
	assert.Equal(t, []string{"1.1.5->1.1.7", "1.1.7->1.2.1", "1.2.1->1.2.2", "1.2.2->1.2.3"}, pairs(chain))
}

func TestResolve_PartialReach(t *testing.T) {
	edges := []Edge{
		edge(t, "1.0.0", "1.0.1"),
		edge(t, "1.0.1", "1.0.2"),
		edge(t, "1.0.4", "1.0.5"),
	}

	chain, reached := Resolve(edges, ver("1.0.0"), ver("1.0.5"))

	assert.Equal(t, []string{"1.0.0->1.0.1", "1.0.1->1.0.2"}, pairs(chain))
	assert.Equal(t, ver("1.0.2"), reached)
	assert.True(t, reached.Less(ver("1.0.5")))
}

func TestResolve_GapAtFloor(t *testing.T) {
	chain, reached := Resolve([]Edge{edge(t, "2.0.0", "3.0.0")}, ver("1.0.0"), ver("3.0.0"))
	assert.Empty(t, chain)
	assert.Equal(t, ver("1.0.0"), reached)
}

func TestResolve_FloorAtTarget(t *testing.T) {
	chain, reached := Resolve([]Edge{edge(t, "1.0.0", "1.0.1")}, ver("1.0.1"), ver("1.0.1"))
	assert.Empty(t, chain)
	assert.Equal(t, ver("1.0.1"), reached)
}

func TestResolve_NoCandidates(t *testing.T) {
	chain, reached := Resolve(nil, ver("1.1.9"), ver("1.1.10"))
	assert.Empty(t, chain)
	assert.Equal(t, ver("1.1.9"), reached)
}

func TestResolve_EdgeStartingBelowFloorStillCovers(t *testing.T) {
	// An edge whose start is below the reach is usable as long as it lands beyond it.
	edges := []Edge{edge(t, "1.0.0", "1.0.3"), edge(t, "1.0.2", "1.0.4")}
	chain, reached := Resolve(edges, ver("1.0.0"), ver("1.0.4"))
	assert.Equal(t, []string{"1.0.0->1.0.3", "1.0.2->1.0.4"}, pairs(chain))
	assert.Equal(t, ver("1.0.4"), reached)
}

func TestResolve_NeverExceedsTarget(t *testing.T) {
	edges := []Edge{
		edge(t, "1.0.0", "1.0.2"),
		edge(t, "1.0.1", "1.0.3"),
		edge(t, "1.0.2", "1.0.6"),
		edge(t, "1.0.3", "1.0.4"),
		edge(t, "1.0.4", "1.0.6"),
		edge(t, "1.0.6", "1.1.0"),
	}
	target := ver("1.1.0")

	chain, reached := Resolve(edges, ver("1.0.0"), target)

	assert.Equal(t, target, reached)
	for _, e := range chain {
		assert.False(t, target.Less(e.To), "edge %s->%s overshoots", e.From, e.To)
	}
	assert.Equal(t, []string{"1.0.0->1.0.2", "1.0.2->1.0.6", "1.0.6->1.1.0"}, pairs(chain))
}

func TestResolve_DoesNotMutateCandidates(t *testing.T) {
	edges := []Edge{edge(t, "1.0.1", "1.0.2"), edge(t, "1.0.0", "1.0.1")}
	_, _ = Resolve(edges, ver("1.0.0"), ver("1.0.2"))
	assert.Equal(t, []string{"1.0.1->1.0.2", "1.0.0->1.0.1"}, pairs(edges))
}

func TestEdgeOf_RejectsNonUpgrades(t *testing.T) {
	for _, raw := range []string{"T.2.0.0.to.1.0.0.sql", "T.1.0.0.sql", "T.sql"} {
		n, err := naming.TryParse(raw, raw, true)
		require.NoError(t, err)
		_, ok := EdgeOf(cksetup.NewScript(n, "sql", testSource, cksetup.StaticContent("")))
		assert.False(t, ok, raw)
	}
}
