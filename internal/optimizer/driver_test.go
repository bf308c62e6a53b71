package optimizer

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/mapfuse/internal/graphdef"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// renamePass appends a suffix to every node name it sees.
type renamePass struct {
	name string
	err  error
}

func (p *renamePass) Name() string { return p.name }

func (p *renamePass) Optimize(ctx context.Context, item *Item, stats *Stats) error {
	if p.err != nil {
		return p.err
	}
	out := graphdef.New()
	for _, n := range item.Graph.Nodes() {
		c := n.Clone()
		c.Name += "_" + p.name
		if err := out.AddNode(c); err != nil {
			return err
		}
		stats.NumChanges++
	}
	item.Graph.ReplaceWith(out)
	return nil
}

type testModule struct{}

func (testModule) Register(r *Registry) {
	r.Register("a", func() Optimizer { return &renamePass{name: "a"} })
	r.Register("b", func() Optimizer { return &renamePass{name: "b"} })
	r.Register("broken", func() Optimizer { return &renamePass{name: "broken", err: errors.New("boom")} })
	r.Register("liar", func() Optimizer { return &renamePass{name: "other"} })
}

func newTestRegistry() *Registry {
	r := NewRegistry()
	testModule{}.Register(r)
	return r
}

func newItem(t *testing.T) *Item {
	t.Helper()
	g := graphdef.New()
	require.NoError(t, g.AddNode(&graphdef.Node{Name: "n", Op: "NoOp"}))
	return &Item{ID: "test", Graph: g, Fetch: []string{"n"}}
}

func TestRegistry(t *testing.T) {
	r := newTestRegistry()
	assert.Equal(t, []string{"a", "b", "broken", "liar"}, r.Names())

	_, err := r.New("missing")
	assert.ErrorContains(t, err, "unknown optimizer pass")

	ctx := context.Background()
	assert.NoError(t, r.Validate(ctx, []string{"a", "b"}))
	assert.ErrorContains(t, r.Validate(ctx, []string{"liar"}), "reports name")
}

func TestDriver_RunsPassesInOrder(t *testing.T) {
	item := newItem(t)
	report, err := NewDriver(newTestRegistry(), "a", "b").Run(context.Background(), item)
	require.NoError(t, err)

	require.Len(t, report.Passes, 2)
	assert.Equal(t, "a", report.Passes[0].Pass)
	assert.Equal(t, "b", report.Passes[1].Pass)
	assert.Equal(t, 2, report.TotalChanges())

	_, ok := item.Graph.Node("n_a_b")
	assert.True(t, ok)
}

func TestDriver_StopsOnFailure(t *testing.T) {
	item := newItem(t)
	report, err := NewDriver(newTestRegistry(), "a", "broken", "b").Run(context.Background(), item)
	require.Error(t, err)
	assert.ErrorContains(t, err, `optimizer pass "broken" failed: boom`)
	require.Len(t, report.Passes, 1)

	_, ok := item.Graph.Node("n_a")
	assert.True(t, ok, "completed passes keep their rewrites")
}

func TestItem_Preserve(t *testing.T) {
	item := &Item{Fetch: []string{"out", "aux"}}
	assert.True(t, item.IsPreserved("out"))
	assert.False(t, item.IsPreserved("map"))
	assert.Len(t, item.NodesToPreserve(), 2)
}
