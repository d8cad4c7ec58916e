package nav

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nstehr/prospector/model"
)

func emptyGrid(w, h int) *model.Grid {
	return model.NewGrid(w, h, nil)
}

func block(g *model.Grid, owner int, ps ...model.Position) {
	for i, p := range ps {
		g.MarkUnsafe(p, &model.Unit{ID: 1000 + i, Owner: owner, Pos: p})
	}
}

func TestFindStepEmptyTorus(t *testing.T) {
	g := emptyGrid(5, 5)

	step, ok := FindStep(model.Position{X: 0, Y: 0}, model.Position{X: 2, Y: 0}, g, DefaultTraversalWeight)
	require.True(t, ok)
	require.Equal(t, model.East, step.Dir)
	require.Equal(t, model.Position{X: 1, Y: 0}, step.Next)
	require.Equal(t, 2, step.Length)
	require.InDelta(t, 2.0, step.Cost, 1e-9)

	step, ok = FindStep(model.Position{X: 0, Y: 0}, model.Position{X: 4, Y: 0}, g, DefaultTraversalWeight)
	require.True(t, ok)
	require.Equal(t, model.West, step.Dir)
	require.Equal(t, 1, step.Length)
}

func TestFindStepSameCell(t *testing.T) {
	g := emptyGrid(5, 5)
	step, ok := FindStep(model.Position{X: 3, Y: 3}, model.Position{X: 8, Y: -2}, g, DefaultTraversalWeight)
	require.False(t, ok)
	require.Equal(t, model.Still, step.Dir)
}

func TestFindStepDeterministic(t *testing.T) {
	g := model.NewGrid(8, 8, []int{
		0, 10, 40, 0, 0, 90, 0, 0,
		5, 0, 0, 300, 0, 0, 0, 20,
		0, 0, 80, 0, 0, 0, 50, 0,
		0, 70, 0, 0, 200, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		60, 0, 0, 30, 0, 0, 10, 0,
		0, 0, 500, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 40, 0, 0,
	})
	block(g, 1, model.Position{X: 2, Y: 1}, model.Position{X: 5, Y: 4})

	from, to := model.Position{X: 1, Y: 1}, model.Position{X: 6, Y: 5}
	first, ok := FindStep(from, to, g, DefaultTraversalWeight)
	require.True(t, ok)
	for i := 0; i < 20; i++ {
		again, ok := FindStep(from, to, g, DefaultTraversalWeight)
		require.True(t, ok)
		require.Equal(t, first, again)
	}
}

func TestFindStepAvoidsOccupiedCells(t *testing.T) {
	g := emptyGrid(7, 7)
	// Wall directly east of the start.
	block(g, 2, model.Position{X: 2, Y: 3})

	step, ok := FindStep(model.Position{X: 1, Y: 3}, model.Position{X: 3, Y: 3}, g, 0)
	require.True(t, ok)
	require.NotEqual(t, model.East, step.Dir)
	require.Equal(t, 4, step.Length)
}

func TestFindStepAvoidsHeavyCells(t *testing.T) {
	halite := make([]int, 5*5)
	// A rich band on row 0 between the endpoints.
	halite[0*5+1] = 1000
	halite[0*5+2] = 1000
	g := model.NewGrid(5, 5, halite)

	step, ok := FindStep(model.Position{X: 0, Y: 0}, model.Position{X: 2, Y: 0}, g, DefaultTraversalWeight)
	require.True(t, ok)
	// Straight east pays 101 + 101. Wrapping west only pays for the
	// destination itself: 1 + 1 + 101.
	require.Equal(t, model.West, step.Dir)
	require.InDelta(t, 103.0, step.Cost, 1e-9)
	require.Equal(t, 3, step.Length)
}

func TestFindStepDestinationMayBeOccupied(t *testing.T) {
	g := emptyGrid(5, 5)
	block(g, 2, model.Position{X: 2, Y: 0})

	step, ok := FindStep(model.Position{X: 1, Y: 0}, model.Position{X: 2, Y: 0}, g, DefaultTraversalWeight)
	require.True(t, ok)
	require.Equal(t, model.East, step.Dir)
}

func TestFindStepEnclosed(t *testing.T) {
	g := emptyGrid(5, 5)
	block(g, 2,
		model.Position{X: 2, Y: 1},
		model.Position{X: 3, Y: 2},
		model.Position{X: 2, Y: 3},
		model.Position{X: 1, Y: 2},
	)

	_, ok := FindStep(model.Position{X: 2, Y: 2}, model.Position{X: 4, Y: 4}, g, DefaultTraversalWeight)
	require.False(t, ok)
}

func TestPathCost(t *testing.T) {
	g := emptyGrid(6, 6)
	cost, ok := PathCost(g, model.Position{X: 0, Y: 0}, model.Position{X: 0, Y: 0}, DefaultTraversalWeight)
	require.True(t, ok)
	require.Zero(t, cost)

	cost, ok = PathCost(g, model.Position{X: 0, Y: 0}, model.Position{X: 3, Y: 2}, DefaultTraversalWeight)
	require.True(t, ok)
	require.InDelta(t, 5.0, cost, 1e-9)
}

func TestStepCostMonotone(t *testing.T) {
	prev := 0.0
	for h := 0; h <= 1000; h += 50 {
		c := StepCost(&model.Cell{Halite: h}, DefaultTraversalWeight)
		require.GreaterOrEqual(t, c, 1.0)
		require.GreaterOrEqual(t, c, prev)
		prev = c
	}
}
