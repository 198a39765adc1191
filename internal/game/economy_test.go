package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEconomy_SpendAndFloor(t *testing.T) {
	e := NewEconomy(100)
	var seen []int
	e.OnResources(func(n int) { seen = append(seen, n) })

	assert.True(t, e.Spend(60))
	assert.False(t, e.Spend(60), "cannot go into debt")
	assert.Equal(t, 40, e.Resources())

	e.Add(-500)
	assert.Equal(t, 0, e.Resources())
	e.Set(0)
	assert.Equal(t, []int{40, 0}, seen, "unchanged balances are not broadcast")
}

func TestEconomy_Selection(t *testing.T) {
	e := NewEconomy(startingResources)
	var picks []string
	e.OnSelect(func(name string) { picks = append(picks, name) })

	e.Select("turret")
	e.Select("turret")
	e.Select("")
	assert.Equal(t, []string{"turret", ""}, picks)
	assert.Equal(t, "", e.Selection())
}
