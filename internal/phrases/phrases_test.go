package phrases

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	b := Default()
	require.Positive(t, b.Len())

	rnd := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 50; i++ {
		p := b.Random(rnd)
		assert.NotEmpty(t, p)
		assert.Equal(t, strings.TrimSpace(p), p)
	}
}

func TestNew_DropsBlankLines(t *testing.T) {
	b := New([]string{"  そう。 ", "", "\t", "読書。"})
	assert.Equal(t, 2, b.Len())

	rnd := rand.New(rand.NewPCG(3, 4))
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		seen[b.Random(rnd)] = true
	}
	assert.Equal(t, map[string]bool{"そう。": true, "読書。": true}, seen)
}

func TestNew_FallsBackToDefault(t *testing.T) {
	assert.Equal(t, Default().Len(), New([]string{"", " "}).Len())
}

func TestRandom_Empty(t *testing.T) {
	b := &Book{}
	assert.Empty(t, b.Random(rand.New(rand.NewPCG(0, 0))))
}
