package selection

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/dexter/internal/pokeapi"
)

var (
	bulbasaur  = Item{ID: 1, Name: "bulbasaur", Types: []string{"grass", "poison"}}
	charmander = Item{ID: 4, Name: "charmander", Types: []string{"fire"}}
	squirtle   = Item{ID: 7, Name: "squirtle", Types: []string{"water"}}
)

func ids(items []Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestStore_AddIgnoresDuplicates(t *testing.T) {
	s := NewStore()
	assert.True(t, s.Add(bulbasaur))
	assert.True(t, s.Add(charmander))
	assert.False(t, s.Add(Item{ID: 1, Name: "renamed"}))

	assert.Equal(t, []int{1, 4}, ids(s.Items()))
	assert.Equal(t, "bulbasaur", s.Items()[0].Name)
}

func TestStore_RemoveKeepsOrder(t *testing.T) {
	s := NewStore(bulbasaur, charmander, squirtle)

	assert.True(t, s.Remove(4))
	assert.False(t, s.Remove(4))
	assert.Equal(t, []int{1, 7}, ids(s.Items()))
	assert.False(t, s.Contains(4))
}

func TestStore_Toggle(t *testing.T) {
	s := NewStore()
	assert.True(t, s.Toggle(squirtle))
	assert.True(t, s.Contains(7))
	assert.False(t, s.Toggle(squirtle))
	assert.Equal(t, 0, s.Len())
}

func TestStore_Clear(t *testing.T) {
	s := NewStore(bulbasaur, charmander)
	s.Clear()
	assert.Empty(t, s.Items())
	assert.True(t, s.Add(bulbasaur), "cleared ids can be re-added")
}

func TestStore_ItemsIsACopy(t *testing.T) {
	s := NewStore(bulbasaur)
	items := s.Items()
	items[0].Name = "changed"
	assert.Equal(t, "bulbasaur", s.Items()[0].Name)
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add(Item{ID: i % 10})
			_ = s.Contains(i)
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, s.Len())
}

// TestStore_ToggleConcurrent checks that every toggle observes the state left
// by the previous one, so the reported selections and deselections balance.
func TestStore_ToggleConcurrent(t *testing.T) {
	s := NewStore()
	var (
		wg       sync.WaitGroup
		selected atomic.Int64
	)
	for range 101 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Toggle(squirtle) {
				selected.Add(1)
			} else {
				selected.Add(-1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), selected.Load())
	assert.Equal(t, 1, s.Len())
}

func TestFromDetail(t *testing.T) {
	d := pokeapi.Detail{
		ID:   25,
		Name: "pikachu",
		Types: []pokeapi.TypeSlot{
			{Slot: 1, Type: pokeapi.NamedRef{Name: "electric"}},
		},
	}
	assert.Equal(t, Item{ID: 25, Name: "pikachu", Types: []string{"electric"}}, FromDetail(d))
}
