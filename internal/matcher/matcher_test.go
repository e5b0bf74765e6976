package matcher

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/notechat/internal/models"
)

func notes(titles ...string) []models.Note {
	out := make([]models.Note, len(titles))
	for i, t := range titles {
		out[i] = models.Note{ID: fmt.Sprintf("n%d", i+1), Title: t}
	}
	return out
}

func ids(ns []models.Note) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}

func TestSearch_ExactPrecedence(t *testing.T) {
	res := Search(notes("Hello there", "Hello"), "Hello", Options{})
	assert.Equal(t, TypeExact, res.Type)
	assert.Equal(t, []string{"n2"}, ids(res.Matches))
}

func TestSearch_ExactIgnoresCaseAndWhitespace(t *testing.T) {
	res := Search(notes("  Buy   MILK ", "Buy milk later"), "buy milk", Options{})
	assert.Equal(t, TypeExact, res.Type)
	assert.Equal(t, []string{"n1"}, ids(res.Matches))
}

func TestSearch_ExactDuplicatesKeepOrder(t *testing.T) {
	res := Search(notes("Hey", "Other", "hey"), "Hey", Options{})
	assert.Equal(t, TypeExact, res.Type)
	assert.Equal(t, []string{"n1", "n3"}, ids(res.Matches))
}

func TestSearch_WildcardCharactersAreLiteral(t *testing.T) {
	res := Search(notes("50% off", "Sale 50%", "500 days"), "50%", Options{})
	assert.Equal(t, TypeSubstring, res.Type)
	assert.Equal(t, []string{"n1", "n2"}, ids(res.Matches))

	res = Search(notes("to-do", "my to_do list"), "to_do", Options{})
	assert.Equal(t, TypeSubstring, res.Type)
	assert.Equal(t, []string{"n2"}, ids(res.Matches))
}

func TestSearch_Substring(t *testing.T) {
	res := Search(notes("Buy milk", "Gym plan", "Milkshake recipe"), "milk", Options{})
	assert.Equal(t, TypeSubstring, res.Type)
	assert.Equal(t, []string{"n1", "n3"}, ids(res.Matches))
}

func TestSearch_FuzzyRankedByDistance(t *testing.T) {
	res := Search(notes("Shopping lisst", "Shopping list"), "shoping list", Options{})
	require.Equal(t, TypeFuzzy, res.Type)
	assert.Equal(t, []string{"n2", "n1"}, ids(res.Matches))
}

func TestSearch_FuzzyWordWindow(t *testing.T) {
	res := Search(notes("Buy milk", "Call mom"), "mlk", Options{})
	require.Equal(t, TypeFuzzy, res.Type)
	assert.Equal(t, []string{"n1"}, ids(res.Matches))
}

func TestSearch_ShortQueryNoFuzzy(t *testing.T) {
	res := Search(notes("Go", "Do"), "xo", Options{})
	assert.Equal(t, TypeNone, res.Type)
	assert.Empty(t, res.Matches)
}

func TestSearch_None(t *testing.T) {
	res := Search(notes("Buy milk"), "quarterly taxes", Options{})
	assert.Equal(t, TypeNone, res.Type)
	assert.Empty(t, res.Matches)
}

func TestSearch_EmptyQuery(t *testing.T) {
	res := Search(notes("Buy milk"), "   ", Options{})
	assert.Equal(t, TypeNone, res.Type)
}

func TestSearch_Scope(t *testing.T) {
	candidates := notes("Milk", "Milk")
	candidates[1].IsDeleted = true

	live := Search(candidates, "milk", Options{})
	assert.Equal(t, []string{"n1"}, ids(live.Matches))

	deleted := Search(candidates, "milk", Options{Deleted: true})
	assert.Equal(t, []string{"n2"}, ids(deleted.Matches))
}

func TestSearch_Limit(t *testing.T) {
	var titles []string
	for i := 0; i < 15; i++ {
		titles = append(titles, fmt.Sprintf("task %d", i))
	}
	assert.Len(t, Search(notes(titles...), "task", Options{}).Matches, DefaultLimit)
	assert.Len(t, Search(notes(titles...), "task", Options{Limit: 3}).Matches, 3)
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 0, Distance("milk", "buy milk"))
	assert.Equal(t, 1, Distance("mlk", "buy milk"))
	assert.Equal(t, 2, Distance("abc", "a"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "buy milk", Normalize("  Buy   MILK "))
	assert.Equal(t, "école plan", Normalize("ÉCOLE\tPlan"))
}
