package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"i'm", "done", "growth", "anna"}, Words("I'm done! #growth @anna"))
	assert.Empty(t, Words("  ...  "))
}

func TestSentences(t *testing.T) {
	assert.Equal(t, []string{"One", "Two", "Three"}, Sentences("One. Two?! Three"))
	assert.Equal(t, []string{"One.", "Two?!", "Three"}, SplitSentences("One. Two?! Three"))
	assert.Empty(t, Sentences(""))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "hello there", FirstLine("\n  hello there \nsecond"))
	assert.Equal(t, "", FirstLine(""))
}

func TestReplaceWord(t *testing.T) {
	assert.Equal(t, "A great idea, great!", ReplaceWord("A good idea, good!", "good", "great"))
	assert.Equal(t, "Great start", ReplaceWord("Good start", "good", "great"))
	assert.Equal(t, "goodness stays", ReplaceWord("goodness stays", "good", "great"))
	assert.Equal(t, "great and good", ReplaceFirstWord("good and good", "good", "great"))
	assert.Equal(t, "unchanged", ReplaceWord("unchanged", "", "x"))
}

func TestStripPhrase(t *testing.T) {
	assert.Equal(t, "Furthermore, read ", StripPhrase("Furthermore, read more!!", "more"))
	assert.Equal(t, "See  today", StripPhrase("See link in bio. today", "Link in bio"))
	assert.Equal(t, "Wow ", StripPhrase("Wow hope this helps!", "hope this helps!"))
}

func TestPhrasePattern_Cached(t *testing.T) {
	assert.Same(t, PhrasePattern("secret"), PhrasePattern("secret"))
	assert.True(t, PhrasePattern("c++").MatchString("I write C++ daily"))
	assert.False(t, PhrasePattern("more").MatchString("furthermore"))
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 2, CountWords("The secret hack, the secret!", []string{"secret", "hack", "truth"}))
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"#a", "#bb"}, Tokens("x #a, # #bb.", "#"))
	assert.Equal(t, []string{"@me"}, Tokens("hi @me", "@"))
}

func TestCountEmoji(t *testing.T) {
	assert.Equal(t, 2, CountEmoji("fire 🔥 and ✨ ok"))
	assert.Equal(t, 0, CountEmoji("plain"))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Hello", Capitalize("hello"))
	assert.Equal(t, "hello", Decapitalize("Hello"))
	assert.Equal(t, "I think", Decapitalize("I think"))
	assert.Equal(t, "", Capitalize(""))
}
