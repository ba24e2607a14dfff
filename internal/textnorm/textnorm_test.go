package textnorm

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/gomoji"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetpulse/pkg/contracts/domain"
)

var emojiToken = regexp.MustCompile(`:[a-z0-9]+:`)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text untouched", "Bitcoin to the moon", "Bitcoin to the moon"},
		{"url removed", "read this https://example.com/a?b=c now", "read this  now"},
		{"url at end", "chart http://x.co/y", "chart"},
		{"mention removed", "@bob thinks BTC is dead", "thinks BTC is dead"},
		{"mention with underscore", "hi @crypto_whale_99!", "hi"},
		{"punctuation removed", "Buy!!! now??? $BTC #hodl", "Buy now BTC hodl"},
		{"colons kept", "ratio 3:1", "ratio 3:1"},
		{"digits kept", "price 7000 USD", "price 7000 USD"},
		{"accents removed", "café crème", "caf crme"},
		{"only noise", "!!! @bob https://t.co/x", ""},
		{"whitespace trimmed", "   hodl \n", "hodl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Emoji(t *testing.T) {
	out := Normalize("check http://x.co/y @bob 😀 !!!")

	assert.NotContains(t, out, "http")
	assert.NotContains(t, out, "@bob")
	assert.NotContains(t, out, "!")
	assert.True(t, strings.HasPrefix(out, "check"))
	require.Regexp(t, emojiToken, out)
	assert.Contains(t, out, "grinning")
}

func TestNormalize_AdjacentEmoji(t *testing.T) {
	out := Normalize("😀😀")
	assert.Len(t, emojiToken.FindAllString(out, -1), 2)
	assert.NotContains(t, out, " ")
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"check http://x.co/y @bob 😀 !!!",
		"Buy!!! now??? $BTC #hodl",
		"ratio 3:1",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), in)
	}
}

func TestNormalize_OutputAlphabet(t *testing.T) {
	out := Normalize("¡Hola! ñandú 🚀🚀 <b>bold</b> 100% @x_y https://a.b")
	allowed := regexp.MustCompile(`^[A-Za-z0-9\s:]*$`)
	assert.Regexp(t, allowed, out)
}

func TestDemojize(t *testing.T) {
	assert.Equal(t, "no emoji here", Demojize("no emoji here"))

	out := Demojize("up 😀")
	assert.True(t, strings.HasPrefix(out, "up :"))
	assert.True(t, strings.HasSuffix(out, ":"))
	assert.Contains(t, out, "grinning")
	assert.NotContains(t, out, "-")
}

func TestEmojiName(t *testing.T) {
	tests := []struct {
		name string
		em   gomoji.Emoji
		want string
	}{
		{
			name: "slug",
			em:   gomoji.Emoji{Slug: "grinning-face", UnicodeName: "E1.0 grinning face", SubGroup: "face-smiling"},
			want: "grinning_face",
		},
		{
			name: "country flag",
			em:   gomoji.Emoji{Slug: "flag-united-states", UnicodeName: "E0.6 flag: United States", SubGroup: "country-flag"},
			want: "United_States",
		},
		{
			name: "subdivision flag",
			em:   gomoji.Emoji{Slug: "flag-england", UnicodeName: "E5.0 flag: England", SubGroup: "subdivision-flag"},
			want: "England",
		},
		{
			name: "other flag keeps slug",
			em:   gomoji.Emoji{Slug: "chequered-flag", UnicodeName: "E0.6 chequered flag", SubGroup: "flag"},
			want: "chequered_flag",
		},
		{
			name: "unicode name fallback",
			em:   gomoji.Emoji{UnicodeName: "Rocket"},
			want: "rocket",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EmojiName(tt.em))
		})
	}

	assert.Equal(t, "go :Italy:", Demojize("go \U0001F1EE\U0001F1F9"))
}

func TestNormalizePosts(t *testing.T) {
	ts := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := []domain.Post{
		{Timestamp: ts, Text: "Hello @bob!", Likes: 4},
		{Timestamp: ts, Text: ""},
	}

	out := NormalizePosts(posts)
	require.Len(t, out, 2)
	assert.Equal(t, "Hello", out[0].Text)
	assert.Equal(t, int64(4), out[0].Likes)
	assert.Equal(t, "", out[1].Text)

	// input untouched
	assert.Equal(t, "Hello @bob!", posts[0].Text)
	assert.Empty(t, NormalizePosts(nil))
}
