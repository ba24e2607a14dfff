// Package textnorm cleans post text before sentiment scoring.
//
// Normalization removes links and mentions, spells emoji out as
// colon-delimited names, drops everything outside letters, digits,
// whitespace and colons, and trims the result. It never fails.
package textnorm

import (
	"regexp"
	"strings"

	"github.com/forPelevin/gomoji"

	"tweetpulse/pkg/contracts/domain"
)

var (
	urlPattern     = regexp.MustCompile(`http[^\s\p{Z}]+`)
	mentionPattern = regexp.MustCompile(`@[\p{L}\p{N}_]+`)
	disallowed     = regexp.MustCompile(`[^A-Za-z0-9\s\p{Z}:]`)

	slugReplacer = strings.NewReplacer("-", "_", " ", "_")
)

// Normalize returns the cleaned form of text
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = urlPattern.ReplaceAllString(text, "")
	text = mentionPattern.ReplaceAllString(text, "")
	text = Demojize(text)
	text = disallowed.ReplaceAllString(text, "")

	return strings.TrimSpace(text)
}

// Demojize replaces every emoji with its CLDR short name wrapped in colons.
// Adjacent emoji stay adjacent: "😀😀" becomes ":grinning_face::grinning_face:".
func Demojize(text string) string {
	if !gomoji.ContainsEmoji(text) {
		return text
	}
	return gomoji.ReplaceEmojisWithFunc(text, func(em gomoji.Emoji) string {
		// bare digits, '#' and '*' are keycap bases, not emoji
		if isASCII(em.Character) {
			return em.Character
		}
		return ":" + EmojiName(em) + ":"
	})
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// EmojiName derives the underscore-separated name used by Demojize.
// Country and subdivision flags use the region name as written, so
// 🇮🇹 becomes "Italy" and 🇺🇸 "United_States".
func EmojiName(em gomoji.Emoji) string {
	if strings.HasSuffix(em.SubGroup, "-flag") {
		if _, region, ok := strings.Cut(em.UnicodeName, "flag: "); ok && region != "" {
			return slugReplacer.Replace(region)
		}
	}

	name := em.Slug
	if name == "" {
		name = strings.ToLower(em.UnicodeName)
	}
	return slugReplacer.Replace(strings.ToLower(name))
}

// NormalizePosts returns a copy of posts with normalized text
func NormalizePosts(posts []domain.Post) []domain.Post {
	out := make([]domain.Post, len(posts))
	for i, p := range posts {
		p.Text = Normalize(p.Text)
		out[i] = p
	}
	return out
}
