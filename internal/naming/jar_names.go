package naming

import (
	"crypto/rand"
	"math/big"
)

// FallbackJarName is used when random suggestion fails
const FallbackJarName = "My Savings"

// DefaultJarEmoji decorates the jar provisioned at onboarding
const DefaultJarEmoji = "🐷"

// Word lists for generating kid-friendly jar names
var adjectives = []string{
	"Sunny", "Happy", "Shiny", "Lucky", "Magic", "Cozy", "Brave", "Bright",
	"Sparkly", "Golden", "Rainbow", "Secret", "Super", "Starry", "Bouncy",
	"Mighty", "Dreamy", "Twinkly", "Jolly", "Cosmic",
}

var nouns = []string{
	"Treasure", "Piggy Bank", "Savings", "Coin Chest", "Penny Pot",
	"Money Tree", "Gold Stash", "Wish Fund", "Adventure Fund", "Book Fund",
	"Rocket Fund", "Dragon Hoard", "Rainy Day Fund", "Dream Jar",
	"Star Stash", "Toy Fund",
}

// SuggestJarName generates a random kid-friendly jar name in the format
// "Adjective Noun"
func SuggestJarName() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}

	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}

	return adjective + " " + noun, nil
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}

	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}

	return slice[num.Int64()], nil
}
