package naming

import (
	"strings"
	"testing"
)

func TestSuggestJarName(t *testing.T) {
	t.Run("generates adjective noun pairs", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			name, err := SuggestJarName()
			if err != nil {
				t.Fatalf("SuggestJarName() error = %v", err)
			}
			if name == "" {
				t.Fatal("SuggestJarName() returned empty name")
			}
			parts := strings.SplitN(name, " ", 2)
			if len(parts) != 2 {
				t.Errorf("name %q is not an adjective noun pair", name)
			}
		}
	})

	t.Run("draws from the word lists", func(t *testing.T) {
		adjSet := make(map[string]bool, len(adjectives))
		for _, a := range adjectives {
			adjSet[a] = true
		}
		for i := 0; i < 50; i++ {
			name, err := SuggestJarName()
			if err != nil {
				t.Fatalf("SuggestJarName() error = %v", err)
			}
			parts := strings.SplitN(name, " ", 2)
			if !adjSet[parts[0]] {
				t.Errorf("adjective %q not in word list", parts[0])
			}
		}
	})
}

func TestRandomElement(t *testing.T) {
	t.Run("empty slice returns empty string", func(t *testing.T) {
		got, err := randomElement(nil)
		if err != nil {
			t.Fatalf("randomElement(nil) error = %v", err)
		}
		if got != "" {
			t.Errorf("randomElement(nil) = %q, want empty", got)
		}
	})

	t.Run("single element is always chosen", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			got, err := randomElement([]string{"only"})
			if err != nil {
				t.Fatalf("randomElement() error = %v", err)
			}
			if got != "only" {
				t.Errorf("randomElement() = %q, want %q", got, "only")
			}
		}
	})
}
