package service

import (
	"testing"

	"storyjars/internal/models"
)

func TestEvaluateReadingLevel(t *testing.T) {
	tests := []struct {
		name          string
		current       models.ReadingLevel
		speedWpm      float64
		comprehension int
		want          models.ReadingLevel
		wantChanged   bool
	}{
		{
			name:          "fast perfect read promotes",
			current:       models.LevelExplorer,
			speedWpm:      120,
			comprehension: 100,
			want:          models.LevelBuilder,
			wantChanged:   true,
		},
		{
			name:          "promotion from middle level",
			current:       models.LevelBuilder,
			speedWpm:      101,
			comprehension: 100,
			want:          models.LevelChallenger,
			wantChanged:   true,
		},
		{
			name:          "top level never promotes",
			current:       models.LevelChallenger,
			speedWpm:      200,
			comprehension: 100,
			want:          models.LevelChallenger,
			wantChanged:   false,
		},
		{
			name:          "slow weak read demotes",
			current:       models.LevelBuilder,
			speedWpm:      60,
			comprehension: 50,
			want:          models.LevelExplorer,
			wantChanged:   true,
		},
		{
			name:          "bottom level never demotes",
			current:       models.LevelExplorer,
			speedWpm:      10,
			comprehension: 0,
			want:          models.LevelExplorer,
			wantChanged:   false,
		},
		{
			name:          "exactly 100 wpm never moves up",
			current:       models.LevelBuilder,
			speedWpm:      100,
			comprehension: 100,
			want:          models.LevelBuilder,
			wantChanged:   false,
		},
		{
			name:          "exactly 100 wpm never moves down",
			current:       models.LevelBuilder,
			speedWpm:      100,
			comprehension: 50,
			want:          models.LevelBuilder,
			wantChanged:   false,
		},
		{
			name:          "fast but imperfect comprehension holds",
			current:       models.LevelExplorer,
			speedWpm:      150,
			comprehension: 90,
			want:          models.LevelExplorer,
			wantChanged:   false,
		},
		{
			name:          "slow but passing comprehension holds",
			current:       models.LevelChallenger,
			speedWpm:      80,
			comprehension: 80,
			want:          models.LevelChallenger,
			wantChanged:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := EvaluateReadingLevel(tt.current, tt.speedWpm, tt.comprehension)
			if got != tt.want || changed != tt.wantChanged {
				t.Errorf("EvaluateReadingLevel(%v, %v, %d) = (%v, %v), want (%v, %v)",
					tt.current, tt.speedWpm, tt.comprehension, got, changed, tt.want, tt.wantChanged)
			}
		})
	}
}
