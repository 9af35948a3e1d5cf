package intent

import (
	"testing"

	"nagato/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text     string
		expected models.Intent
	}{
		{"お勧めの本は？", models.IntentBook},
		{"@nagato オススメの書籍ある？", models.IntentBook},
		{"御薦めの図書", models.IntentBook},
		{"面白い本を教えて", models.IntentBook},
		{"おもしろイ書物", models.IntentBook},
		{"おはよう", models.IntentGreeting},
		{"おやすみなさい", models.IntentGreeting},
		{"こんにちは", models.IntentGreeting},
		{"こんばんわ", models.IntentGreeting},
		{"流速は？", models.IntentTimelineSpeed},
		{"おはよう、流速は？", models.IntentGreeting},
		{"こんばんは、お勧めの本は？", models.IntentBook},
		{"本", models.IntentRandom},
		{"hello", models.IntentRandom},
		{"", models.IntentRandom},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.expected {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}
