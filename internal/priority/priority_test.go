package priority

import "testing"

func testScorer() *Scorer {
	cfg := Config{
		Domains: []string{"corp.example.com"},
		Senders: []string{"boss@corp.example.com"},
	}
	cfg.LoadDefaults()
	return NewScorer(cfg)
}

func TestScore(t *testing.T) {
	tests := []struct {
		name         string
		sender       string
		subject      string
		preview      string
		wantScore    int
		wantPriority bool
	}{
		{
			name:      "no signals",
			sender:    "stranger@elsewhere.net",
			subject:   "catching up",
			preview:   "long time no see",
			wantScore: 0,
		},
		{
			name:      "domain only",
			sender:    "colleague@corp.example.com",
			subject:   "meeting notes",
			wantScore: 50,
		},
		{
			name:         "domain plus keyword",
			sender:       "colleague@corp.example.com",
			subject:      "deadline today",
			wantScore:    80,
			wantPriority: true,
		},
		{
			name:      "keyword in preview only",
			sender:    "stranger@elsewhere.net",
			subject:   "hello",
			preview:   "this is URGENT, please read",
			wantScore: 30,
		},
		{
			name:      "german keyword",
			sender:    "stranger@elsewhere.net",
			subject:   "Dringend: Vertrag",
			wantScore: 30,
		},
		{
			name:         "all signals clamp to 100",
			sender:       "boss@corp.example.com",
			subject:      "urgent deadline",
			wantScore:    100,
			wantPriority: true,
		},
		{
			name:         "sender rule case-insensitive",
			sender:       "Boss@Corp.Example.Com",
			subject:      "hello",
			wantScore:    90,
			wantPriority: true,
		},
	}

	s := testScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(tt.sender, tt.subject, tt.preview)
			if got.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", got.Score, tt.wantScore)
			}
			if got.IsPriority != tt.wantPriority {
				t.Errorf("IsPriority = %v, want %v", got.IsPriority, tt.wantPriority)
			}
		})
	}
}

func TestScoreCustomThreshold(t *testing.T) {
	cfg := Config{Domains: []string{"corp.example.com"}, Threshold: 50}
	s := NewScorer(cfg)

	got := s.Score("colleague@corp.example.com", "meeting notes", "")
	if !got.IsPriority {
		t.Errorf("score %d should meet threshold 50", got.Score)
	}
}
