package youtube

import "testing"

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantHuman   string
		wantSeconds int
	}{
		{"full designators", "PT1H2M3S", "1:02:03", 3723},
		{"minutes and seconds", "PT12M34S", "12:34", 754},
		{"seconds only", "PT45S", "0:45", 45},
		{"hours only", "PT2H", "2:00:00", 7200},
		{"minutes only", "PT7M", "7:00", 420},
		{"hours and seconds", "PT1H5S", "1:00:05", 3605},
		{"malformed", "P1DT2H", "0:00", 0},
		{"empty", "", "0:00", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			human, seconds := ParseDuration(tt.raw)
			if human != tt.wantHuman || seconds != tt.wantSeconds {
				t.Errorf("ParseDuration(%q) = (%q, %d), want (%q, %d)", tt.raw, human, seconds, tt.wantHuman, tt.wantSeconds)
			}
		})
	}
}
