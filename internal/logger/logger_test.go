package logger

import "testing"

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"error", ERROR, false},
		{"WARN", WARN, false},
		{"info", INFO, false},
		{"Debug", DEBUG, false},
		{"verbose", INFO, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Expected level %d, got %d", tt.want, got)
			}
		})
	}
}

func TestNopLoggerDoesNotPanic(t *testing.T) {
	l := Nop().With("component", "test")
	l.Errorf("error %d", 1)
	l.Warnf("warn %d", 2)
	l.Infof("info %d", 3)
	l.Debugf("debug %d", 4)
}
