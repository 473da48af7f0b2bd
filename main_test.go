package main

import (
	"testing"
	"time"
)

func TestParseTCPKeepAlive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		wantOn  bool
		wantErr bool
	}{
		{in: "on", wantOn: true},
		{in: "off"},
		{in: "45:45:3", wantOn: true},
		{in: " 10:20:5 ", wantOn: true},
		{in: "", wantErr: true},
		{in: "45:45", wantErr: true},
		{in: "0:45:3", wantErr: true},
		{in: "a:b:c", wantErr: true},
	}

	for _, tt := range tests {
		ka, err := parseTCPKeepAlive(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseTCPKeepAlive(%q) err=%v wantErr=%v", tt.in, err, tt.wantErr)
		}
		if err != nil {
			continue
		}
		if ka.Enable != tt.wantOn {
			t.Fatalf("parseTCPKeepAlive(%q) Enable=%v want %v", tt.in, ka.Enable, tt.wantOn)
		}
	}

	ka, err := parseTCPKeepAlive("10:20:5")
	if err != nil {
		t.Fatal(err)
	}
	if ka.Idle != 10*time.Second || ka.Interval != 20*time.Second || ka.Count != 5 {
		t.Fatalf("unexpected config %+v", ka)
	}
}
