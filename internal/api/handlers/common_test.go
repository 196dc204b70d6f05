package handlers

import (
	"encoding/json"
	"testing"
)

func TestFlexString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"string", `{"yearLevel":"2"}`, "2", false},
		{"integer", `{"yearLevel":3}`, "3", false},
		{"null", `{"yearLevel":null}`, "", false},
		{"missing", `{}`, "", false},
		{"boolean rejected", `{"yearLevel":true}`, "", true},
		{"object rejected", `{"yearLevel":{}}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req RegisterRequest
			err := json.Unmarshal([]byte(tt.input), &req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && string(req.YearLevel) != tt.want {
				t.Errorf("YearLevel = %q; want %q", req.YearLevel, tt.want)
			}
		})
	}
}
