package services

import "testing"

func TestExpand(t *testing.T) {
	env := map[string]string{"A": "alpha", "B_2": "beta", "EMPTY": ""}

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "plain", want: "plain"},
		{in: "$A", want: "alpha"},
		{in: "${A}-x", want: "alpha-x"},
		{in: "$A$B_2", want: "alphabeta"},
		{in: "${B_2}/$A/end", want: "beta/alpha/end"},
		{in: "$EMPTY!", want: "!"},
		{in: "$UNKNOWN and ${UNKNOWN}", want: "$UNKNOWN and ${UNKNOWN}"},
		{in: "cost $5", want: "cost $5"},
	}

	for _, tt := range tests {
		if got := Expand(tt.in, env); got != tt.want {
			t.Errorf("Expand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
