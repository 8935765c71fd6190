package app

import "testing"

func TestCostTiers(t *testing.T) {
	cases := []struct {
		questions int
		want      int64
	}{
		{1, 10000},
		{50, 10000},
		{100, 10000},
		{101, 15000},
		{199, 15000},
		{200, 20000},
		{299, 20000},
		{300, 20000},
		{301, 25000},
		{400, 25000},
		{401, 30000},
		{500, 30000},
		{501, 35000},
	}
	for _, tc := range cases {
		if got := Cost(tc.questions); got != tc.want {
			t.Fatalf("Cost(%d) = %d, want %d", tc.questions, got, tc.want)
		}
	}
}
