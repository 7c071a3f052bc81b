// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import "testing"

func timed(user, item string, ts int64) Interaction {
	return Interaction{UserID: user, ItemID: item, Rating: 3, Timestamp: ts}
}

func TestTemporalSplit(t *testing.T) {
	in := []Interaction{
		timed("u1", "m5", 50),
		timed("u1", "m1", 10),
		timed("u2", "m1", 5),
		timed("u1", "m2", 20),
		timed("u1", "m3", 30),
		timed("u1", "m4", 40),
		timed("u3", "m9", 1),
	}

	train, test, err := TemporalSplit(in, 0.2)
	if err != nil {
		t.Fatalf("TemporalSplit() error = %v", err)
	}
	if len(train)+len(test) != len(in) {
		t.Fatalf("split lost rows: %d + %d != %d", len(train), len(test), len(in))
	}

	t.Run("newest rows held out", func(t *testing.T) {
		var u1Test []string
		for _, r := range test {
			if r.UserID == "u1" {
				u1Test = append(u1Test, r.ItemID)
			}
		}
		if len(u1Test) != 1 || u1Test[0] != "m5" {
			t.Errorf("u1 test = %v, want [m5]", u1Test)
		}
	})

	t.Run("single-row users land in test", func(t *testing.T) {
		for _, r := range train {
			if r.UserID == "u2" || r.UserID == "u3" {
				t.Errorf("%s has a training row; want all rows in test", r.UserID)
			}
		}
	})

	t.Run("train precedes test per user", func(t *testing.T) {
		latestTrain := map[string]int64{}
		for _, r := range train {
			latestTrain[r.UserID] = max(latestTrain[r.UserID], r.Timestamp)
		}
		for _, r := range test {
			if ts, ok := latestTrain[r.UserID]; ok && r.Timestamp < ts {
				t.Errorf("%s test row at %d precedes training row at %d", r.UserID, r.Timestamp, ts)
			}
		}
	})

	t.Run("users grouped by earliest row", func(t *testing.T) {
		want := []string{"u3", "u2", "u1"}
		var got []string
		for _, r := range test {
			if len(got) == 0 || got[len(got)-1] != r.UserID {
				got = append(got, r.UserID)
			}
		}
		if len(got) != len(want) {
			t.Fatalf("test user order = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("test user order = %v, want %v", got, want)
				break
			}
		}
	})
}

func TestTemporalSplitFraction(t *testing.T) {
	var in []Interaction
	for i := 0; i < 10; i++ {
		in = append(in, timed("u1", "m", int64(i)))
	}

	tests := []struct {
		testSize float64
		wantTest int
	}{
		{0.1, 1},
		{0.2, 2},
		{0.25, 2},
		{0.5, 5},
		{0.01, 1},
		{0.99, 9},
	}
	for _, tt := range tests {
		_, test, err := TemporalSplit(in, tt.testSize)
		if err != nil {
			t.Fatalf("TemporalSplit(%v) error = %v", tt.testSize, err)
		}
		if len(test) != tt.wantTest {
			t.Errorf("TemporalSplit(%v) test rows = %d, want %d", tt.testSize, len(test), tt.wantTest)
		}
	}
}

func TestTemporalSplitInvalid(t *testing.T) {
	for _, size := range []float64{0, 1, -0.1, 1.5} {
		if _, _, err := TemporalSplit(nil, size); err == nil {
			t.Errorf("TemporalSplit(%v) accepted invalid size", size)
		}
	}
}
