package record

import (
	"testing"
	"time"
)

func TestComposeBoxscoreID(t *testing.T) {
	date := time.Date(2023, 9, 7, 0, 0, 0, 0, time.UTC)

	id, err := ComposeBoxscoreID(date, 0, "KAN")
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if id != "202309070kan" {
		t.Fatalf("unexpected id: got=%s want=202309070kan", id)
	}

	id, err = ComposeBoxscoreID(date, 1, "nyy")
	if err != nil {
		t.Fatalf("compose doubleheader: %v", err)
	}
	if id != "202309071nyy" {
		t.Fatalf("unexpected doubleheader id: got=%s want=202309071nyy", id)
	}
}

func TestComposeBoxscoreIDRejectsBadInput(t *testing.T) {
	date := time.Date(2023, 9, 7, 0, 0, 0, 0, time.UTC)

	if _, err := ComposeBoxscoreID(time.Time{}, 0, "kan"); err == nil {
		t.Fatal("expected error for zero date")
	}
	if _, err := ComposeBoxscoreID(date, -1, "kan"); err == nil {
		t.Fatal("expected error for negative sequence")
	}
	if _, err := ComposeBoxscoreID(date, 10, "kan"); err == nil {
		t.Fatal("expected error for two-digit sequence")
	}
	if _, err := ComposeBoxscoreID(date, 0, ""); err == nil {
		t.Fatal("expected error for empty team")
	}
	if _, err := ComposeBoxscoreID(date, 0, "k n"); err == nil {
		t.Fatal("expected error for team with spaces")
	}
}

func TestParseBoxscoreIDRoundTrip(t *testing.T) {
	want := Identity{
		GameDate: time.Date(2023, 9, 7, 0, 0, 0, 0, time.UTC),
		Sequence: 0,
		HomeTeam: "kan",
	}

	got, err := ParseBoxscoreID("202309070kan")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.GameDate.Equal(want.GameDate) || got.Sequence != want.Sequence || got.HomeTeam != want.HomeTeam {
		t.Fatalf("unexpected identity: got=%+v want=%+v", got, want)
	}
	if got.String() != "202309070kan" {
		t.Fatalf("round trip mismatch: %s", got.String())
	}
	if got.IsDoubleheader() {
		t.Fatal("sequence 0 should not be a doubleheader")
	}

	dh, err := ParseBoxscoreID("202309071nyy")
	if err != nil {
		t.Fatalf("parse doubleheader: %v", err)
	}
	if !dh.IsDoubleheader() {
		t.Fatal("sequence 1 should be a doubleheader")
	}
}

func TestParseBoxscoreIDRejectsMalformed(t *testing.T) {
	for _, id := range []string{"", "2023090", "20231307" + "0kan", "202309070KAN", "20230907xkan"} {
		if _, err := ParseBoxscoreID(id); err == nil {
			t.Fatalf("expected parse error for %q", id)
		}
	}
}

func TestComposeBoxscoreIDDistinctInputs(t *testing.T) {
	date := time.Date(2023, 9, 7, 0, 0, 0, 0, time.UTC)
	seen := map[string]struct{}{}

	for _, in := range []struct {
		date time.Time
		seq  int
		team string
	}{
		{date, 0, "kan"},
		{date, 1, "kan"},
		{date, 0, "det"},
		{date.AddDate(0, 0, 1), 0, "kan"},
	} {
		id, err := ComposeBoxscoreID(in.date, in.seq, in.team)
		if err != nil {
			t.Fatalf("compose(%v, %d, %s): %v", in.date, in.seq, in.team, err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("collision for %s", id)
		}
		seen[id] = struct{}{}
	}
}
