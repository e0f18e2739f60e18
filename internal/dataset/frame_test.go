package dataset

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sample() *Frame {
	return New(
		[]string{"", "HomeTeam", "FTHG", "HM1"},
		[][]string{
			{"0", "Arsenal", "2", "W"},
			{"1", "Chelsea", "", "L"},
			{"2", "Everton", "1", "M"},
		},
	)
}

func TestFrame_ColumnAddDrop(t *testing.T) {
	f := sample()
	if err := f.AddColumn("Result", []string{"H", "D", "A"}); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	f.Drop("", "HM1", "absent")

	want := []string{"HomeTeam", "FTHG", "Result"}
	if diff := cmp.Diff(want, f.Header); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
	col, err := f.Column("Result")
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	if diff := cmp.Diff([]string{"H", "D", "A"}, col); diff != "" {
		t.Fatalf("column mismatch (-want +got):\n%s", diff)
	}
	if _, err := f.Column("HM1"); !errors.Is(err, ErrNoColumn) {
		t.Fatalf("want ErrNoColumn, got %v", err)
	}
}

func TestFrame_AddColumnLengthMismatch(t *testing.T) {
	if err := sample().AddColumn("x", []string{"1"}); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestFrame_Kinds(t *testing.T) {
	num, cat := sample().Kinds()
	if diff := cmp.Diff([]string{"", "FTHG"}, num); diff != "" {
		t.Fatalf("numeric mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"HomeTeam", "HM1"}, cat); diff != "" {
		t.Fatalf("categorical mismatch (-want +got):\n%s", diff)
	}
}

func TestFrame_SelectTakeRecord(t *testing.T) {
	f := sample()
	s, err := f.Select("HM1", "HomeTeam")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	sub := s.Take([]int{2, 0})
	want := [][]string{{"M", "Everton"}, {"W", "Arsenal"}}
	if diff := cmp.Diff(want, sub.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if got := sub.Record(0)["HomeTeam"]; got != "Everton" {
		t.Fatalf("Record: got %q", got)
	}
}

func TestCSV_RoundTripFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "out.csv")
	if err := WriteCSV(p, sample()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	got, err := ReadCSV(p)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if diff := cmp.Diff(sample(), got); diff != "" {
		t.Fatalf("frame mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, err := Decode(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
	if _, err := Decode(strings.NewReader("a,b\n1,2\n3\n")); err == nil {
		t.Fatal("expected error for ragged row")
	}
}
