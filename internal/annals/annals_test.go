package annals

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/korean"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLoadCSVWithKoreanHeaders(t *testing.T) {
	path := writeFile(t, "joseon.csv", "\xef\xbb\xbf양력,지역,기상현상\n"+
		"1525-07-02,한양,비가 내렸다\n"+
		"not a date,한양,skip me\n"+
		"1525/07/01,경상도,우박이 내렸다\n")

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	// sorted by date
	if !records[0].Date.Equal(day(1525, time.July, 1)) || records[0].Location != "경상도" {
		t.Errorf("first record = %+v", records[0])
	}
	if records[1].Description != "비가 내렸다" {
		t.Errorf("second description = %q", records[1].Description)
	}
}

func TestLoadTSVWithYearMonthDayColumns(t *testing.T) {
	path := writeFile(t, "joseon.tsv", "서기력 년\t서기력 월\t서기력 일\t장소\t기사\n"+
		"1525 년\t7\t1\t한양\t큰비가 내려 물이 넘쳤다\n"+
		"1525\t2\t30\t한양\t잘못된 날짜\n")

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len = %d, want 1 (invalid Feb 30 skipped)", len(records))
	}
	if !records[0].Date.Equal(day(1525, time.July, 1)) {
		t.Errorf("date = %v", records[0].Date)
	}
	if records[0].Location != "한양" {
		t.Errorf("location = %q", records[0].Location)
	}
}

func TestLoadJSONWithDescriptionFallback(t *testing.T) {
	path := writeFile(t, "joseon.json", `[
		{"date": "1525-07-01", "place": "한양", "note": "이날 하늘에서 천둥과 번개가 크게 쳤다"},
		{"date": "15250702", "place": null, "note": "short"}
	]`)

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].Description != "이날 하늘에서 천둥과 번개가 크게 쳤다" {
		t.Errorf("fallback description = %q", records[0].Description)
	}
	if records[1].Location != "" || records[1].Description != "" {
		t.Errorf("second record = %+v", records[1])
	}
}

func TestLoadCP949(t *testing.T) {
	encoded, err := korean.EUCKR.NewEncoder().String("날짜,지역,기상\n1525-07-01,한양,큰비가 내렸다\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := writeFile(t, "joseon.csv", encoded)

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len = %d, want 1", len(records))
	}
	if records[0].Location != "한양" || records[0].Description != "큰비가 내렸다" {
		t.Errorf("record not decoded: %+v", records[0])
	}
}

func TestLoadWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"양력", "지역", "기상현상"},
		{"1525-07-01", "한양", "큰비가 내렸다"},
		{"", "한양", "날짜 없음"},
		{"1525-06-30", "경상도", "우박"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "joseon.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if !records[0].Date.Equal(day(1525, time.June, 30)) || records[1].Description != "큰비가 내렸다" {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(writeFile(t, "x.csv", "foo,bar\n1,2\n")); !errors.Is(err, ErrNoDateColumn) {
		t.Errorf("expected ErrNoDateColumn, got %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Errorf("expected error for missing file")
	}
	if _, err := Load(writeFile(t, "x.json", `[]`)); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("expected ErrEmptyTable, got %v", err)
	}
}

var sample = []Record{
	{Date: day(1524, time.June, 28), Location: "한양", Description: "맑음"},
	{Date: day(1525, time.July, 1), Location: "경상도", Description: "비"},
	{Date: day(1525, time.July, 1), Location: "한양", Description: "큰비"},
	{Date: day(1600, time.July, 1), Location: "전라도", Description: "가뭄이 심하였다"},
	{Date: day(1525, time.July, 4), Location: "한양", Description: "바람"},
}

func TestMatch(t *testing.T) {
	target := day(2025, time.July, 1)

	tests := []struct {
		name     string
		target   time.Time
		opts     Options
		wantOK   bool
		wantDate time.Time
		wantLoc  string
	}{
		{"exact same date prefers hint", day(1525, time.July, 1), Options{Mode: ModeExact, LocationHint: "한양"}, true, day(1525, time.July, 1), "한양"},
		{"exact without hint takes first", day(1525, time.July, 1), Options{Mode: ModeExact}, true, day(1525, time.July, 1), "경상도"},
		{"exact miss without tolerance", day(1525, time.July, 2), Options{Mode: ModeExact}, false, time.Time{}, ""},
		{"exact within tolerance", day(1525, time.July, 3), Options{Mode: ModeExact, Tolerance: 1}, true, day(1525, time.July, 4), "한양"},
		{"default mode is exact", day(1525, time.July, 1), Options{LocationHint: "한양"}, true, day(1525, time.July, 1), "한양"},
		{"monthday prefers longer description", target, Options{Mode: ModeMonthDay}, true, day(1600, time.July, 1), "전라도"},
		{"monthday prefers hint", target, Options{Mode: ModeMonthDay, LocationHint: "한양"}, true, day(1525, time.July, 1), "한양"},
		{"yearshift 500", target, Options{Mode: ModeYearShift}, true, day(1525, time.July, 1), "한양"},
		{"yearshift miss", day(2025, time.July, 2), Options{Mode: ModeYearShift}, false, time.Time{}, ""},
		{"doy nearest", day(2025, time.July, 5), Options{Mode: ModeDayOfYear, Tolerance: 1}, true, day(1525, time.July, 4), "한양"},
		{"doy bounded miss", day(2025, time.December, 1), Options{Mode: ModeDayOfYear, Tolerance: 5}, false, time.Time{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Match(sample, tt.target, tt.opts)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v (got %+v)", ok, tt.wantOK, got)
			}
			if !ok {
				return
			}
			if !got.Date.Equal(tt.wantDate) || got.Location != tt.wantLoc {
				t.Errorf("got %s %s, want %s %s", got.Date.Format(time.DateOnly), got.Location,
					tt.wantDate.Format(time.DateOnly), tt.wantLoc)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	got := Summary(Record{Date: day(1525, time.July, 1), Location: "한양", Description: "비가 내렸다"})
	if got != "조선왕조실록: 1525-07-01, 한양: 비가 내렸다" {
		t.Errorf("Summary = %q", got)
	}

	got = Summary(Record{Date: day(1525, time.July, 1)})
	if got != "조선왕조실록: 1525-07-01: 기록 있음" {
		t.Errorf("Summary without details = %q", got)
	}

	long := Summary(Record{Date: day(1525, time.July, 1), Description: strings.Repeat("비", 150)})
	if !strings.HasSuffix(long, "…") || strings.Count(long, "비") != 99 {
		t.Errorf("long excerpt not truncated to 100 runes: %q", long)
	}
}
