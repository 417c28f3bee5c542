// Package annals looks up historical weather records (for example an export of
// the Joseon dynasty annals) for the day being compared.
package annals

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/korean"
)

// Record is one dated entry of the annals.
type Record struct {
	Date        time.Time
	Location    string
	Description string
}

var (
	ErrNoDateColumn = errors.New("annals: no date column (date/양력/서기 or year/month/day)")
	ErrEmptyTable   = errors.New("annals: table has no rows")
)

var (
	dateColumns  = []string{"date", "날짜", "양력", "양력날짜", "양력일자", "gregorian_date", "solar_date"}
	yearColumns  = []string{"year", "gregorian_year", "ad_year", "서기년", "양력년"}
	monthColumns = []string{"month", "gregorian_month", "ad_month", "서기월", "양력월"}
	dayColumns   = []string{"day", "gregorian_day", "ad_day", "서기일", "양력일"}
	locColumns   = []string{"location", "지역", "지명", "place", "장소"}
	descColumns  = []string{"weather", "기상", "기상현상", "날씨", "현상", "내용", "발췌", "기사내용", "본문", "원문", "번역", "기사", "텍스트"}

	dateLayouts = []string{"2006-01-02", "2006/01/02", "2006.01.02", "20060102", time.RFC3339, "2006-01-02 15:04:05"}

	nonKeyChars = regexp.MustCompile(`[^0-9a-z\x{ac00}-\x{d7a3}]`)
	hangul      = regexp.MustCompile(`[\x{ac00}-\x{d7a3}]`)
)

// table is a header row plus data rows of string cells.
type table struct {
	header []string
	rows   [][]string
}

func (t table) cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Load reads records from an Excel workbook, a CSV/TSV/pipe-delimited or a
// JSON file, detecting the date, location and description columns by header
// name. Text that is not valid UTF-8 is decoded as CP949/EUC-KR. Rows without
// a parsable date are skipped. Records are returned sorted by date.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("annals: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xlsx" || ext == ".xlsm" {
		t, err := readWorkbook(data)
		if err != nil {
			return nil, err
		}
		return parseTable(t)
	}

	data, err = decodeText(data)
	if err != nil {
		return nil, err
	}

	var t table
	switch ext {
	case ".json":
		t, err = readJSON(data)
	case ".tsv", ".tab", ".txt":
		t, err = readDelimited(data, '\t', ',', '|')
	default:
		t, err = readDelimited(data, ',', '\t', '|')
	}
	if err != nil {
		return nil, err
	}
	return parseTable(t)
}

// decodeText strips a UTF-8 BOM, or converts legacy Korean encodings to UTF-8.
func decodeText(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		return bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), nil
	}
	// EUC-KR decoder in x/text also covers the CP949 extension.
	out, err := korean.EUCKR.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("annals: decode cp949: %w", err)
	}
	return out, nil
}

// readWorkbook reads the first sheet of an Excel workbook.
func readWorkbook(data []byte) (table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return table{}, fmt.Errorf("annals: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table{}, ErrEmptyTable
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return table{}, fmt.Errorf("annals: read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return table{}, ErrEmptyTable
	}
	return table{header: rows[0], rows: rows[1:]}, nil
}

// readDelimited tries each separator and keeps the first that yields more than one column.
func readDelimited(data []byte, seps ...rune) (table, error) {
	var lastErr error
	for _, sep := range seps {
		r := csv.NewReader(bytes.NewReader(data))
		r.Comma = sep
		r.FieldsPerRecord = -1
		r.LazyQuotes = true

		all, err := r.ReadAll()
		if err != nil {
			lastErr = err
			continue
		}
		if len(all) == 0 {
			return table{}, ErrEmptyTable
		}
		if len(all[0]) < 2 {
			continue
		}
		return table{header: all[0], rows: all[1:]}, nil
	}
	if lastErr != nil {
		return table{}, fmt.Errorf("annals: read delimited file: %w", lastErr)
	}
	return table{}, fmt.Errorf("annals: could not detect a column separator")
}

// readJSON accepts an array of flat objects.
func readJSON(data []byte) (table, error) {
	var items []map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&items); err != nil {
		return table{}, fmt.Errorf("annals: read json: %w", err)
	}
	if len(items) == 0 {
		return table{}, ErrEmptyTable
	}

	index := make(map[string]int)
	var t table
	for _, it := range items {
		keys := make([]string, 0, len(it))
		for k := range it {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, ok := index[k]; !ok {
				index[k] = len(t.header)
				t.header = append(t.header, k)
			}
		}
	}
	for _, it := range items {
		row := make([]string, len(t.header))
		for k, v := range it {
			if v == nil {
				continue
			}
			row[index[k]] = fmt.Sprint(v)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func parseTable(t table) ([]Record, error) {
	dateCol := firstColumn(t.header, dateColumns)
	yCol, mCol, dCol := -1, -1, -1
	if dateCol < 0 {
		yCol = firstColumn(t.header, yearColumns, []string{"서기력", "년"}, []string{"양력", "년"})
		mCol = firstColumn(t.header, monthColumns, []string{"서기력", "월"}, []string{"양력", "월"})
		dCol = firstColumn(t.header, dayColumns, []string{"서기력", "일"}, []string{"양력", "일"})
		if yCol < 0 || mCol < 0 || dCol < 0 {
			return nil, ErrNoDateColumn
		}
	}
	locCol := firstColumn(t.header, locColumns, []string{"장소"}, []string{"지명"}, []string{"지역"})
	descCol := firstColumn(t.header, descColumns)

	var records []Record
	for _, row := range t.rows {
		var (
			d  time.Time
			ok bool
		)
		if dateCol >= 0 {
			d, ok = parseDate(t.cell(row, dateCol))
		} else {
			d, ok = buildDate(t.cell(row, yCol), t.cell(row, mCol), t.cell(row, dCol))
		}
		if !ok {
			continue
		}

		rec := Record{
			Date:        d,
			Location:    t.cell(row, locCol),
			Description: t.cell(row, descCol),
		}
		if rec.Description == "" {
			rec.Description = longHangulCell(row)
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
	return records, nil
}

// firstColumn returns the index of the first header matching a candidate name.
// Each extra token group matches a header containing all of its tokens.
func firstColumn(header []string, candidates []string, tokenGroups ...[]string) int {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = normalizeKey(h)
	}

	for _, c := range candidates {
		want := normalizeKey(c)
		for i, k := range keys {
			if k != "" && k == want {
				return i
			}
		}
	}

	for _, tokens := range tokenGroups {
		for i, k := range keys {
			if k != "" && containsAll(k, tokens) {
				return i
			}
		}
	}
	return -1
}

func containsAll(key string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(key, normalizeKey(tok)) {
			return false
		}
	}
	return true
}

func normalizeKey(s string) string {
	return nonKeyChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "")
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// buildDate assembles a date from separate cells like "1525", "7", "1" or "1525 년".
func buildDate(y, m, d string) (time.Time, bool) {
	year, err1 := leadingInt(y)
	month, err2 := leadingInt(m)
	day, err3 := leadingInt(d)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// reject overflowed dates such as 02-30
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func leadingInt(s string) (int, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(fields[0])
}

// longHangulCell picks the first cell that looks like Korean prose.
func longHangulCell(row []string) string {
	for _, c := range row {
		c = strings.TrimSpace(c)
		if utf8.RuneCountInString(c) >= 10 && hangul.MatchString(c) {
			return c
		}
	}
	return ""
}
