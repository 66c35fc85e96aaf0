package google

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gofinances/internal/dashboard"
)

var requiredHeaders = []string{"ID", "Type", "Amount", "Date"}

// serialEpoch is day zero of the serial numbers Sheets uses for dates.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// textDateLayouts cover dates typed as text in a pt-BR sheet.
var textDateLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
}

// parseTransactions converts a values matrix (as returned by the Sheets API)
// into stored records. Rows with every cell blank are skipped.
func parseTransactions(values [][]interface{}) ([]dashboard.Record, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := toStrings(values[0])
	col := map[string]int{}
	for _, h := range []string{"ID", "Type", "Name", "Amount", "Category", "Date"} {
		col[h] = indexOf(headers, h)
	}

	var missing []string
	for _, h := range requiredHeaders {
		if col[h] == -1 {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: unexpected transactions header: missing %s; got headers=%v",
			dashboard.ErrCorruptedData, strings.Join(missing, ","), headers)
	}

	records := make([]dashboard.Record, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if blank(row) {
			continue
		}
		records = append(records, dashboard.Record{
			ID:       safeGet(row, col["ID"]),
			Type:     safeGet(row, col["Type"]),
			Name:     safeGet(row, col["Name"]),
			Amount:   dashboard.FlexString(safeGet(row, col["Amount"])),
			Category: safeGet(row, col["Category"]),
			Date:     dateCell(values[i], col["Date"], safeGet(row, col["Date"])),
		})
	}
	return records, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch t := v.(type) {
		case float64:
			out[i] = strconv.FormatFloat(t, 'f', -1, 64)
		case nil:
			out[i] = ""
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(t))
		}
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func blank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

// dateCell normalises the Date cell to the stored layout. Date-formatted
// cells arrive as serial day numbers; text cells in dd/mm/yyyy are
// reordered. Anything else is passed on for the aggregator to judge.
func dateCell(row []interface{}, idx int, text string) string {
	if idx >= 0 && idx < len(row) {
		if serial, ok := row[idx].(float64); ok {
			return serialDate(serial)
		}
	}
	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return formatDate(t)
		}
	}
	return text
}

// serialDate converts a serial day number (fraction = time of day).
func serialDate(serial float64) string {
	days := math.Floor(serial)
	secs := math.Round((serial - days) * 24 * 60 * 60)
	return formatDate(serialEpoch.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second))
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02T15:04:05")
}
