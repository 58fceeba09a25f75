package commands

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
)

// renderTable lays rows out under header with a count footer.
func renderTable(header []string, rows [][]string, noun string) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)

	aligns := make([]int, len(header))
	for i := range aligns {
		aligns[i] = tablewriter.ALIGN_LEFT
	}
	table.SetColumnAlignment(aligns)

	table.AppendBulk(rows)

	footer := make([]string, len(header))
	footer[0] = fmt.Sprintf("%d %s", len(rows), noun)
	table.SetFooter(footer)

	table.Render()
	return buf.String()
}
