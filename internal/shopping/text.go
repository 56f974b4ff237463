package shopping

import (
	"fmt"
	"strings"
)

// FormatText renders a plain-text version of the list for email bodies.
func FormatText(list *List, title string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", len(title)))

	if len(list.Lines) == 0 {
		b.WriteString("Nothing to buy.\n")
		return b.String()
	}

	for _, l := range list.Lines {
		fmt.Fprintf(&b, "- %s: %s %s", l.Name, FormatQuantity(l.Quantity), l.Unit)
		if l.LineTotal > 0 {
			fmt.Fprintf(&b, " (%s)", FormatAmount(l.LineTotal))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nTotal: %s\n", FormatAmount(list.Total))
	return b.String()
}
