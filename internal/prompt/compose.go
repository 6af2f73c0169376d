package prompt

import (
	"strconv"
	"strings"
)

const (
	addendumHeader   = "\n\n### ADDITIONAL INSTRUCTIONS FROM THE USER\n"
	scriptsHeader    = "\n\nHere are the scripts:\n\n"
	scriptSeparator  = "\n\n---\n\n"
	scriptLabelStart = "Script "
)

// Assemble joins rendered instructions, the addendum (only when it has
// non-space content) and the scripts labelled "Script 1:", "Script 2:", ...
// in the given order.
func Assemble(instructions, addendum string, scripts []string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(instructions, "\n"))
	if add := strings.TrimSpace(addendum); add != "" {
		b.WriteString(addendumHeader)
		b.WriteString(add)
	}
	b.WriteString(scriptsHeader)
	for i, s := range scripts {
		if i > 0 {
			b.WriteString(scriptSeparator)
		}
		b.WriteString(scriptLabelStart)
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(":\n")
		b.WriteString(s)
	}
	return b.String()
}
