package milp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// lpLineWidth keeps LP lines well below the 255 character limit of the
// format.
const lpLineWidth = 200

// WriteLP writes m in CPLEX LP format.
func WriteLP(w io.Writer, m *Model) error {
	bw := bufio.NewWriter(w)
	lw := &lineWriter{w: bw}

	fmt.Fprintf(bw, "\\ Problem: %s\n", m.Name)
	if m.Sense == Minimize {
		bw.WriteString("Minimize\n")
	} else {
		bw.WriteString("Maximize\n")
	}
	lw.start(" obj:")
	if len(m.Objective) == 0 && len(m.vars) > 0 {
		lw.add("0 " + m.vars[0])
	}
	for _, t := range m.Objective {
		lw.add(formatTerm(t.Coef, m.vars[t.Var]))
	}
	lw.end()

	bw.WriteString("Subject To\n")
	for _, c := range m.Constraints {
		lw.start(" " + c.Name + ":")
		if len(c.Terms) == 0 && len(m.vars) > 0 {
			lw.add("0 " + m.vars[0])
		}
		for _, t := range c.Terms {
			lw.add(formatTerm(t.Coef, m.vars[t.Var]))
		}
		lw.add(string(c.Op))
		lw.add(formatNumber(c.RHS))
		lw.end()
	}

	if len(m.vars) > 0 {
		bw.WriteString("Binaries\n")
		lw.start("")
		for _, name := range m.vars {
			lw.add(name)
		}
		lw.end()
	}
	bw.WriteString("End\n")
	if lw.err != nil {
		return lw.err
	}
	return bw.Flush()
}

func formatTerm(coef float64, name string) string {
	sign := "+"
	if coef < 0 {
		sign = "-"
		coef = -coef
	}
	return sign + " " + formatNumber(coef) + " " + name
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type lineWriter struct {
	w   *bufio.Writer
	buf strings.Builder
	err error
}

func (l *lineWriter) start(prefix string) {
	l.buf.Reset()
	l.buf.WriteString(prefix)
}

func (l *lineWriter) add(token string) {
	if l.buf.Len()+len(token)+1 > lpLineWidth {
		l.flush()
		l.buf.WriteString("   ")
	}
	if l.buf.Len() > 0 {
		l.buf.WriteByte(' ')
	}
	l.buf.WriteString(token)
}

func (l *lineWriter) end() {
	l.flush()
}

func (l *lineWriter) flush() {
	if l.err != nil {
		return
	}
	if l.buf.Len() > 0 {
		_, l.err = l.w.WriteString(l.buf.String() + "\n")
	}
	l.buf.Reset()
}
