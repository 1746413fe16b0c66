package analytics

import (
	"fmt"
	"strings"
)

const (
	maxMarkdownPairs     = 10
	maxMarkdownAnomalies = 10
	maxMarkdownItems     = 15
)

// Markdown renders the report as compact sectioned Markdown.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Records: %d (in range %d)\n", r.TotalRecords, r.FilteredRecords))
	b.WriteString(fmt.Sprintf("Range: %s\n", r.Range))
	b.WriteString(fmt.Sprintf("Fields: value=%s, value2=%s, date=%s, category=%s, name=%s\n\n",
		r.FieldMap.Value, r.FieldMap.Value2, r.FieldMap.Date, r.FieldMap.Category, r.FieldMap.Name))

	b.WriteString("[KPIS]\n")
	k := r.KPIs
	b.WriteString(fmt.Sprintf("- Total %s: %.2f (avg %.2f)\n", r.FieldMap.Value, k.TotalValue, k.AvgValue))
	b.WriteString(fmt.Sprintf("- Total %s: %.2f (avg %.2f)\n", r.FieldMap.Value2, k.TotalValue2, k.AvgValue2))
	b.WriteString(fmt.Sprintf("- Ratio: %.2f%%\n", k.Ratio))
	s := r.Stats
	b.WriteString(fmt.Sprintf("- Mean %.4g, median %.4g, std %.4g\n", s.Mean, s.Median, s.StdDev))
	b.WriteString(fmt.Sprintf("- Growth: %.1f%% (%s)\n", s.GrowthRate, s.Trend))

	if len(r.Series) > 0 {
		b.WriteString("\n[TREND]\n")
		b.WriteString(fmt.Sprintf("| month | %s | %s |\n", safeCell(r.FieldMap.Value), safeCell(r.FieldMap.Value2)))
		b.WriteString("| --- | --- | --- |\n")
		for _, p := range r.Series {
			b.WriteString(fmt.Sprintf("| %s | %.2f | %.2f |\n", p.Month, p.Value, p.Value2))
		}
	}

	if len(r.TopNames) > 0 || len(r.TopCategories) > 0 || len(r.Breakdowns) > 0 {
		b.WriteString("\n[TOP ENTITIES]\n")
		writeTop(&b, r.FieldMap.Name, r.TopNames)
		writeTop(&b, r.FieldMap.Category, r.TopCategories)
		for _, bd := range r.Breakdowns {
			writeTop(&b, bd.Field, bd.Rows)
		}
	}

	if len(r.Pareto.Items) > 0 {
		b.WriteString("\n[PARETO]\n")
		writePareto(&b, r.Pareto)
		if len(r.CategoryPareto.Items) > 0 {
			writePareto(&b, r.CategoryPareto)
		}
	}

	if len(r.RFM.Customers) > 0 {
		b.WriteString("\n[RFM]\n")
		b.WriteString(fmt.Sprintf("Customers scored: %d\n", len(r.RFM.Customers)))
		for _, seg := range r.RFM.Segments {
			if seg.Count == 0 {
				continue
			}
			b.WriteString(fmt.Sprintf("- %s: %d customers, revenue %.2f\n", seg.Segment, seg.Count, seg.Revenue))
		}
	}

	if len(r.Correlation.Pairs) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		if st := r.Correlation.Strongest; st != nil {
			b.WriteString(fmt.Sprintf("Strongest: %s ~ %s r=%.3f (%s)\n", st.FieldA, st.FieldB, st.Coefficient, r.Correlation.Label))
		}
		for i, p := range r.Correlation.Pairs {
			if i == maxMarkdownPairs {
				break
			}
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.FieldA, p.FieldB, p.Coefficient))
		}
	}

	if r.Anomalies.Count > 0 {
		b.WriteString("\n[ANOMALIES]\n")
		a := r.Anomalies
		b.WriteString(fmt.Sprintf("%d records beyond |z|>%.0f (mean %.4g, std %.4g)\n", a.Count, zThreshold, a.Mean, a.StdDev))
		for i, it := range a.Items {
			if i == maxMarkdownAnomalies {
				b.WriteString(fmt.Sprintf("- ... %d more\n", a.Count-maxMarkdownAnomalies))
				break
			}
			date := it.Date
			if date == "" {
				date = "(no date)"
			}
			b.WriteString(fmt.Sprintf("- #%d %s: %.2f (z=%.2f)\n", it.Index, safeCell(date), it.Value, it.ZScore))
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeTop(b *strings.Builder, field string, rows []TopRow) {
	if len(rows) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("By %s:\n", safeCell(field)))
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%d. %s: %.2f / %.2f\n", row.Rank, safeCell(row.Name), row.Value, row.Value2))
	}
}

func writePareto(b *strings.Builder, p Pareto) {
	c := p.Concentration
	b.WriteString(fmt.Sprintf("By %s: top %d of %d hold %.1f%% of value", safeCell(p.GroupedBy), c.TopCount, c.EntityCount, c.TopSharePercent))
	if c.Dominant {
		b.WriteString(" (concentrated)")
	}
	b.WriteString("\n")
	for _, cc := range p.Classes {
		b.WriteString(fmt.Sprintf("  • class %s: %d entities, %.2f\n", cc.Category, cc.Count, cc.Value))
	}
	for i, it := range p.Items {
		if i == maxMarkdownItems {
			break
		}
		b.WriteString(fmt.Sprintf("  %d. %s [%s] %.1f%% (cum %.1f%%)\n", it.Rank, safeCell(it.Name), it.Category, it.SharePercent, it.CumulativePercent))
	}
}

func safeCell(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
