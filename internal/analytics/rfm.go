package analytics

import (
	"errors"
	"math"
	"sort"
	"time"
)

// ErrInvalidNow reports a missing reference instant for recency.
var ErrInvalidNow = errors.New("invalid reference time")

// Segment is an RFM customer segment.
type Segment string

const (
	SegmentChampions Segment = "champions"
	SegmentLoyal     Segment = "loyal"
	SegmentPotential Segment = "potential"
	SegmentAtRisk    Segment = "at-risk"
	SegmentLost      Segment = "lost"
)

// DefaultCustomerField is the record key tried before the category role.
const DefaultCustomerField = "customerId"

type segmentRule struct {
	segment Segment
	match   func(r, f, m int) bool
}

// segmentRules is evaluated top to bottom; the first match wins.
var segmentRules = []segmentRule{
	{SegmentChampions, func(r, f, m int) bool { return r >= 4 && f >= 4 && m >= 4 }},
	{SegmentLoyal, func(r, f, m int) bool { return r >= 3 && f >= 3 && m >= 3 }},
	{SegmentPotential, func(r, f, _ int) bool { return r >= 3 && f <= 2 }},
	{SegmentAtRisk, func(r, f, _ int) bool { return r <= 2 && f >= 3 }},
	{SegmentLost, func(int, int, int) bool { return true }},
}

// Segments lists every segment in rule order.
var Segments = []Segment{SegmentChampions, SegmentLoyal, SegmentPotential, SegmentAtRisk, SegmentLost}

// AssignSegment maps R/F/M scores to a segment.
func AssignSegment(r, f, m int) Segment {
	for _, rule := range segmentRules {
		if rule.match(r, f, m) {
			return rule.segment
		}
	}
	return SegmentLost
}

// RFMOptions configures SegmentRFM.
type RFMOptions struct {
	// Now is the reference instant recency is measured from. Required.
	Now time.Time
	// CustomerField names the customer id field; DefaultCustomerField when empty.
	CustomerField string
}

// RFMCustomer is one scored customer.
type RFMCustomer struct {
	ID        string  `json:"id" yaml:"id"`
	Recency   int     `json:"recency" yaml:"recency"`
	Frequency int     `json:"frequency" yaml:"frequency"`
	Monetary  float64 `json:"monetary" yaml:"monetary"`
	R         int     `json:"r" yaml:"r"`
	F         int     `json:"f" yaml:"f"`
	M         int     `json:"m" yaml:"m"`
	Segment   Segment `json:"segment" yaml:"segment"`
}

// SegmentSummary aggregates customers per segment.
type SegmentSummary struct {
	Segment Segment `json:"segment" yaml:"segment"`
	Count   int     `json:"count" yaml:"count"`
	Revenue float64 `json:"revenue" yaml:"revenue"`
}

// RFMResult holds the scored customers in first-seen order.
type RFMResult struct {
	Customers []RFMCustomer    `json:"customers" yaml:"customers"`
	Segments  []SegmentSummary `json:"segments" yaml:"segments"`
	// Skipped counts customers without any parsable order date.
	Skipped int `json:"skipped" yaml:"skipped"`
}

type rfmAcc struct {
	id       string
	last     time.Time
	hasDate  bool
	orders   int
	monetary float64
}

// SegmentRFM derives recency, frequency and monetary value per customer,
// scores each by quintile and assigns a segment.
func SegmentRFM(records []Record, fm FieldMap, opts RFMOptions) (RFMResult, error) {
	if opts.Now.IsZero() {
		return RFMResult{}, ErrInvalidNow
	}
	field := opts.CustomerField
	if field == "" {
		field = DefaultCustomerField
	}

	idx := make(map[string]int)
	var accs []*rfmAcc
	for _, rec := range records {
		id := FieldText(rec, field)
		if id == "" {
			id = fm.Text(rec, RoleCategory)
		}
		i, ok := idx[id]
		if !ok {
			i = len(accs)
			idx[id] = i
			accs = append(accs, &rfmAcc{id: id})
		}
		a := accs[i]
		a.orders++
		a.monetary += fm.Number(rec, RoleValue)
		if t, ok := fm.DateOf(rec); ok && (!a.hasDate || t.After(a.last)) {
			a.last = t
			a.hasDate = true
		}
	}

	var res RFMResult
	customers := make([]RFMCustomer, 0, len(accs))
	for _, a := range accs {
		if !a.hasDate {
			res.Skipped++
			continue
		}
		customers = append(customers, RFMCustomer{
			ID:        a.id,
			Recency:   daysBetween(a.last, opts.Now),
			Frequency: a.orders,
			Monetary:  a.monetary,
		})
	}

	rs := quintileScores(len(customers), func(i, j int) bool { return customers[i].Recency < customers[j].Recency })
	fs := quintileScores(len(customers), func(i, j int) bool { return customers[i].Frequency > customers[j].Frequency })
	ms := quintileScores(len(customers), func(i, j int) bool { return customers[i].Monetary > customers[j].Monetary })
	for i := range customers {
		c := &customers[i]
		c.R, c.F, c.M = rs[i], fs[i], ms[i]
		c.Segment = AssignSegment(c.R, c.F, c.M)
	}
	res.Customers = customers
	res.Segments = summarizeSegments(customers)
	return res, nil
}

// quintileScores orders n items best-first with better (stable) and splits
// them into buckets of ceil(n/5); the best bucket scores 5, the worst 1.
func quintileScores(n int, better func(i, j int) bool) []int {
	scores := make([]int, n)
	if n == 0 {
		return scores
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return better(order[a], order[b]) })
	size := int(math.Ceil(float64(n) / 5))
	for pos, i := range order {
		s := 5 - pos/size
		if s < 1 {
			s = 1
		}
		scores[i] = s
	}
	return scores
}

func daysBetween(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

func summarizeSegments(customers []RFMCustomer) []SegmentSummary {
	out := make([]SegmentSummary, len(Segments))
	pos := make(map[Segment]int, len(Segments))
	for i, s := range Segments {
		out[i].Segment = s
		pos[s] = i
	}
	for _, c := range customers {
		i := pos[c.Segment]
		out[i].Count++
		out[i].Revenue += c.Monetary
	}
	return out
}
