package analytics

import (
	"math"
)

const (
	zThreshold       = 2.0
	minAnomalySample = 3
)

// Anomaly is a record whose primary value deviates by more than two standard
// deviations from the mean.
type Anomaly struct {
	// Index is the position of the record in the analysed set.
	Index  int     `json:"index" yaml:"index"`
	Date   string  `json:"date" yaml:"date"`
	Value  float64 `json:"value" yaml:"value"`
	ZScore float64 `json:"zScore" yaml:"z_score"`
}

// Anomalies lists flagged records in record order.
type Anomalies struct {
	Count  int       `json:"count" yaml:"count"`
	Mean   float64   `json:"mean" yaml:"mean"`
	StdDev float64   `json:"stdDev" yaml:"std_dev"`
	Items  []Anomaly `json:"items" yaml:"items"`
	Max    *Anomaly  `json:"maxAnomaly,omitempty" yaml:"max_anomaly,omitempty"`
	Min    *Anomaly  `json:"minAnomaly,omitempty" yaml:"min_anomaly,omitempty"`
}

// DetectAnomalies flags records with |z| > 2 on the primary value using the
// population mean and standard deviation. Fewer than three records yield an
// empty result.
func DetectAnomalies(records []Record, fm FieldMap) Anomalies {
	res := Anomalies{Items: []Anomaly{}}
	if len(records) < minAnomalySample {
		return res
	}
	vals := values(records, fm, RoleValue)
	res.Mean, res.StdDev = meanStd(vals)
	for i, v := range vals {
		z := ZScore(v, res.Mean, res.StdDev)
		if math.Abs(z) <= zThreshold {
			continue
		}
		res.Items = append(res.Items, Anomaly{Index: i, Date: fm.DateString(records[i]), Value: v, ZScore: z})
	}
	res.Count = len(res.Items)
	for i := range res.Items {
		if res.Max == nil || res.Items[i].Value > res.Max.Value {
			hi := res.Items[i]
			res.Max = &hi
		}
		if res.Min == nil || res.Items[i].Value < res.Min.Value {
			lo := res.Items[i]
			res.Min = &lo
		}
	}
	return res
}

// ZScore is (v-mean)/std, or 0 when std is 0.
func ZScore(v, mean, std float64) float64 {
	if std == 0 {
		return 0
	}
	return finite((v - mean) / std)
}
