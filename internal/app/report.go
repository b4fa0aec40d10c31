package service

import (
	"fmt"
	"math"

	"github.com/okian/dietcause/internal/domain/estimator"
	"github.com/okian/dietcause/internal/domain/frame"
	"github.com/okian/dietcause/internal/domain/model"
)

// Report is everything a renderer needs for one analysis.
type Report struct {
	Tail       model.Log          `json:"tail"`
	Treatment  model.Treatment    `json:"treatment"`
	Estimate   estimator.Estimate `json:"estimate"`
	GroupMeans []frame.GroupMean  `json:"group_means"`
	Median     float64            `json:"median"`
	Rows       int                `json:"rows"`
}

// Narrative reports the point estimate rounded to 3 decimals.
func (r Report) Narrative() string {
	return fmt.Sprintf("Increasing %s is estimated to reduce weight by %.3f kg on average.",
		r.Treatment, Round3(r.Estimate.Effect))
}

// IntervalSentence reports the bounds rounded to 3 decimals.
func (r Report) IntervalSentence() string {
	return fmt.Sprintf("Confidence interval: [%.3f, %.3f]",
		Round3(r.Estimate.Lower), Round3(r.Estimate.Upper))
}

// ChartTitle labels the low/high comparison chart.
func (r Report) ChartTitle() string {
	return fmt.Sprintf("Mean daily weight loss by %s level", r.Treatment)
}

// Round3 rounds half away from zero to 3 decimals; -0 prints as 0.
func Round3(v float64) float64 {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return 0
	}
	return r
}
