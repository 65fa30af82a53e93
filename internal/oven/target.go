package oven

import "anova_oven/internal/models"

// DeriveTarget picks the completion condition of a snapshot. A probe with a
// target temperature wins over a timer; a timer counts only once it has an
// initial duration.
func DeriveTarget(st *models.State) models.Target {
	if st == nil {
		return models.Target{}
	}
	if p := st.Nodes.TemperatureProbe; p != nil && p.TargetTemperature != nil {
		return models.ProbeTarget(p.Temperature, p.TargetTemperature)
	}
	if t := st.Nodes.Timer; t != nil && t.Initial != 0 {
		return models.TimerTarget(t.Current, t.Initial)
	}
	return models.Target{}
}

// NextTarget derives the target of st and reports whether the listener
// should be told that prev was reached: the target changed, and prev was
// either absent or already satisfied.
func NextTarget(prev models.Target, st *models.State) (models.Target, bool) {
	cur := DeriveTarget(st)
	if cur.Equal(prev) {
		return cur, false
	}
	return cur, prev.IsZero() || prev.Reached()
}
