package forecast

import "math"

// AggregateByDay groups the series by local calendar day and summarises each
// day. Days keep first-seen order, which is chronological for sorted input.
// A nil ranker always falls back to the day's first description.
func AggregateByDay(samples []Sample, offsetSeconds int64, ranker Ranker) ([]DailySummary, error) {
	if err := validateSeries(samples, offsetSeconds); err != nil {
		return nil, err
	}
	if ranker == nil {
		ranker = PriorityList(nil)
	}

	var order []string
	groups := make(map[string][]LocalizedSample)
	for _, s := range samples {
		ls := localizeSample(s, offsetSeconds)
		if _, ok := groups[ls.LocalDayKey]; !ok {
			order = append(order, ls.LocalDayKey)
		}
		groups[ls.LocalDayKey] = append(groups[ls.LocalDayKey], ls)
	}

	days := make([]DailySummary, 0, len(order))
	for _, key := range order {
		days = append(days, summarize(key, groups[key], ranker))
	}
	return days, nil
}

func summarize(key string, group []LocalizedSample, ranker Ranker) DailySummary {
	minTemp, maxTemp := math.NaN(), math.NaN()
	var descriptions []string
	seen := make(map[string]bool)

	for _, s := range group {
		t := s.Temperature
		if !math.IsNaN(t) && !math.IsInf(t, 0) {
			if math.IsNaN(minTemp) || t < minTemp {
				minTemp = t
			}
			if math.IsNaN(maxTemp) || t > maxTemp {
				maxTemp = t
			}
		}
		if !seen[s.Description] {
			seen[s.Description] = true
			descriptions = append(descriptions, s.Description)
		}
	}

	description := ranker.Pick(descriptions)

	// The icon travels with the first sample that carries the winning description.
	var icon string
	for _, s := range group {
		if s.Description == description {
			icon = s.IconCode
			break
		}
	}

	return DailySummary{
		DayKey:                    key,
		MinTemperature:            minTemp,
		MaxTemperature:            maxTemp,
		RepresentativeDescription: description,
		RepresentativeIconCode:    icon,
		Samples:                   group,
	}
}

// Build produces both views from one series with a single offset.
func Build(samples []Sample, offsetSeconds, nowUTC int64, ranker Ranker) (Views, error) {
	today, err := TodayRemaining(samples, offsetSeconds, nowUTC)
	if err != nil {
		return Views{}, err
	}
	days, err := AggregateByDay(samples, offsetSeconds, ranker)
	if err != nil {
		return Views{}, err
	}
	return Views{Today: today, Days: days}, nil
}
