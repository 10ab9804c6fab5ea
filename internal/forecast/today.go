package forecast

// TodayRemaining returns the samples that fall on the city's current local day
// at or after the current local instant, in input order. An empty result means
// no slots are left today and is not an error.
func TodayRemaining(samples []Sample, offsetSeconds, nowUTC int64) ([]LocalizedSample, error) {
	if err := validateSeries(samples, offsetSeconds); err != nil {
		return nil, err
	}
	if err := checkTimestamp("nowUtc", -1, nowUTC); err != nil {
		return nil, err
	}

	now := Localize(nowUTC, offsetSeconds)

	remaining := make([]LocalizedSample, 0)
	for _, s := range samples {
		ls := localizeSample(s, offsetSeconds)
		if ls.LocalDayKey == now.DayKey && ls.LocalInstant >= now.Instant {
			remaining = append(remaining, ls)
		}
	}
	return remaining, nil
}
