package forecast

// Ranker chooses one representative description for a day.
// descriptions are the day's distinct descriptions in chronological
// first-seen order.
type Ranker interface {
	Pick(descriptions []string) string
}

// PriorityList ranks descriptions by their position in the list; earlier
// entries dominate later ones.
type PriorityList []string

// Pick implements Ranker.
func (p PriorityList) Pick(descriptions []string) string {
	return Pick(descriptions, p)
}

// Pick returns the first entry of priority that appears in descriptions.
// When none does, the first description is returned; an empty input yields "".
func Pick(descriptions, priority []string) string {
	present := make(map[string]struct{}, len(descriptions))
	for _, d := range descriptions {
		present[d] = struct{}{}
	}
	for _, p := range priority {
		if _, ok := present[p]; ok {
			return p
		}
	}
	if len(descriptions) == 0 {
		return ""
	}
	return descriptions[0]
}
