package viewmodel

// Shown in place of a missing date.
const (
	PlanNoDate   = NoDateGroup
	BucketNoDate = "Someday…"
)

// DisplayDate formats a stored date for humans, or returns fallback when it
// is missing. Unparseable dates are shown verbatim.
func DisplayDate(date, fallback string) string {
	if date == "" {
		return fallback
	}
	t, ok := ParseDate(date)
	if !ok {
		return date
	}
	return t.Format("Jan 2, 2006")
}
