package revenue

import (
	"time-report-go/internal/domain/money"
	"time-report-go/internal/domain/tracking"
)

// Aggregate converts every line total into target and adds them up in
// slice order starting from zero.
func Aggregate(timeslots []tracking.Timeslot, target money.Code, rates money.RateTable) (money.Money, error) {
	items := make([]money.Money, 0, len(timeslots))
	for _, timeslot := range timeslots {
		items = append(items, timeslot.LineTotal())
	}
	return money.Sum(items, target, rates)
}

func needsRates(timeslots []tracking.Timeslot, target money.Code) bool {
	for _, timeslot := range timeslots {
		if money.Code(timeslot.Currency) != target {
			return true
		}
	}
	return false
}
