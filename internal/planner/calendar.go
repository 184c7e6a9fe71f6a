package planner

import "strings"

// Day is one of the seven calendar days, Monday first.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// MealType is one of the three daily meals.
type MealType int

const (
	Breakfast MealType = iota
	Lunch
	Dinner
)

const (
	numDays  = 7
	numMeals = 3
)

var (
	dayNames  = [numDays]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	mealNames = [numMeals]string{"breakfast", "lunch", "dinner"}
)

// Days lists every day in calendar order.
func Days() []Day {
	return []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// MealTypes lists every meal type in daily order.
func MealTypes() []MealType {
	return []MealType{Breakfast, Lunch, Dinner}
}

func (d Day) String() string {
	if !d.Valid() {
		return "invalid"
	}
	return dayNames[d]
}

// Valid reports whether d is one of the seven days.
func (d Day) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (m MealType) String() string {
	if !m.Valid() {
		return "invalid"
	}
	return mealNames[m]
}

// Valid reports whether m is one of the three meal types.
func (m MealType) Valid() bool {
	return m >= Breakfast && m <= Dinner
}

// ParseDay maps a day name such as "monday" (any case) to a Day.
func ParseDay(s string) (Day, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range dayNames {
		if name == s {
			return Day(i), true
		}
	}
	return 0, false
}

// ParseMealType maps a meal name such as "lunch" (any case) to a MealType.
func ParseMealType(s string) (MealType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range mealNames {
		if name == s {
			return MealType(i), true
		}
	}
	return 0, false
}
