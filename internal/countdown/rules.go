package countdown

// Rule is one of the nine scoring categories a contribution can fall into.
type Rule struct {
	Priority int // 1 is checked first
	Label    string
	Points   int64
}

// NumRules is the number of scoring categories.
const NumRules = 9

// Rules lists the scoring categories in priority order. Every contribution
// matches exactly one: the first rule whose condition holds wins, so the
// very first contribution always scores as "First Number" even when the
// total itself is a round number.
var Rules = [NumRules]Rule{
	{1, "First Number", 0},
	{2, "1000s", 1000},
	{3, "1001s", 500},
	{4, "200s", 200},
	{5, "201s", 100},
	{6, "100s", 100},
	{7, "101s", 50},
	{8, "Odd Numbers", 12},
	{9, "Even Numbers", 10},
}

// Classify returns the scoring category for a contribution value within a
// countdown whose first contribution was total. Conditions are checked as
// a single ordered chain so higher-priority rules shadow lower ones.
func Classify(value, total int64) Rule {
	switch {
	case value == total:
		return Rules[0]
	case value%1000 == 0:
		return Rules[1]
	case value%1000 == 1:
		return Rules[2]
	case value%200 == 0:
		return Rules[3]
	case value%200 == 1:
		return Rules[4]
	case value%100 == 0:
		return Rules[5]
	case value%100 == 1:
		return Rules[6]
	case value%2 == 1:
		return Rules[7]
	default:
		return Rules[8]
	}
}
