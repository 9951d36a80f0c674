package student

// PointsForScore maps an evaluation score to a points award. The award
// path only runs for scores above 6; bands follow the scoring rule:
// 7-8 earn 8 points, 9-10 earn 10, any other passing score earns 5.
func PointsForScore(score float64) int {
	switch {
	case score <= 6:
		return 0
	case score >= 9:
		return 10
	case score >= 7:
		return 8
	default:
		return 5
	}
}
