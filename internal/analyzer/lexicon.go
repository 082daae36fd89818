package analyzer

// getKeyTerms returns the terms that mark a sentence as important.
// Matching is by substring, so "teacher" also counts as "teach".
func getKeyTerms() []string {
	return []string{
		"education", "learn", "teach", "student",
		"teacher", "school", "knowledge", "understand",
	}
}
