package simplify

// getExamples returns the illustrations that can be appended to a result
func getExamples() []string {
	return []string{
		"\n\n💡 Example: Like turning 'The meteorological precipitation is substantial' into 'It's raining a lot'.",
		"\n\n💡 Example: Similar to changing 'Utilize' to 'Use' for easier understanding.",
		"\n\n💡 Example: Think of it as explaining something to a friend in simple words.",
	}
}

func (e *Engine) addExample(text string) string {
	examples := getExamples()
	return text + examples[e.picker.IntN(len(examples))]
}
