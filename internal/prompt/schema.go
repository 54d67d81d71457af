package prompt

// ResponseSchema describes the capsule object for providers that accept a
// structured-output schema. Every field is optional so partial answers
// still parse.
func ResponseSchema() map[string]any {
	str := map[string]any{"type": "STRING"}
	nullableStr := map[string]any{"type": "STRING", "nullable": true}
	list := map[string]any{"type": "ARRAY", "items": str}

	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"title":          str,
			"summary":        str,
			"actions":        list,
			"priority":       map[string]any{"type": "STRING", "enum": []string{"high", "medium", "low"}},
			"sentiment":      map[string]any{"type": "STRING", "enum": []string{"positive", "neutral", "negative", "urgent"}},
			"tags":           list,
			"readTime":       map[string]any{"type": "INTEGER"},
			"keyInsights":    list,
			"deadline":       nullableStr,
			"clipboardReady": list,
			"extractedText":  nullableStr,
			"mediaAnalysis":  nullableStr,
		},
		"propertyOrdering": []string{
			"title", "summary", "actions", "priority", "sentiment", "tags", "readTime",
			"keyInsights", "deadline", "clipboardReady", "extractedText", "mediaAnalysis",
		},
	}
}
