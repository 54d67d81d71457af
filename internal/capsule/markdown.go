package capsule

import (
	"fmt"
	"strings"
)

// ToMarkdown renders a capsule as a Markdown document.
func ToMarkdown(c *Capsule) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", c.Title)
	fmt.Fprintf(&b, "**Priority:** %s · **Sentiment:** %s · **Read time:** %ds\n\n", c.Priority, c.Sentiment, c.ReadTime)
	if c.Deadline != nil {
		fmt.Fprintf(&b, "**Deadline:** %s\n\n", *c.Deadline)
	}

	if c.Summary != "" {
		b.WriteString(c.Summary)
		b.WriteString("\n\n")
	}

	writeList(&b, "Actions", c.Actions, true)
	writeList(&b, "Key insights", c.KeyInsights, false)

	if len(c.ClipboardReady) > 0 {
		b.WriteString("## Ready to copy\n\n")
		for _, item := range c.ClipboardReady {
			fmt.Fprintf(&b, "```\n%s\n```\n\n", item)
		}
	}

	if c.MediaAnalysis != nil {
		fmt.Fprintf(&b, "## Media analysis\n\n%s\n\n", *c.MediaAnalysis)
	}

	if len(c.Tags) > 0 {
		tags := make([]string, len(c.Tags))
		for i, t := range c.Tags {
			tags[i] = "`" + t + "`"
		}
		fmt.Fprintf(&b, "**Tags:** %s\n\n", strings.Join(tags, " "))
	}

	fmt.Fprintf(&b, "---\n\nSource (%s): %s\n", c.SourceType, c.Source)
	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string, numbered bool) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", heading)
	for i, item := range items {
		if numbered {
			fmt.Fprintf(b, "%d. %s\n", i+1, item)
		} else {
			fmt.Fprintf(b, "- %s\n", item)
		}
	}
	b.WriteString("\n")
}
