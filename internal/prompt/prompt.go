// Package prompt builds the model request for one piece of extracted content.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/focusbrief/internal/capsule"
	"github.com/hpungsan/focusbrief/internal/extract"
)

// GroundingClause keeps the model on the supplied content.
const GroundingClause = "Base the response only on the supplied content; do not invent missing context."

// SystemInstruction is sent with every request.
const SystemInstruction = `You are a cognitive curation assistant. You turn content into an "action capsule": a short, actionable summary someone can act on in seconds.

Return exactly one JSON object with these fields:
{
  "title": "concise descriptive title, at most 100 characters",
  "summary": "2-3 sentence executive summary of the essence of the content",
  "actions": ["specific, executable action", "..."],
  "priority": "high|medium|low",
  "sentiment": "positive|neutral|negative|urgent",
  "tags": ["tag", "..."],
  "readTime": <estimated seconds to read the summary, integer>,
  "keyInsights": ["non-obvious insight", "..."],
  "deadline": "date or time the actions are due, or null",
  "clipboardReady": ["text ready to copy and paste: prompts, commands, addresses, replies", "..."],
  "extractedText": "relevant text transcribed from media, or null",
  "mediaAnalysis": "description of images, audio or video, or null"
}

Priority criteria:
- high: requires action within 24-48 hours, a close deadline, or has significant impact
- medium: important but flexible in timing
- low: informational, for future reference

Sentiment criteria:
- positive: opportunities, good news, achievements
- neutral: objective information, data
- negative: problems, risks, warnings
- urgent: demands immediate attention

` + GroundingClause + ` If something is not in the content, leave the field empty or null rather than guessing.
Write the text fields in the same language as the content.
Respond only with the JSON object, with no additional text and no markdown.`

// Part is one element of the user turn. Exactly one field is set.
type Part struct {
	Text  string
	Media *extract.MediaRef
}

// Request is a complete, provider-neutral model request.
type Request struct {
	System string
	Parts  []Part
}

// templates holds the per-source instruction. Every SourceType has one.
var templates = map[capsule.SourceType]string{
	capsule.SourceText: `Analyze this text someone saved for later. Identify what it asks of the reader and anything with a date attached.`,

	capsule.SourceArticle: `Analyze this web article. Focus on its main argument and the takeaways a busy reader should act on; ignore navigation and boilerplate that slipped through extraction.`,

	capsule.SourceYouTube: `Analyze this YouTube video. If a transcript is supplied, work from it; otherwise watch and listen to the full content. Identify the key topics, claims and recommendations.`,

	capsule.SourceTwitter: `Analyze this post from X/Twitter. It is short: do not infer missing context from a short text, and do not guess at the thread it may belong to. Engagement counts are metadata, not content.`,

	capsule.SourceLinkedIn: `Analyze this LinkedIn post or page. Separate professional signal (announcements, openings, lessons) from self-promotion.`,

	capsule.SourceGitHub: `Analyze this GitHub page. Identify what the project or change does, how to use or install it, and any breaking changes; put commands in clipboardReady.`,

	capsule.SourcePDF: `Analyze this PDF document. Extract the main content, important tables and figures, and any mandatory actions or policy changes it imposes.`,

	capsule.SourceDocument: `Analyze this document. Extract mandatory actions and policy changes first, then the key points and any dates they take effect.`,

	capsule.SourceImage: `Analyze this image. Describe what you see, extract any visible text (OCR) into extractedText, identify data, charts or diagrams, and derive actions from the content.`,

	capsule.SourceAudio: `Analyze this audio. Transcribe the spoken content into extractedText, identify speakers if possible, summarize the main topics and derive actions from what was discussed.`,

	capsule.SourceVideo: `Analyze this video. Watch and listen to the full content: describe the visuals, transcribe or summarize the audio, identify the main topics and derive actions.`,
}

// Template returns the instruction for st, falling back to the document
// template for unknown types.
func Template(st capsule.SourceType) string {
	if t, ok := templates[st]; ok {
		return t
	}
	return templates[capsule.SourceDocument]
}

// Build assembles the request for content. When media is present it comes
// first, followed by the text instruction.
func Build(content *extract.Content, now time.Time) Request {
	var b strings.Builder
	fmt.Fprintf(&b, "Source type: %s\n", content.SourceType)
	if content.Provenance != "" {
		fmt.Fprintf(&b, "Source: %s\n", content.Provenance)
	}
	fmt.Fprintf(&b, "Today's date: %s\n\n", now.UTC().Format("2006-01-02"))
	b.WriteString(Template(content.SourceType))

	if content.Text != "" {
		b.WriteString("\n\nContent:\n\n")
		b.WriteString(content.Text)
	}
	b.WriteString("\n\nRespond with the action capsule JSON.")

	req := Request{System: SystemInstruction}
	if content.Media != nil {
		req.Parts = append(req.Parts, Part{Media: content.Media})
	}
	req.Parts = append(req.Parts, Part{Text: b.String()})
	return req
}
