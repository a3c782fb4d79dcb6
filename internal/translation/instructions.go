package translation

import (
	"regexp"
	"strings"
)

const (
	htmlInstructions = "This is HTML content. Translate the text but preserve ALL HTML tags exactly as they are " +
		"(<p>, <br/>, <strong>, <em>, etc.). Do not add or remove tags."
	blankInstructions = "This text contains {{blank:answer}} markers. Translate the surrounding text but keep the " +
		"{{blank:...}} syntax exactly. Translate the word inside blank: as well."
	inlineChoiceInstructions = "This text contains {{option1|option2|option3}} markers. Translate the surrounding text " +
		"and translate each option inside {{...}}, keeping the | separators and {{}} syntax intact. " +
		"The first option is always the correct answer."
	fixSentenceInstructions = "This sentence has parts separated by ' | '. Translate each part but keep the ' | ' " +
		"separators exactly as they are."
	germanMarkerInstructions = "This text contains {{de:German text}} markers. The German text inside {{de:...}} must be " +
		"kept EXACTLY as-is (it is vocabulary being taught). Translate the surrounding text naturally so the sentence " +
		"reads well in the target language despite the embedded German words. Keep the {{de:...}} syntax intact."
)

var inlineChoicePattern = regexp.MustCompile(`\{\{[^}]+\|[^}]+\}\}`)

// AIInstructions returns the machine translation hint for a string, or "" when
// the value needs no special handling.
func AIInstructions(key, value string) string {
	switch {
	case strings.Contains(value, "<p>") || strings.Contains(value, "<br") || strings.Contains(value, "<strong>"):
		return htmlInstructions
	case strings.Contains(value, "{{blank:"):
		return blankInstructions
	case inlineChoicePattern.MatchString(value):
		return inlineChoiceInstructions
	case strings.Contains(key, ".sentence") && strings.Contains(value, " | "):
		return fixSentenceInstructions
	case strings.Contains(value, "{{de:"):
		return germanMarkerInstructions
	default:
		return ""
	}
}
