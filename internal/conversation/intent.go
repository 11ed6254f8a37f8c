package conversation

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// IntentKind is the symbolic classification of inbound text.
type IntentKind string

const (
	IntentGreeting   IntentKind = "greeting"
	IntentMenuChoice IntentKind = "menu_choice"
	IntentTopic      IntentKind = "topic"
	IntentOther      IntentKind = "other"
)

// Topic is a practice-area keyword matched from menu-step messages.
type Topic string

const (
	TopicLabor          Topic = "trabalhista"
	TopicFamily         Topic = "familia"
	TopicCivil          Topic = "civil"
	TopicSocialSecurity Topic = "inss"
)

// Intent is the result of classifying a normalized inbound message.
type Intent struct {
	Kind   IntentKind
	Choice int
	Topic  Topic
}

// stripMarks removes combining marks so "família" and "familia" compare equal.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lower-cases, trims and accent-folds inbound text. All
// classification operates on normalized text.
func Normalize(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	folded, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		return lowered
	}
	return folded
}

// greetingPattern matches greeting keywords as whole words. The text is
// already accent-folded, so only the unaccented spellings appear here.
var greetingPattern = regexp.MustCompile(`\b(oi|ola|bom dia|boa tarde|boa noite|inicio|quem fala)\b`)

// menuChoicePattern matches a leading digit 1-4 as its own word, so a
// message carrying both a digit and a topic keyword resolves by digit.
// "10" stays unmatched: the digit must not run into another word character.
var menuChoicePattern = regexp.MustCompile(`^([1-4])\b`)

// menuRule pairs a predicate with the intent it produces. Rules are
// evaluated first-match-wins, which makes classification priority an
// explicit, testable ordering: greeting, then digit choice, then topic
// keyword. A message carrying both a digit and a keyword resolves to the
// digit.
type menuRule struct {
	name  string
	match func(text string) (Intent, bool)
}

var menuRules = []menuRule{
	{
		name: "greeting",
		match: func(text string) (Intent, bool) {
			if greetingPattern.MatchString(text) {
				return Intent{Kind: IntentGreeting}, true
			}
			return Intent{}, false
		},
	},
	{
		name: "menu_choice",
		match: func(text string) (Intent, bool) {
			if m := menuChoicePattern.FindStringSubmatch(text); m != nil {
				return Intent{Kind: IntentMenuChoice, Choice: int(m[1][0] - '0')}, true
			}
			return Intent{}, false
		},
	},
	{
		name: "topic_keyword",
		match: func(text string) (Intent, bool) {
			for _, topic := range []Topic{TopicLabor, TopicFamily, TopicCivil, TopicSocialSecurity} {
				if strings.Contains(text, string(topic)) {
					return Intent{Kind: IntentTopic, Topic: topic}, true
				}
			}
			return Intent{}, false
		},
	},
}

// Classify maps normalized menu-step text to an intent. Text that matches
// no rule is IntentOther, which is handled, never an error.
func Classify(text string) Intent {
	for _, rule := range menuRules {
		if intent, ok := rule.match(text); ok {
			return intent
		}
	}
	return Intent{Kind: IntentOther}
}

// resumeKeywords are the only inputs a paused session reacts to.
var resumeKeywords = map[string]struct{}{
	"menu":   {},
	"voltar": {},
}

// IsResume reports whether normalized text is a resume keyword. Checked
// only while a session is paused.
func IsResume(text string) bool {
	_, ok := resumeKeywords[text]
	return ok
}
