package tutor

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rand is the randomness source of the responder; *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Responder produces canned replies when no live model answer is available.
// It holds no mutable state and is safe for concurrent use if its Rand is.
type Responder struct {
	rnd   Rand
	rules []rule
}

type Option func(*Responder)

// WithRand injects the source used to pick mode-specific replies.
func WithRand(r Rand) Option {
	return func(rs *Responder) {
		if r != nil {
			rs.rnd = r
		}
	}
}

func NewResponder(opts ...Option) *Responder {
	r := &Responder{rnd: globalRand{}, rules: defaultRules()}
	for _, o := range opts {
		o(r)
	}
	return r
}

var defaultResponder = NewResponder()

// Respond answers q with the default responder.
func Respond(q ResponseQuery) string {
	return defaultResponder.Respond(q)
}

// Respond walks the rule list in order and returns the first match. When nothing
// matches it picks one of the mode's canned replies. It always returns a non-empty string.
func (r *Responder) Respond(q ResponseQuery) string {
	in := newInput(q)
	for _, rl := range r.rules {
		if rl.match(in) {
			return rl.reply(in)
		}
	}

	replies := cannedReplies[ParseMode(string(q.Mode))]
	i := r.rnd.IntN(len(replies))
	if i < 0 || i >= len(replies) {
		i = 0
	}
	reply := replies[i]
	if utf8.RuneCountInString(in.rawContext) > contextSuffixMin {
		reply += fmt.Sprintf(" I can also see your scanned text about \"%s...\", so ask me anything about it!", in.snippet(50))
	}
	return reply
}

// CannedReplies returns a copy of the mode's last-resort replies.
func CannedReplies(m Mode) []string {
	return append([]string(nil), cannedReplies[ParseMode(string(m))]...)
}

const contextSuffixMin = 10

var cannedReplies = map[Mode][]string{
	ModeChat: {
		"That's a great question beta! Let me explain this in simple Hinglish...",
		"Achha sawal hai! Yeh concept actually bahut interesting hai...",
		"Don't worry baccha, I'll make this easy for you to understand!",
		"Main tumhe is concept ko step-by-step samjhati hun, thik hai?",
		"I understand this can be confusing. Let me break it down for you step by step.",
	},
	ModeStudy: {
		"According to your curriculum, this topic has these key points...",
		"Let me explain this concept in detail with proper academic structure...",
		"This is an important topic for your exams. Focus on these aspects...",
		"The textbook explains this concept with these main ideas...",
		"Let me explain this concept in detail as per your syllabus...",
	},
	ModeExam: {
		"Important for exams: Remember these key points...",
		"Practice question: How would you apply this concept?",
		"Exam tip: This concept often appears in these types of questions...",
		"MCQ practice: Which of these best describes the concept?",
		"Let me create a quick quiz to test your understanding...",
	},
	ModeCoding: {
		"In programming, this concept works by...",
		"Here's how to implement this in code...",
		"The algorithm for this would be...",
		"Let me explain this with a code example...",
		"Here's how you can implement this in Python...",
	},
}

// input is a query normalised once for matching.
type input struct {
	message    string
	context    string
	rawContext string
	words      []string
}

func newInput(q ResponseQuery) input {
	msg := strings.ToLower(q.Message)
	return input{
		message:    msg,
		context:    strings.ToLower(q.Context),
		rawContext: strings.TrimSpace(q.Context),
		words: strings.FieldsFunc(msg, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
		}),
	}
}

func (in input) hasContext() bool { return in.rawContext != "" }

// snippet returns the first n runes of the context with whitespace runs collapsed.
func (in input) snippet(n int) string {
	s := strings.Join(strings.Fields(in.rawContext), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
