package devserver

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/abhisek/cbseprep/internal/query"
)

// chapters maps a subject to a few NCERT chapters and the words that
// point at them.
var chapters = map[string][]struct {
	Name  string
	Words []string
}{
	"Science": {
		{"Life Processes", []string{"photosynthesis", "respiration", "digestion", "nutrition"}},
		{"Chemical Reactions and Equations", []string{"reaction", "equation", "oxidation", "reduction"}},
		{"Light – Reflection and Refraction", []string{"light", "mirror", "lens", "refraction"}},
		{"Electricity", []string{"current", "resistance", "ohm", "circuit"}},
	},
	"Mathematics": {
		{"Real Numbers", []string{"hcf", "lcm", "irrational", "prime"}},
		{"Quadratic Equations", []string{"quadratic", "roots", "discriminant"}},
		{"Triangles", []string{"triangle", "similar", "pythagoras"}},
	},
	"Social Science": {
		{"Nationalism in India", []string{"gandhi", "satyagraha", "nationalism", "non-cooperation"}},
		{"Resources and Development", []string{"soil", "resource", "land"}},
		{"Power Sharing", []string{"power", "federal", "belgium"}},
	},
	"English": {
		{"A Letter to God", []string{"lencho", "letter", "god"}},
		{"Nelson Mandela: Long Walk to Freedom", []string{"mandela", "apartheid", "freedom"}},
	},
}

// points is how many bullet points an answer of the given marks carries.
var points = map[int]int{1: 0, 2: 2, 3: 3, 5: 5}

// Answer builds a deterministic canned response for req. Its length grows
// with the marks so the UI can be checked against each format.
func Answer(req query.Request) query.Response {
	topic := topicOf(req.Question)
	resp := query.Response{
		Marks:    req.Marks,
		Subject:  req.Subject,
		Sources:  []query.Source{},
		Keywords: keywords(req.Question),
	}

	chapter := matchChapter(req.Subject, req.Question)
	if chapter != "" {
		resp.Chapter = &chapter
		resp.Sources = append(resp.Sources, query.Source{
			Text:           fmt.Sprintf("Excerpt from the chapter %q about %s.", chapter, topic),
			Chapter:        chapter,
			Topic:          topic,
			SourceType:     "textbook",
			RelevanceScore: 0.87,
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s** is explained in your %s textbook.", capitalize(topic), req.Subject)
	if n := points[req.Marks]; n > 0 {
		b.WriteString("\n\nKey points:\n")
		for i := 1; i <= n; i++ {
			fmt.Fprintf(&b, "- Point %d about **%s**\n", i, topic)
		}
	}
	if len(req.History) > 0 {
		fmt.Fprintf(&b, "\n\nThis continues from your earlier %d message(s).", len(req.History))
	}
	resp.Answer = strings.TrimSpace(b.String())
	return resp
}

func matchChapter(subject, question string) string {
	q := strings.ToLower(question)
	for _, ch := range chapters[subject] {
		for _, w := range ch.Words {
			if strings.Contains(q, w) {
				return ch.Name
			}
		}
	}
	return ""
}

var stopWords = map[string]bool{
	"what": true, "is": true, "the": true, "a": true, "an": true, "of": true,
	"explain": true, "define": true, "describe": true, "how": true, "why": true,
	"does": true, "do": true, "in": true, "and": true, "are": true,
}

func words(question string) []string {
	return strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}

func topicOf(question string) string {
	var kept []string
	for _, w := range words(question) {
		if !stopWords[w] {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return "this topic"
	}
	return strings.Join(kept, " ")
}

func keywords(question string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, w := range words(question) {
		if len(w) < 6 || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
		if len(out) == 3 {
			break
		}
	}
	return out
}

func capitalize(s string) string {
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
