package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"quizline-service/internal/domain"
)

// correctMarkers flag an answer line as the correct one. Matching picks the
// longest applicable prefix, ties resolved by listed order, so "→→" wins
// over "→" even though "→" is listed first.
var correctMarkers = []string{"#", "*", "✓", "√", "+", "→", "→→", ">>", "✅", "✔"}

var (
	numberedQuestionRe = regexp.MustCompile(`^(\d+)\.\s*(.+)$`)
	numberedPrefixRe   = regexp.MustCompile(`^\d+\.`)
	letteredOptionRe   = regexp.MustCompile(`^([a-zA-Z])[.)]\s*(.+)$`)
)

// stripCorrectMarker reports whether line carries a correct-answer marker
// and returns the remaining answer text with the marker removed.
func stripCorrectMarker(line string) (bool, string) {
	trimmed := strings.TrimSpace(line)
	best := ""
	for _, marker := range correctMarkers {
		if strings.HasPrefix(trimmed, marker) && len(marker) > len(best) {
			best = marker
		}
	}
	if best == "" {
		return false, trimmed
	}
	return true, strings.TrimSpace(trimmed[len(best):])
}

// isLetteredOption matches answer-option lines like "a) text" or "B. text".
func isLetteredOption(line string) (ok bool, text string) {
	m := letteredOptionRe.FindStringSubmatch(line)
	if m == nil {
		return false, ""
	}
	return true, strings.TrimSpace(m[2])
}

// isPlainLine reports whether line is neither an option, a separator, nor
// a numbered question.
func isPlainLine(line string) bool {
	if ok, _ := isLetteredOption(line); ok {
		return false
	}
	return !isSeparator(line) && !numberedPrefixRe.MatchString(line)
}

func isSeparator(line string) bool {
	return strings.HasPrefix(line, "====") ||
		strings.HasPrefix(line, "---") ||
		strings.HasPrefix(line, "___")
}

// Parse recovers quiz blocks from loosely formatted plain text. Three
// dialects coexist in the same document without a format flag:
//
//  1. blocks separated by ++++, questions as "N. text", answers on the
//     following lines (optionally behind ==== separators) with a leading
//     correct marker on exactly one of them;
//  2. lettered options "a) text" / "a. text" under an unnumbered question
//     inferred from the preceding plain lines;
//  3. unnumbered narrative: plain lines followed within a short lookahead
//     by options or a ==== separator become the question text.
//
// Parse is best-effort and never fails: malformed fragments are dropped
// silently and the worst case is a list of empty blocks, which the
// validator rejects downstream.
func Parse(text string) []domain.ParsedBlock {
	var sections []string
	if strings.Contains(text, "++++") {
		sections = strings.Split(text, "++++")
	} else {
		sections = []string{text}
	}

	var blocks []domain.ParsedBlock
	for _, section := range sections {
		block := parseSection(section)
		if len(block.Questions) > 0 {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// sectionParser accumulates questions within a single block.
type sectionParser struct {
	questions   []domain.ParsedQuestion
	current     *domain.ParsedQuestion
	hasNumber   bool
	usedNumbers map[int]bool
	nextAuto    int
}

func parseSection(section string) domain.ParsedBlock {
	var lines []string
	for _, raw := range strings.Split(section, "\n") {
		if line := strings.TrimSpace(raw); line != "" {
			lines = append(lines, line)
		}
	}

	p := &sectionParser{usedNumbers: make(map[int]bool), nextAuto: 1}
	inAnswerSection := false

	i := 0
	for i < len(lines) {
		line := lines[i]

		if isSeparator(line) {
			inAnswerSection = true
			i++
			continue
		}

		if m := numberedQuestionRe.FindStringSubmatch(line); m != nil {
			p.flush()
			number, _ := strconv.Atoi(m[1])
			p.begin(strings.TrimSpace(m[2]), number, true)
			inAnswerSection = false
			i++
			// Consume answer lines until the next numbered question.
			for i < len(lines) {
				if isSeparator(lines[i]) {
					i++
					continue
				}
				if numberedQuestionRe.MatchString(lines[i]) {
					break
				}
				correct, answerText := stripCorrectMarker(lines[i])
				if answerText != "" {
					p.addAnswer(answerText, correct)
				}
				i++
			}
			continue
		}

		if ok, optionText := isLetteredOption(line); ok {
			// A fresh option run after plain lines starts a new question;
			// the look-back stops at the previous run's options.
			startNew := p.current == nil
			if p.current != nil && len(p.current.Answers) > 0 && i > 0 && isPlainLine(lines[i-1]) {
				startNew = true
			}
			if startNew {
				// The preceding plain lines are the question for these options.
				if questionText := lookBack(lines, i); questionText != "" {
					p.flush()
					p.begin(questionText, 0, false)
				}
			}
			if optionText != "" {
				correct, answerText := stripCorrectMarker(optionText)
				if answerText != "" {
					p.addAnswer(answerText, correct)
				}
			}
			i++
			continue
		}

		if inAnswerSection && p.current != nil {
			correct, answerText := stripCorrectMarker(line)
			if answerText != "" {
				p.addAnswer(answerText, correct)
			}
			i++
			continue
		}

		if p.current == nil {
			if next, questionText := lookAhead(lines, i); questionText != "" {
				p.flush()
				p.begin(questionText, 0, false)
				i = next
				continue
			}
		}

		// Unparseable fragment, drop it.
		i++
	}

	p.flush()
	return domain.ParsedBlock{Questions: p.questions}
}

// lookBack collects contiguous plain lines preceding an option line; they
// form the question text for the lettered-options dialect.
func lookBack(lines []string, i int) string {
	var questionLines []string
	for j := i - 1; j >= 0; j-- {
		if ok, _ := isLetteredOption(lines[j]); ok {
			break
		}
		if numberedPrefixRe.MatchString(lines[j]) {
			break
		}
		if isSeparator(lines[j]) {
			continue
		}
		questionLines = append([]string{lines[j]}, questionLines...)
	}
	return strings.Join(questionLines, " ")
}

// lookAhead checks whether an option line or separator appears within the
// next 4 lines; if so, the lines from i up to it are the question text.
// Returns the index to resume at and the joined question text.
func lookAhead(lines []string, i int) (int, string) {
	found := false
	for j := i + 1; j < len(lines) && j < i+5; j++ {
		if ok, _ := isLetteredOption(lines[j]); ok {
			found = true
			break
		}
		if strings.HasPrefix(lines[j], "====") {
			found = true
			break
		}
		if numberedPrefixRe.MatchString(lines[j]) {
			break
		}
	}
	if !found {
		return i, ""
	}

	questionLines := []string{lines[i]}
	j := i + 1
	for j < len(lines) {
		if ok, _ := isLetteredOption(lines[j]); ok {
			break
		}
		if strings.HasPrefix(lines[j], "====") {
			break
		}
		if numberedPrefixRe.MatchString(lines[j]) {
			break
		}
		questionLines = append(questionLines, lines[j])
		j++
	}
	return j, strings.Join(questionLines, " ")
}

func (p *sectionParser) begin(text string, number int, explicit bool) {
	p.current = &domain.ParsedQuestion{Number: number, Text: text}
	p.hasNumber = explicit
}

func (p *sectionParser) addAnswer(text string, correct bool) {
	if p.current == nil {
		return
	}
	p.current.Answers = append(p.current.Answers, domain.ParsedAnswer{Text: text, IsCorrect: correct})
}

// flush closes the current question, assigning the next unused
// auto-increment number when the source did not supply one.
func (p *sectionParser) flush() {
	if p.current == nil {
		return
	}
	q := *p.current
	if !p.hasNumber {
		for p.usedNumbers[p.nextAuto] {
			p.nextAuto++
		}
		q.Number = p.nextAuto
	}
	p.usedNumbers[q.Number] = true
	p.questions = append(p.questions, q)
	p.current = nil
	p.hasNumber = false
}
