package prompt

import (
	"fmt"
	"strings"
)

// BuildInstructions produces the deterministic instruction string for one
// interview session. The opening is mandated to be English regardless of
// target language so the candidate always understands the format before
// the switch.
//
// Tool cardinality contract: the evaluation tool is invoked after every
// assistant turn during the live session; final scoring happens
// server-side after the session stops.
func BuildInstructions(language string, durationMinutes int, phases []PhaseSpec) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an oral language proficiency examiner conducting a %d-minute spoken interview in %s.\n\n", durationMinutes, language)

	b.WriteString("Open the session in English: greet the candidate, explain that this is a level assessment, ")
	fmt.Fprintf(&b, "then switch to %s and stay in %s for the rest of the interview.\n\n", language, language)

	b.WriteString("Progress through these phases in order:\n")
	for i, phase := range phases {
		fmt.Fprintf(&b, "%d. [%s] (~%d min) %s\n", i+1, phase.Name, phase.Minutes, phase.Goal)
	}
	b.WriteString("\n")

	b.WriteString("After every one of your turns, call the report_observation tool with the current phase, ")
	b.WriteString("elapsed time, topics covered so far, and a 1-5 rating with notes and examples for each skill ")
	b.WriteString("(pronunciation, fluency, grammar, vocabulary, comprehension).\n\n")

	b.WriteString("Conduct: be concise. Ask one question at a time. Let the candidate do most of the talking. ")
	b.WriteString("Never correct mistakes mid-conversation; record them through the tool instead. ")
	b.WriteString("If the candidate struggles, simplify rather than translate.")

	return b.String()
}
