package examples

import (
	"regexp"
	"strings"

	"github.com/pkgchew/pkgchew/internal/model"
)

// Harvester locates embedded usage examples in docstrings. It is a
// small line/regex sub-parser, deliberately independent of the
// tree-sitter extractor so its recognition rules can evolve on their
// own. Two conventions are recognized:
//
//   - interactive sessions: ">>> " lines with "... " continuations and
//     trailing expected output,
//   - fenced code blocks tagged as Python.
type Harvester struct{}

// NewHarvester creates a new harvester.
func NewHarvester() *Harvester {
	return &Harvester{}
}

var (
	promptRE       = regexp.MustCompile(`^(\s*)>>> ?(.*)$`)
	continuationRE = regexp.MustCompile(`^(\s*)\.\.\. ?(.*)$`)
	fenceOpenRE    = regexp.MustCompile("^\\s*(```|~~~)\\s*(python|py|pycon)\\s*$")
	fenceCloseRE   = regexp.MustCompile("^\\s*(```|~~~)\\s*$")
)

// Harvest extracts every example fragment from a docstring, in order
// of appearance. Fragments keep their raw text untouched; Code holds
// the runnable form with session prompts stripped.
func (h *Harvester) Harvest(docstring string) []*model.Example {
	if docstring == "" {
		return nil
	}

	var found []*model.Example
	lines := strings.Split(docstring, "\n")

	for i := 0; i < len(lines); {
		if m := promptRE.FindStringSubmatch(lines[i]); m != nil {
			example, next := h.harvestSession(lines, i, m[1])
			found = append(found, example)
			i = next
			continue
		}
		if fenceOpenRE.MatchString(lines[i]) {
			if example, next, ok := h.harvestFence(lines, i); ok {
				found = append(found, example)
				i = next
				continue
			}
		}
		i++
	}
	return found
}

// harvestSession consumes one interactive example: a prompt line, its
// continuations, and any expected output until a blank line or the
// next prompt.
func (h *Harvester) harvestSession(lines []string, start int, indent string) (*model.Example, int) {
	var raw []string
	var code []string

	i := start
	m := promptRE.FindStringSubmatch(lines[i])
	raw = append(raw, lines[i])
	code = append(code, m[2])
	i++

	for i < len(lines) {
		if c := continuationRE.FindStringSubmatch(lines[i]); c != nil {
			raw = append(raw, lines[i])
			code = append(code, c[2])
			i++
			continue
		}
		break
	}

	// Expected output lines belong to the fragment's raw text but not
	// to its runnable code.
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" || promptRE.MatchString(line) {
			break
		}
		if !strings.HasPrefix(line, indent) && indent != "" {
			break
		}
		raw = append(raw, line)
		i++
	}

	return &model.Example{
		Text:   strings.Join(raw, "\n"),
		Code:   strings.Join(code, "\n"),
		Status: model.ExampleUnvalidated,
	}, i
}

// harvestFence consumes one fenced code block. An unterminated fence
// is not an example.
func (h *Harvester) harvestFence(lines []string, start int) (*model.Example, int, bool) {
	for i := start + 1; i < len(lines); i++ {
		if fenceCloseRE.MatchString(lines[i]) {
			body := strings.Join(lines[start+1:i], "\n")
			return &model.Example{
				Text:   body,
				Code:   body,
				Status: model.ExampleUnvalidated,
			}, i + 1, true
		}
	}
	return nil, start, false
}

// Attach harvests an entity's docstring and attaches the resulting
// examples, recursing into nested entities. Multiple examples per
// entity stay in source order and are never deduplicated.
func (h *Harvester) Attach(entity *model.Entity) {
	for _, example := range h.Harvest(entity.Docstring) {
		example.Owner = entity
		entity.Examples = append(entity.Examples, example)
	}
	for _, child := range entity.Children {
		h.Attach(child)
	}
}
