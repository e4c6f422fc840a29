package diary

import "strings"

// CollapsedLines is how many lines of a long note stay visible.
const CollapsedLines = 2

type FoldState int

const (
	Short FoldState = iota
	Collapsed
	Expanded
)

func (s FoldState) String() string {
	switch s {
	case Collapsed:
		return "collapsed"
	case Expanded:
		return "expanded"
	default:
		return "short"
	}
}

// ReadMore folds meal notes that wrap past CollapsedLines.
type ReadMore struct {
	lines []string
	state FoldState
}

// NewReadMore wraps text at width runes per line. width <= 0 disables
// wrapping so only explicit newlines count.
func NewReadMore(text string, width int) *ReadMore {
	r := &ReadMore{lines: wrap(text, width)}
	if len(r.lines) > CollapsedLines {
		r.state = Collapsed
	}
	return r
}

func (r *ReadMore) State() FoldState { return r.state }

func (r *ReadMore) Lines() int { return len(r.lines) }

// Toggle flips between collapsed and expanded. Short notes stay short.
func (r *ReadMore) Toggle() FoldState {
	switch r.state {
	case Collapsed:
		r.state = Expanded
	case Expanded:
		r.state = Collapsed
	}
	return r.state
}

// Text returns what is visible in the current state.
func (r *ReadMore) Text() string {
	if r.state == Collapsed {
		return strings.Join(r.lines[:CollapsedLines], "\n")
	}
	return strings.Join(r.lines, "\n")
}

// Action is the label of the toggle link, empty for short notes.
func (r *ReadMore) Action() string {
	switch r.state {
	case Collapsed:
		return "Read more"
	case Expanded:
		return "Read less"
	}
	return ""
}

func wrap(text string, width int) []string {
	var out []string
	for _, para := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if width <= 0 {
			out = append(out, para)
			continue
		}
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, w := range words {
			for len([]rune(w)) > width {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				rs := []rune(w)
				out = append(out, string(rs[:width]))
				w = string(rs[width:])
			}
			switch {
			case line == "":
				line = w
			case len([]rune(line))+1+len([]rune(w)) <= width:
				line += " " + w
			default:
				out = append(out, line)
				line = w
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
