package sanitize

import "iter"

// ElementFilter drops whole elements of one tag that Accept rejects. Unlike
// attribute validation it sees every attribute at once, so it can enforce
// rules spanning several of them. Only the element's tags are dropped; its
// content is kept.
type ElementFilter struct {
	Tag    string
	Accept func(Token) bool
}

// Filter implements Filter.
func (f ElementFilter) Filter(in iter.Seq[Token]) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		// One entry per open f.Tag element: true when its start tag was dropped.
		var dropped []bool
		for tok := range in {
			if tok.Tag == f.Tag {
				switch tok.Kind {
				case SelfClosingTagToken:
					if !f.Accept(tok) {
						continue
					}
				case StartTagToken:
					ok := f.Accept(tok)
					dropped = append(dropped, !ok)
					if !ok {
						continue
					}
				case EndTagToken:
					if n := len(dropped); n > 0 {
						drop := dropped[n-1]
						dropped = dropped[:n-1]
						if drop {
							continue
						}
					}
				}
			}
			if !yield(tok) {
				return
			}
		}
	}
}

// DisabledCheckboxes keeps an <input> only when it is a disabled checkbox,
// such as the task list items rendered from "- [x] done": type="checkbox"
// and disabled are required, and checked is the only other attribute allowed.
func DisabledCheckboxes() ElementFilter {
	return ElementFilter{
		Tag: "input",
		Accept: func(tok Token) bool {
			var isCheckbox, disabled bool
			for _, a := range tok.Attrs {
				switch a.Name {
				case "type":
					isCheckbox = a.Value == "checkbox"
				case "disabled":
					disabled = true
				case "checked":
				default:
					return false
				}
			}
			return isCheckbox && disabled
		},
	}
}
