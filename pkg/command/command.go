// Package command parses the slide commands written inside command-comments
// of notebook cells, e.g. <!--! new; class[center]; start-add; -->.
package command

// Kind identifies a slide command.
type Kind int

const (
	NewPage      Kind = iota // start a new page
	StartAppend              // append following cell lines to the last page
	StopAppend               // stop appending cell lines
	AddStream                // append the cell's stream output
	AddError                 // append the cell's error output
	Inject                   // append the payload text
	WrapImage                // append the payload with {} replaced by the cell's images
	SetPageClass             // set the class of the current page
)

// Keywords of the command language.
const (
	KeywordNewPage     = "new"
	KeywordStartAppend = "start-add"
	KeywordStopAppend  = "stop-add"
	KeywordAddStream   = "add-stream"
	KeywordAddError    = "add-error"
	KeywordInject      = "inject"
	KeywordWrapImage   = "image"
	KeywordPageClass   = "class"
)

// Command is a single parsed command.
type Command struct {
	Kind    Kind
	Payload string // set for Inject, WrapImage and SetPageClass
}

// Syntax describes how a keyword is parsed.
type Syntax struct {
	Kind       Kind
	HasPayload bool
}

// Registry maps keywords to their command definitions.
var Registry = map[string]Syntax{
	KeywordNewPage:     {Kind: NewPage},
	KeywordStartAppend: {Kind: StartAppend},
	KeywordStopAppend:  {Kind: StopAppend},
	KeywordAddStream:   {Kind: AddStream},
	KeywordAddError:    {Kind: AddError},
	KeywordInject:      {Kind: Inject, HasPayload: true},
	KeywordWrapImage:   {Kind: WrapImage, HasPayload: true},
	KeywordPageClass:   {Kind: SetPageClass, HasPayload: true},
}

// String returns the keyword for k.
func (k Kind) String() string {
	for keyword, syntax := range Registry {
		if syntax.Kind == k {
			return keyword
		}
	}
	return "unknown"
}
