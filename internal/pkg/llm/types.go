package llm

// Role tags a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Attachment is inline binary content (image or document) sent with a turn.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// Turn is one role-tagged content entry forwarded to the model.
type Turn struct {
	Role       Role
	Text       string
	Attachment *Attachment
}

// Request describes one model invocation.
type Request struct {
	System          string
	Turns           []Turn
	Temperature     *float32
	MaxOutputTokens int32
}

// Source is a grounding citation surfaced with a generated answer.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// Response is the surface of the upstream API the system consumes.
type Response struct {
	Text       string
	Sources    []Source
	TokensUsed int
	Model      string
}
