package access

// Capability names one flag of a Quad.
type Capability string

const (
	// CapabilityOpen asks whether a dashboard or page can be opened at all.
	CapabilityOpen Capability = ""
	// CapabilityRead asks for the read flag.
	CapabilityRead Capability = "read"
	// CapabilityWrite asks for the write flag.
	CapabilityWrite Capability = "write"
	// CapabilityView asks for the view flag.
	CapabilityView Capability = "view"
	// CapabilityDelete asks for the delete flag.
	CapabilityDelete Capability = "delete"
)

// CRUD verbs used as action keys of CRUD queries.
const (
	CRUDCreate = "create"
	CRUDRead   = "read"
	CRUDUpdate = "update"
	CRUDDelete = "delete"
)

// Valid reports whether c is a known capability.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityOpen, CapabilityRead, CapabilityWrite, CapabilityView, CapabilityDelete:
		return true
	}

	return false
}

// Quad is the read/write/view/delete permission set held on a dashboard or page.
type Quad struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	View   bool `json:"view"`
	Delete bool `json:"delete"`
}

// Or merges two quads flag by flag.
func (q Quad) Or(o Quad) Quad {
	return Quad{
		Read:   q.Read || o.Read,
		Write:  q.Write || o.Write,
		View:   q.View || o.View,
		Delete: q.Delete || o.Delete,
	}
}

// Allows reports whether q grants c. CapabilityOpen is granted by view or read.
func (q Quad) Allows(c Capability) bool {
	switch c {
	case CapabilityOpen:
		return q.View || q.Read
	case CapabilityRead:
		return q.Read
	case CapabilityWrite:
		return q.Write
	case CapabilityView:
		return q.View
	case CapabilityDelete:
		return q.Delete
	}

	return false
}
