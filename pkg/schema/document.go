package schema

// Document is a JSON object stored in a document-store collection.
type Document map[string]any

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Snapshot is a document together with the id the store assigned to it.
type Snapshot struct {
	ID   string   `json:"id"`
	Data Document `json:"data"`
}

// CurrentUser is the identity of the signed-in operator. It is never persisted.
type CurrentUser struct {
	Email string `json:"email"`
}

// AdminConfig is the singleton document holding the admin allow-list.
type AdminConfig struct {
	Emails []string `json:"emails"`
}
