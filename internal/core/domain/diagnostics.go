package domain

// DatabaseInfo is the diagnostic view of the record store.
type DatabaseInfo struct {
	Connected        bool   `json:"connected"`
	Driver           string `json:"driver"`
	Version          string `json:"version"`
	SizeBytes        int64  `json:"sizeBytes"`
	Size             string `json:"size"`
	Documents        int    `json:"documents"`
	IndexedDocuments int    `json:"indexedDocuments"`
	Chats            int    `json:"chats"`
}

// ServiceStatus reports whether an external dependency answers.
type ServiceStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Detail    string `json:"detail,omitempty"`
}
