package model

// Contact is a named address in the address book
type Contact struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// ContactsResponse represents response for GET /addressbook
type ContactsResponse struct {
	Contacts []Contact `json:"contacts"`
}
